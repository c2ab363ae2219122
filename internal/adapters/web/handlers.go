package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"phonestore-crm/internal/app"
	"phonestore-crm/internal/core"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Options configures NewHandler.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	TokenTTL       time.Duration
	// Ping reports storage health for /api/health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// Handler holds the ApplicationService and auth settings shared by all routes.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	tokenTTL  time.Duration
	ping      func(ctx context.Context) error
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  opts.TokenTTL,
		ping:      opts.Ping,
	}

	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(AllowStoreOrigins(opts.AllowedOrigins))
	r.Use(LimitBody(maxRequestBody))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Authenticated ─────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/{id}", h.getProduct)

		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Put("/api/orders/{id}", h.updateOrder)
		r.Get("/api/orders/{id}/invoice.pdf", h.orderInvoice)

		r.Get("/api/users/{id}", h.getUser)
		r.Get("/api/users/{id}/debt", h.getDebt)
		r.Get("/api/users/{id}/debt/adjustments", h.listDebtAdjustments)
		r.Post("/api/users/{id}/debt/adjustments", h.createDebtAdjustment)
		r.Get("/api/users/{id}/stats", h.getUserStats)

		// ── Admin ─────────────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Post("/api/products", h.createProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/orders/{id}", h.deleteOrder)
			r.Get("/api/users", h.listUsers)
			r.Post("/api/users", h.createUser)
			r.Get("/api/reports/debts", h.outstandingDebts)
			r.Get("/api/reports/debts.pdf", h.debtReportPDF)
		})
	})

	return r
}

// health pings storage and reports service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Database: "unreachable"})
			return
		}
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by LimitBody; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "Request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "Invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("Invalid "+name, core.FieldError{Field: name, Message: "must be a positive integer"})
	}
	return id, nil
}

// queryInt reads an optional integer query parameter, returning 0 when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func currentActor(r *http.Request) app.Actor {
	a, _ := actorFromContext(r.Context())
	return a
}
