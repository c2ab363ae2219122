package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"phonestore-crm/internal/app"
)

type productBody struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	StockStatus   string          `json:"stock_status" validate:"omitempty,oneof=enabled disabled"`
}

func (b productBody) request() app.ProductRequest {
	return app.ProductRequest{
		Name:          b.Name,
		Description:   b.Description,
		Price:         b.Price,
		Category:      b.Category,
		StockQuantity: b.StockQuantity,
		StockStatus:   b.StockStatus,
	}
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListProducts(r.Context(), app.ProductListRequest{
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), currentActor(r), body.request())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body productBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), currentActor(r), id, body.request())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}
