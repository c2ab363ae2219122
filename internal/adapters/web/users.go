package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"phonestore-crm/internal/app"
)

type createUserBody struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin client"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
}

type debtAdjustmentBody struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,oneof=EUR MKD eur mkd"`
	Type     string          `json:"type" validate:"omitempty,max=50"`
	Notes    string          `json:"notes" validate:"omitempty,max=500"`
}

// listUsers handles GET /api/users.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListUsers(r.Context(), currentActor(r), app.UserListRequest{
		Role:  r.URL.Query().Get("role"),
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"users": res.Users, "total": res.Total, "page": res.Page, "limit": res.Limit})
}

// createUser handles POST /api/users.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body createUserBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), currentActor(r), app.CreateUserRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
		Phone:    body.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, u)
}

// getUser handles GET /api/users/{id}.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.svc.GetUser(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, u)
}

// getDebt handles GET /api/users/{id}/debt.
func (h *Handler) getDebt(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	debt, err := h.svc.GetDebt(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, debt)
}

// listDebtAdjustments handles GET /api/users/{id}/debt/adjustments.
func (h *Handler) listDebtAdjustments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.ListDebtAdjustments(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"debt": res.Summary, "adjustments": res.Adjustments})
}

// createDebtAdjustment handles POST /api/users/{id}/debt/adjustments.
func (h *Handler) createDebtAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body debtAdjustmentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	adj, err := h.svc.AdjustDebt(r.Context(), currentActor(r), id, app.AdjustDebtRequest{
		Amount:   body.Amount,
		Currency: body.Currency,
		Type:     body.Type,
		Notes:    body.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, adj)
}

// getUserStats handles GET /api/users/{id}/stats.
func (h *Handler) getUserStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	stats, err := h.svc.GetUserStats(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
