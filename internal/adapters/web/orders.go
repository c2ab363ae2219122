package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"phonestore-crm/internal/app"
	"phonestore-crm/internal/core"
)

type orderLineBody struct {
	ProductID int `json:"productId" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
}

type createOrderBody struct {
	Items      []orderLineBody `json:"items" validate:"required,min=1,dive"`
	ClientID   *int            `json:"clientId" validate:"omitempty,min=1"`
	GuestName  string          `json:"guestName" validate:"omitempty,max=200"`
	GuestEmail string          `json:"guestEmail" validate:"omitempty,email"`
	GuestPhone string          `json:"guestPhone" validate:"omitempty,max=50"`
	Status     string          `json:"status" validate:"omitempty,oneof=pending completed"`
}

// Price is a pointer so a missing price is a validation error rather than zero.
type replacementLineBody struct {
	ProductID int              `json:"productId" validate:"required,min=1"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

type updateOrderBody struct {
	Status *string               `json:"status" validate:"omitempty,oneof=pending completed"`
	Items  []replacementLineBody `json:"items" validate:"omitempty,dive"`
}

type orderItemView struct {
	ID          int             `json:"id"`
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Currency    core.Currency   `json:"currency"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type orderView struct {
	ID          int             `json:"id"`
	ClientID    *int            `json:"clientId"`
	ClientName  string          `json:"clientName,omitempty"`
	GuestName   *string         `json:"guestName,omitempty"`
	GuestEmail  *string         `json:"guestEmail,omitempty"`
	GuestPhone  *string         `json:"guestPhone,omitempty"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	EURTotal    decimal.Decimal `json:"eurTotal"`
	MKDTotal    decimal.Decimal `json:"mkdTotal"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []orderItemView `json:"items"`
}

func toOrderView(o *core.Order) orderView {
	totals := o.ByCurrency()
	v := orderView{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		GuestName:   o.GuestName,
		GuestEmail:  o.GuestEmail,
		GuestPhone:  o.GuestPhone,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		EURTotal:    totals[core.CurrencyEUR],
		MKDTotal:    totals[core.CurrencyMKD],
		CreatedAt:   o.CreatedAt,
		Items:       make([]orderItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			Currency:    it.Currency(),
			Quantity:    it.Quantity,
			Price:       it.Price,
			LineTotal:   it.LineTotal(),
		})
	}
	return v
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var body createOrderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	req := app.CreateOrderRequest{
		ClientID:   body.ClientID,
		GuestName:  body.GuestName,
		GuestEmail: body.GuestEmail,
		GuestPhone: body.GuestPhone,
		Status:     body.Status,
	}
	for _, l := range body.Items {
		req.Items = append(req.Items, app.OrderLineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	res, err := h.svc.CreateOrder(r.Context(), currentActor(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"message":     "Order created successfully",
		"orderId":     res.Order.ID,
		"totalAmount": res.Order.TotalAmount,
	})
}

// updateOrder handles PUT /api/orders/{id}.
func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body updateOrderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validateRequest(body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	req := app.UpdateOrderRequest{Status: body.Status}
	if body.Items != nil {
		req.Items = make([]app.ReplacementLineRequest, 0, len(body.Items))
		for _, l := range body.Items {
			req.Items = append(req.Items, app.ReplacementLineRequest{ProductID: l.ProductID, Quantity: l.Quantity, Price: *l.Price})
		}
	}

	res, err := h.svc.UpdateOrder(r.Context(), currentActor(r), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message":      "Order updated successfully",
		"orderId":      res.Order.ID,
		"status":       res.Order.Status,
		"itemsUpdated": res.ItemsUpdated,
	})
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.GetOrder(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toOrderView(res.Order))
}

// listOrders handles GET /api/orders.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListOrders(r.Context(), currentActor(r), app.OrderListRequest{
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]orderView, 0, len(res.Orders))
	for i := range res.Orders {
		views = append(views, toOrderView(&res.Orders[i]))
	}
	writeJSON(w, map[string]any{"orders": views, "total": res.Total, "page": res.Page, "limit": res.Limit})
}

// deleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"message": "Order deleted successfully", "orderId": id})
}

// orderInvoice handles GET /api/orders/{id}/invoice.pdf.
func (h *Handler) orderInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pdf, err := h.svc.InvoicePDF(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("invoice-%d.pdf", id), pdf)
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
