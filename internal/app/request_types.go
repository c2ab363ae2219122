package app

import "github.com/shopspring/decimal"

// OrderLineRequest is one requested line of a new order.
type OrderLineRequest struct {
	ProductID int
	Quantity  int
}

// CreateOrderRequest is the input for placing an order. ClientID takes precedence
// over the guest fields when both are present.
type CreateOrderRequest struct {
	ClientID   *int
	GuestName  string
	GuestEmail string
	GuestPhone string
	Status     string
	Items      []OrderLineRequest
}

// ReplacementLineRequest is one line of a replacement item set, with a negotiated price.
type ReplacementLineRequest struct {
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// UpdateOrderRequest edits an order. A nil Items leaves the items untouched;
// a non-nil empty slice is rejected.
type UpdateOrderRequest struct {
	Status *string
	Items  []ReplacementLineRequest
}

type OrderListRequest struct {
	Status string
	Page   int
	Limit  int
}

type ProductListRequest struct {
	Category string
	Page     int
	Limit    int
}

// ProductRequest carries the writable product fields.
type ProductRequest struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	StockQuantity int
	StockStatus   string
}

type UserListRequest struct {
	Role  string
	Page  int
	Limit int
}

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// AdjustDebtRequest is a manual ledger entry. A positive Amount reduces debt.
type AdjustDebtRequest struct {
	Amount   decimal.Decimal
	Currency string
	Type     string
	Notes    string
}
