package app

import (
	"context"

	"phonestore-crm/internal/core"
)

// Actor is the authenticated caller of an application operation.
type Actor struct {
	UserID int
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == core.RoleAdmin }

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It owns authorization and side effects (cache, events); core services own data rules.
// Implementations must contain no presentation logic.
type ApplicationService interface {
	// Login checks credentials and returns the user on success.
	Login(ctx context.Context, email, password string) (*core.User, error)
	// GetUser returns a user. Clients may only read themselves.
	GetUser(ctx context.Context, actor Actor, userID int) (*core.User, error)
	ListUsers(ctx context.Context, actor Actor, req UserListRequest) (*UserListResult, error)
	CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*core.User, error)

	// ListProducts serves from cache when possible.
	ListProducts(ctx context.Context, req ProductListRequest) (*ProductListResult, error)
	GetProduct(ctx context.Context, productID int) (*core.Product, error)
	CreateProduct(ctx context.Context, actor Actor, req ProductRequest) (*core.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, productID int, req ProductRequest) (*core.Product, error)

	// CreateOrder places an order for the actor, another client (admin), or a guest (admin).
	CreateOrder(ctx context.Context, actor Actor, req CreateOrderRequest) (*OrderResult, error)
	// UpdateOrder replaces items and/or sets status, reconciling stock and debt.
	UpdateOrder(ctx context.Context, actor Actor, orderID int, req UpdateOrderRequest) (*UpdateOrderResult, error)
	DeleteOrder(ctx context.Context, actor Actor, orderID int) error
	GetOrder(ctx context.Context, actor Actor, orderID int) (*OrderResult, error)
	ListOrders(ctx context.Context, actor Actor, req OrderListRequest) (*OrderListResult, error)

	GetDebt(ctx context.Context, actor Actor, userID int) (*core.DebtSummary, error)
	ListDebtAdjustments(ctx context.Context, actor Actor, userID int) (*DebtHistoryResult, error)
	// AdjustDebt appends a manual ledger entry. Admin only.
	AdjustDebt(ctx context.Context, actor Actor, userID int, req AdjustDebtRequest) (*core.DebtAdjustment, error)
	GetUserStats(ctx context.Context, actor Actor, userID int) (*core.UserStats, error)
	OutstandingDebts(ctx context.Context, actor Actor) (*OutstandingDebtResult, error)

	// InvoicePDF renders the invoice for one order.
	InvoicePDF(ctx context.Context, actor Actor, orderID int) ([]byte, error)
	// DebtReportPDF renders all outstanding client debt. Admin only.
	DebtReportPDF(ctx context.Context, actor Actor) ([]byte, error)
}
