package app

import "phonestore-crm/internal/core"

// OrderResult is returned by order create and read operations.
type OrderResult struct {
	Order *core.Order
}

// UpdateOrderResult is returned by UpdateOrder.
type UpdateOrderResult struct {
	Order        *core.Order
	ItemsUpdated bool
}

type OrderListResult struct {
	Orders []core.Order
	Total  int
	Page   int
	Limit  int
}

type ProductListResult struct {
	Products []core.Product `json:"products"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
}

type UserListResult struct {
	Users []core.User
	Total int
	Page  int
	Limit int
}

type DebtHistoryResult struct {
	Summary     *core.DebtSummary
	Adjustments []core.DebtAdjustment
}

type OutstandingDebtResult struct {
	Debts []core.ClientDebt
}
