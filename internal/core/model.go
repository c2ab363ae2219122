package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the ISO code a ledger entry or line total is denominated in.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyMKD Currency = "MKD"
)

// Currencies lists every supported currency in reporting order.
var Currencies = []Currency{CurrencyEUR, CurrencyMKD}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyEUR || c == CurrencyMKD
}

// Product categories. Smartphones are priced in EUR, everything else in MKD.
const (
	CategorySmartphones = "smartphones"
	CategoryAccessories = "accessories"
)

// CurrencyForCategory maps a product category to the currency its price is quoted in.
func CurrencyForCategory(category string) Currency {
	if category == CategorySmartphones {
		return CurrencyEUR
	}
	return CurrencyMKD
}

// User roles.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is a registered account: either staff (admin) or a client who can carry debt.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stock statuses.
const (
	StockEnabled  = "enabled"
	StockDisabled = "disabled"
)

// Product is a catalog entry. Price is in the currency implied by Category.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Currency      Currency        `json:"currency"`
	StockQuantity int             `json:"stock_quantity"`
	StockStatus   string          `json:"stock_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Order statuses. Only pending and completed are produced by order operations;
// the rest are legacy values the schema still accepts.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

// ValidTransitionStatus reports whether s may be set by order create/update.
func ValidTransitionStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

// Order is an order header with its line items.
// TotalAmount sums line totals across both currencies; it is a display aggregate,
// not a financial total. Per-currency amounts live in the debt ledger and ByCurrency.
type Order struct {
	ID          int             `json:"id"`
	ClientID    *int            `json:"client_id"`
	ClientName  string          `json:"client_name,omitempty"`
	GuestName   *string         `json:"guest_name,omitempty"`
	GuestEmail  *string         `json:"guest_email,omitempty"`
	GuestPhone  *string         `json:"guest_phone,omitempty"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedBy   *int            `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// IsGuest reports whether the order has no registered client.
func (o *Order) IsGuest() bool { return o.ClientID == nil }

// ByCurrency returns the order's line totals grouped by currency.
func (o *Order) ByCurrency() map[Currency]decimal.Decimal {
	return TotalsByCurrency(o.Items)
}

// OrderItem is one line of an order. Price is the unit price snapshot taken when the
// line was written; it does not follow later catalog price changes.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// LineTotal is quantity × unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Currency is the currency of the line, derived from the product category.
func (i OrderItem) Currency() Currency {
	return CurrencyForCategory(i.Category)
}

// OrderLineInput is one requested line on order creation. The price is always
// taken from the catalog at creation time.
type OrderLineInput struct {
	ProductID int
	Quantity  int
}

// ReplacementLine is one line of a full item-set replacement. Price is supplied by
// the caller and stored as-is, preserving negotiated pricing.
type ReplacementLine struct {
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// GuestInfo identifies the buyer of an order with no registered client.
type GuestInfo struct {
	Name  string
	Email string
	Phone string
}

// CreateOrderInput is the resolved input for OrderService.CreateOrder.
// Exactly one of ClientID and Guest is set.
type CreateOrderInput struct {
	ClientID  *int
	Guest     *GuestInfo
	Status    string // empty means pending
	Lines     []OrderLineInput
	CreatedBy int
}

// UpdateOrderInput describes an order edit. A nil Items leaves the item set untouched;
// a nil Status leaves the status untouched.
type UpdateOrderInput struct {
	Status *string
	Items  []ReplacementLine
	// ReplaceItems distinguishes "no items key" from an explicit list.
	ReplaceItems bool
	ActorID      int

	// OwnerID is set when a client edits their own order. The order must then belong
	// to OwnerID and be pending, status may only stay pending, and every replacement
	// price must equal the current catalog price. Zero means an admin edit.
	OwnerID int
}

// UpdateOrderResult reports what an edit changed.
type UpdateOrderResult struct {
	Order        *Order
	ItemsUpdated bool
}

// OrderFilter narrows ListOrders. Zero values mean "no filter".
type OrderFilter struct {
	ClientID *int
	Status   string
	Page     int
	Limit    int
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Category    string
	OnlyEnabled bool
	Page        int
	Limit       int
}

// Debt adjustment types written by the system. Manual adjustments use any caller-supplied tag.
const (
	AdjustmentOrderCreated    = "order_created"
	AdjustmentItemsRemoved    = "items_removed"
	AdjustmentItemsAdded      = "items_added"
	AdjustmentOrderDeleted    = "order_deleted"
	AdjustmentManualReduction = "manual_reduction"
	AdjustmentManualIncrease  = "manual_increase"
)

// DebtAdjustment is an immutable ledger entry. Negative amounts increase the user's
// debt, positive amounts reduce it.
type DebtAdjustment struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Amount    decimal.Decimal `json:"adjustment_amount"`
	Currency  Currency        `json:"currency"`
	Type      string          `json:"adjustment_type"`
	Notes     string          `json:"notes"`
	OrderID   *int            `json:"order_id,omitempty"`
	CreatedBy *int            `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DebtSummary is a user's current debt per currency.
// TotalDebt adds EUR and MKD without conversion and is for display only.
type DebtSummary struct {
	UserID    int             `json:"user_id"`
	EURDebt   decimal.Decimal `json:"eurDebt"`
	MKDDebt   decimal.Decimal `json:"mkdDebt"`
	TotalDebt decimal.Decimal `json:"totalDebt"`
}

// ClientDebt is one row of the outstanding-debt report.
type ClientDebt struct {
	UserID  int
	Name    string
	Email   string
	Phone   string
	EURDebt decimal.Decimal
	MKDDebt decimal.Decimal
}

// Revenue is the value of completed orders, split by currency.
type Revenue struct {
	EUR decimal.Decimal `json:"eurRevenue"`
	MKD decimal.Decimal `json:"mkdRevenue"`
}

// OrderCounts are per-status order counts for one client.
type OrderCounts struct {
	Total     int `json:"totalOrders"`
	Pending   int `json:"pendingOrders"`
	Completed int `json:"completedOrders"`
}

// UserStats combines debt, revenue, and order counts for one client.
type UserStats struct {
	UserID  int         `json:"user_id"`
	Debt    DebtSummary `json:"debt"`
	Revenue Revenue     `json:"revenue"`
	Orders  OrderCounts `json:"orders"`
}
