package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// OrderService manages the order lifecycle. Every mutation keeps product stock, order
// items, and the debt ledger consistent inside a single transaction.
type OrderService interface {
	// CreateOrder validates every line against live catalog state, then atomically inserts
	// the order and its items, decrements stock, and (for pending orders of a registered
	// client) appends one debt-increase entry per currency.
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	// UpdateOrder replaces the item set and/or sets the status. See order_edit.go.
	UpdateOrder(ctx context.Context, orderID int, in UpdateOrderInput) (*UpdateOrderResult, error)
	// DeleteOrder restores stock, compensates the ledger for pending client orders,
	// and removes the order with its items.
	DeleteOrder(ctx context.Context, orderID, actorID int) error

	GetOrder(ctx context.Context, orderID int) (*Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, int, error)
}

type orderService struct {
	pool   *pgxpool.Pool
	ledger DebtLedgerService

	// stepHook, when set, runs after each edit step and may inject a failure.
	stepHook func(step string) error
}

func NewOrderService(pool *pgxpool.Pool, ledger DebtLedgerService) OrderService {
	return &orderService{pool: pool, ledger: ledger}
}

func (in CreateOrderInput) validate() error {
	var fields []FieldError
	if len(in.Lines) == 0 {
		fields = append(fields, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, l := range in.Lines {
		if l.ProductID <= 0 {
			fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "must be a positive integer"})
		}
		if l.Quantity < 1 {
			fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"})
		}
	}
	if in.ClientID == nil && in.Guest == nil {
		fields = append(fields, FieldError{Field: "clientId", Message: "a client or guest details are required"})
	}
	if in.Guest != nil && strings.TrimSpace(in.Guest.Name) == "" {
		fields = append(fields, FieldError{Field: "guestName", Message: "is required for guest orders"})
	}
	if in.Status != "" && !ValidTransitionStatus(in.Status) {
		fields = append(fields, FieldError{Field: "status", Message: "must be pending or completed"})
	}
	if len(fields) > 0 {
		return NewValidationError("Validation failed", fields...)
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if in.ClientID != nil {
		if err := ensureUser(ctx, tx, *in.ClientID); err != nil {
			return nil, err
		}
	}

	ids := make([]int, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	// Validate every line before the first write.
	items := make([]OrderItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, &NotFoundError{Entity: "Product", ID: l.ProductID}
		}
		if p.StockStatus == StockDisabled {
			return nil, &StockError{ProductID: p.ID, ProductName: p.Name, Disabled: true}
		}
		if p.stock < l.Quantity {
			return nil, &StockError{ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: p.stock}
		}
		p.stock -= l.Quantity
		items = append(items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Quantity:    l.Quantity,
			Price:       p.Price,
		})
	}
	total := SumLineTotals(items)

	var guestName, guestEmail, guestPhone *string
	if in.ClientID == nil {
		guestName = &in.Guest.Name
		guestEmail = nullIfEmpty(in.Guest.Email)
		guestPhone = nullIfEmpty(in.Guest.Phone)
	}

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (client_id, guest_name, guest_email, guest_phone, status, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, in.ClientID, guestName, guestEmail, guestPhone, status, total, nullIfZero(in.CreatedBy)).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = orderID
		if err := insertOrderItem(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
		if err := adjustStock(ctx, tx, items[i].ProductID, -items[i].Quantity); err != nil {
			return nil, err
		}
	}

	// Guest orders are paid on the spot and completed orders never had an unpaid period.
	if in.ClientID != nil && status == StatusPending {
		entries := debtEntry{
			userID:    *in.ClientID,
			orderID:   &orderID,
			increase:  true,
			adjType:   AdjustmentOrderCreated,
			notes:     fmt.Sprintf("Order #%d created", orderID),
			createdBy: in.CreatedBy,
		}.build(TotalsByCurrency(items))
		if err := s.ledger.AppendTx(ctx, tx, entries); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	log.Info().Int("order_id", orderID).Str("status", status).Str("total", total.String()).
		Int("created_by", in.CreatedBy).Msg("order created")

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID, actorID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	header, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}

	items, err := fetchOrderItems(ctx, tx, orderID)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	if _, err := lockProducts(ctx, tx, ids); err != nil {
		return err
	}
	for _, it := range items {
		if err := adjustStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	if header.clientID != nil && header.status == StatusPending {
		entries := debtEntry{
			userID:    *header.clientID,
			orderID:   &orderID,
			increase:  false,
			adjType:   AdjustmentOrderDeleted,
			notes:     fmt.Sprintf("Order #%d deleted", orderID),
			createdBy: actorID,
		}.build(TotalsByCurrency(items))
		if err := s.ledger.AppendTx(ctx, tx, entries); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", orderID); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}
	log.Info().Int("order_id", orderID).Int("actor_id", actorID).Msg("order deleted")
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderSelect = `
	SELECT o.id, o.client_id, COALESCE(u.name, ''), o.guest_name, o.guest_email, o.guest_phone,
	       o.status, o.total_amount, o.created_by, o.created_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.client_id`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.ClientID, &o.ClientName, &o.GuestName, &o.GuestEmail, &o.GuestPhone,
		&o.Status, &o.TotalAmount, &o.CreatedBy, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, orderSelect+" WHERE o.id = $1", orderID))
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Entity: "Order"}
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	items, err := fetchOrderItems(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, f OrderFilter) ([]Order, int, error) {
	limit, offset := pageBounds(f.Page, f.Limit)
	where := " WHERE ($1::int IS NULL OR o.client_id = $1) AND ($2::text = '' OR o.status = $2)"

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders o"+where, f.ClientID, f.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := s.pool.Query(ctx, orderSelect+where+" ORDER BY o.created_at DESC, o.id DESC LIMIT $3 OFFSET $4",
		f.ClientID, f.Status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	index := make(map[int]int)
	var ids []int
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return orders, total, nil
	}

	items, err := queryOrderItems(ctx, s.pool, "oi.order_id = ANY($1)", ids)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return orders, total, nil
}

// ── Shared helpers ───────────────────────────────────────────────────────────

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx (for Query).
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchOrderItems(ctx context.Context, q pgxRowQuerier, orderID int) ([]OrderItem, error) {
	return queryOrderItems(ctx, q, "oi.order_id = $1", orderID)
}

func queryOrderItems(ctx context.Context, q pgxRowQuerier, cond string, arg any) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.category, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE `+cond+`
		ORDER BY oi.order_id, oi.id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Category,
			&it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}

func insertOrderItem(ctx context.Context, tx pgx.Tx, it *OrderItem) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, it.OrderID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order item (product %d): %w", it.ProductID, err)
	}
	return nil
}

// orderHeader is the locked subset of an order row needed by mutations.
type orderHeader struct {
	clientID *int
	status   string
}

// lockOrder takes a row lock on the order for the rest of the transaction.
func lockOrder(ctx context.Context, tx pgx.Tx, orderID int) (*orderHeader, error) {
	var h orderHeader
	err := tx.QueryRow(ctx, "SELECT client_id, status FROM orders WHERE id = $1 FOR UPDATE", orderID).
		Scan(&h.clientID, &h.status)
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Entity: "Order"}
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}
	return &h, nil
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func nullIfZero(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}
