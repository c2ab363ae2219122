package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Order item replacement runs as an ordered pipeline inside one transaction:
//
//	load current items → lock products → restore stock → credit removed value →
//	delete items → insert new items → debit added value → update total
//
// Any failing step aborts the transaction and leaves the order exactly as it was.
// Removed and added values are recorded as separate ledger entries, never netted.

// editState is threaded through the replacement steps.
type editState struct {
	orderID  int
	clientID *int
	actorID  int

	// catalogPrice requires every new line to carry the locked product's current price.
	catalogPrice bool

	next     []ReplacementLine
	current  []OrderItem
	products map[int]*lockedProduct
	inserted []OrderItem
	total    decimal.Decimal
}

type editStep struct {
	name string
	run  func(ctx context.Context, tx pgx.Tx, st *editState) error
}

// Step names, in execution order.
const (
	StepLoadItems     = "load current items"
	StepLockProducts  = "lock products"
	StepRestoreStock  = "restore stock"
	StepCreditRemoved = "credit removed items"
	StepDeleteItems   = "delete items"
	StepInsertItems   = "insert new items"
	StepDebitAdded    = "debit added items"
	StepUpdateTotal   = "update total"
)

func (s *orderService) replacementSteps() []editStep {
	return []editStep{
		{StepLoadItems, loadCurrentItems},
		{StepLockProducts, lockEditProducts},
		{StepRestoreStock, restoreStock},
		{StepCreditRemoved, s.creditRemovedItems},
		{StepDeleteItems, deleteItems},
		{StepInsertItems, insertReplacementItems},
		{StepDebitAdded, s.debitAddedItems},
		{StepUpdateTotal, updateOrderTotal},
	}
}

func (s *orderService) runSteps(ctx context.Context, tx pgx.Tx, steps []editStep, st *editState) error {
	for _, step := range steps {
		if err := step.run(ctx, tx, st); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if s.stepHook != nil {
			if err := s.stepHook(step.name); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
	}
	return nil
}

func (in UpdateOrderInput) validate() error {
	var fields []FieldError
	if in.Status != nil && !ValidTransitionStatus(*in.Status) {
		fields = append(fields, FieldError{Field: "status", Message: "must be pending or completed"})
	}
	if in.ReplaceItems {
		if len(in.Items) == 0 {
			fields = append(fields, FieldError{Field: "items", Message: "at least one item is required"})
		}
		for i, l := range in.Items {
			if l.ProductID <= 0 {
				fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "must be a positive integer"})
			}
			if l.Quantity < 1 {
				fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"})
			}
			if l.Price.IsNegative() {
				fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "must not be negative"})
			} else if !isCents(l.Price) {
				fields = append(fields, FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "must have at most 2 decimal places"})
			}
		}
	}
	if in.Status == nil && !in.ReplaceItems {
		fields = append(fields, FieldError{Field: "body", Message: "status or items must be provided"})
	}
	if len(fields) > 0 {
		return NewValidationError("Validation failed", fields...)
	}
	return nil
}

// authorizeOwner applies the client self-service rules against the locked order row.
func (in UpdateOrderInput) authorizeOwner(h *orderHeader) error {
	if in.OwnerID == 0 {
		return nil
	}
	if h.clientID == nil || *h.clientID != in.OwnerID {
		return &AuthorizationError{Message: "You can only edit your own orders"}
	}
	if h.status != StatusPending {
		return &AuthorizationError{Message: "Only pending orders can be edited"}
	}
	if in.Status != nil && *in.Status != StatusPending {
		return &AuthorizationError{Message: "Only admins can change the order status"}
	}
	return nil
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID int, in UpdateOrderInput) (*UpdateOrderResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	header, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := in.authorizeOwner(header); err != nil {
		return nil, err
	}

	if in.ReplaceItems {
		st := &editState{
			orderID:      orderID,
			clientID:     header.clientID,
			actorID:      in.ActorID,
			catalogPrice: in.OwnerID != 0,
			next:         in.Items,
		}
		if err := s.runSteps(ctx, tx, s.replacementSteps(), st); err != nil {
			return nil, err
		}
	}

	if in.Status != nil {
		if _, err := tx.Exec(ctx, "UPDATE orders SET status = $2 WHERE id = $1", orderID, *in.Status); err != nil {
			return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order update: %w", err)
	}

	log.Info().Int("order_id", orderID).Int("actor_id", in.ActorID).
		Bool("items_updated", in.ReplaceItems).Msg("order updated")

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &UpdateOrderResult{Order: order, ItemsUpdated: in.ReplaceItems}, nil
}

// ── Steps ────────────────────────────────────────────────────────────────────

func loadCurrentItems(ctx context.Context, tx pgx.Tx, st *editState) error {
	items, err := fetchOrderItems(ctx, tx, st.orderID)
	if err != nil {
		return err
	}
	st.current = items
	return nil
}

func lockEditProducts(ctx context.Context, tx pgx.Tx, st *editState) error {
	ids := make([]int, 0, len(st.current)+len(st.next))
	for _, it := range st.current {
		ids = append(ids, it.ProductID)
	}
	for _, l := range st.next {
		ids = append(ids, l.ProductID)
	}
	products, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return err
	}
	st.products = products
	return nil
}

func restoreStock(ctx context.Context, tx pgx.Tx, st *editState) error {
	for _, it := range st.current {
		if err := adjustStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if p, ok := st.products[it.ProductID]; ok {
			p.stock += it.Quantity
		}
	}
	return nil
}

// creditRemovedItems writes a debt-reducing entry per currency for the value of the
// items being replaced, valued at their snapshot prices.
func (s *orderService) creditRemovedItems(ctx context.Context, tx pgx.Tx, st *editState) error {
	if st.clientID == nil {
		return nil
	}
	entries := debtEntry{
		userID:    *st.clientID,
		orderID:   &st.orderID,
		increase:  false,
		adjType:   AdjustmentItemsRemoved,
		notes:     fmt.Sprintf("Items removed from order #%d", st.orderID),
		createdBy: st.actorID,
	}.build(TotalsByCurrency(st.current))
	return s.ledger.AppendTx(ctx, tx, entries)
}

func deleteItems(ctx context.Context, tx pgx.Tx, st *editState) error {
	if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1", st.orderID); err != nil {
		return fmt.Errorf("failed to delete items of order %d: %w", st.orderID, err)
	}
	return nil
}

// insertReplacementItems checks stock after restoration, reserves it, and stores each
// line with the caller-supplied price.
func insertReplacementItems(ctx context.Context, tx pgx.Tx, st *editState) error {
	st.inserted = make([]OrderItem, 0, len(st.next))
	for _, l := range st.next {
		p, ok := st.products[l.ProductID]
		if !ok {
			return &NotFoundError{Entity: "Product", ID: l.ProductID}
		}
		if st.catalogPrice && !l.Price.Equal(p.Price) {
			return &AuthorizationError{Message: fmt.Sprintf("Only admins can change the price of %q", p.Name)}
		}
		if p.stock < l.Quantity {
			return &StockError{ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: p.stock}
		}
		p.stock -= l.Quantity
		if err := adjustStock(ctx, tx, p.ID, -l.Quantity); err != nil {
			return err
		}

		it := OrderItem{
			OrderID:     st.orderID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Quantity:    l.Quantity,
			Price:       l.Price,
		}
		if err := insertOrderItem(ctx, tx, &it); err != nil {
			return err
		}
		st.inserted = append(st.inserted, it)
	}
	return nil
}

// debitAddedItems writes a debt-increasing entry per currency for the new item set.
func (s *orderService) debitAddedItems(ctx context.Context, tx pgx.Tx, st *editState) error {
	if st.clientID == nil {
		return nil
	}
	entries := debtEntry{
		userID:    *st.clientID,
		orderID:   &st.orderID,
		increase:  true,
		adjType:   AdjustmentItemsAdded,
		notes:     fmt.Sprintf("Items added to order #%d", st.orderID),
		createdBy: st.actorID,
	}.build(TotalsByCurrency(st.inserted))
	return s.ledger.AppendTx(ctx, tx, entries)
}

func updateOrderTotal(ctx context.Context, tx pgx.Tx, st *editState) error {
	st.total = SumLineTotals(st.inserted)
	if _, err := tx.Exec(ctx, "UPDATE orders SET total_amount = $2 WHERE id = $1", st.orderID, st.total); err != nil {
		return fmt.Errorf("failed to update total of order %d: %w", st.orderID, err)
	}
	return nil
}
