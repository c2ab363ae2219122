package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DebtLedgerService is the append-only per-user, per-currency debt ledger.
// Current debt is always re-derived from the entries; there is no stored balance.
type DebtLedgerService interface {
	// AppendTx writes entries inside the caller's transaction. A failure must abort the caller.
	AppendTx(ctx context.Context, tx pgx.Tx, entries []DebtAdjustment) error
	// Adjust records a standalone manual adjustment in its own transaction.
	Adjust(ctx context.Context, adj DebtAdjustment) (*DebtAdjustment, error)
	Summary(ctx context.Context, userID int) (*DebtSummary, error)
	History(ctx context.Context, userID int) ([]DebtAdjustment, error)
	// Outstanding returns every user with nonzero debt in at least one currency.
	Outstanding(ctx context.Context) ([]ClientDebt, error)
}

type DebtLedger struct {
	pool *pgxpool.Pool
}

func NewDebtLedger(pool *pgxpool.Pool) *DebtLedger {
	return &DebtLedger{pool: pool}
}

func (l *DebtLedger) AppendTx(ctx context.Context, tx pgx.Tx, entries []DebtAdjustment) error {
	for _, e := range entries {
		if !e.Currency.Valid() {
			return fmt.Errorf("invalid ledger currency %q", e.Currency)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_debt_adjustments
				(user_id, adjustment_amount, currency, adjustment_type, notes, order_id, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, e.UserID, e.Amount, string(e.Currency), e.Type, e.Notes, e.OrderID, e.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert debt adjustment (user=%d, currency=%s): %w", e.UserID, e.Currency, err)
		}
	}
	return nil
}

func (l *DebtLedger) Adjust(ctx context.Context, adj DebtAdjustment) (*DebtAdjustment, error) {
	if !adj.Currency.Valid() {
		return nil, NewValidationError("invalid currency", FieldError{Field: "currency", Message: "must be EUR or MKD"})
	}
	if adj.Amount.IsZero() {
		return nil, NewValidationError("adjustment amount must be nonzero", FieldError{Field: "amount", Message: "must be nonzero"})
	}
	if !isCents(adj.Amount) {
		return nil, NewValidationError("invalid adjustment amount", FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureUser(ctx, tx, adj.UserID); err != nil {
		return nil, err
	}

	out := adj
	err = tx.QueryRow(ctx, `
		INSERT INTO user_debt_adjustments
			(user_id, adjustment_amount, currency, adjustment_type, notes, order_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, adj.UserID, adj.Amount, string(adj.Currency), adj.Type, adj.Notes, adj.OrderID, adj.CreatedBy).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert debt adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit debt adjustment: %w", err)
	}
	return &out, nil
}

func (l *DebtLedger) Summary(ctx context.Context, userID int) (*DebtSummary, error) {
	if err := ensureUser(ctx, l.pool, userID); err != nil {
		return nil, err
	}

	rows, err := l.pool.Query(ctx, `
		SELECT currency, COALESCE(SUM(adjustment_amount), 0)
		FROM user_debt_adjustments
		WHERE user_id = $1
		GROUP BY currency
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debt for user %d: %w", userID, err)
	}
	defer rows.Close()

	sums := make(map[Currency]decimal.Decimal)
	for rows.Next() {
		var currency string
		var sum decimal.Decimal
		if err := rows.Scan(&currency, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan debt sum: %w", err)
		}
		sums[Currency(currency)] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read debt sums: %w", err)
	}

	summary := summaryFromSums(userID, sums)
	return &summary, nil
}

func (l *DebtLedger) History(ctx context.Context, userID int) ([]DebtAdjustment, error) {
	if err := ensureUser(ctx, l.pool, userID); err != nil {
		return nil, err
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, user_id, adjustment_amount, currency, adjustment_type, notes, order_id, created_by, created_at
		FROM user_debt_adjustments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debt adjustments: %w", err)
	}
	defer rows.Close()

	var out []DebtAdjustment
	for rows.Next() {
		var a DebtAdjustment
		var currency string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Amount, &currency, &a.Type, &a.Notes,
			&a.OrderID, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt adjustment: %w", err)
		}
		a.Currency = Currency(currency)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *DebtLedger) Outstanding(ctx context.Context) ([]ClientDebt, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.phone, a.currency, SUM(a.adjustment_amount)
		FROM user_debt_adjustments a
		JOIN users u ON u.id = a.user_id
		GROUP BY u.id, u.name, u.email, u.phone, a.currency
		ORDER BY u.name, u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding debt: %w", err)
	}
	defer rows.Close()

	var order []int
	byUser := make(map[int]*ClientDebt)
	for rows.Next() {
		var cd ClientDebt
		var currency string
		var sum decimal.Decimal
		if err := rows.Scan(&cd.UserID, &cd.Name, &cd.Email, &cd.Phone, &currency, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding debt: %w", err)
		}
		row, ok := byUser[cd.UserID]
		if !ok {
			row = &cd
			byUser[cd.UserID] = row
			order = append(order, cd.UserID)
		}
		switch Currency(currency) {
		case CurrencyEUR:
			row.EURDebt = DebtFromBalance(sum)
		case CurrencyMKD:
			row.MKDDebt = DebtFromBalance(sum)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outstanding debt: %w", err)
	}

	var out []ClientDebt
	for _, id := range order {
		row := byUser[id]
		if row.EURDebt.IsPositive() || row.MKDDebt.IsPositive() {
			out = append(out, *row)
		}
	}
	return out, nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ensureUser returns a NotFoundError if no user has the given id.
func ensureUser(ctx context.Context, q pgxQuerier, userID int) error {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up user %d: %w", userID, err)
	}
	if !exists {
		return &NotFoundError{Entity: "User", ID: userID}
	}
	return nil
}

// isNoRows is a small readability helper around pgx.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
