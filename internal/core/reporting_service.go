package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReportingService provides read-only per-client figures.
type ReportingService interface {
	// Revenue sums completed order lines for a client, split by currency.
	Revenue(ctx context.Context, userID int) (*Revenue, error)
	OrderCounts(ctx context.Context, userID int) (*OrderCounts, error)
	// UserStats gathers debt, revenue, and order counts concurrently.
	UserStats(ctx context.Context, userID int) (*UserStats, error)
}

type reportingService struct {
	pool   *pgxpool.Pool
	ledger DebtLedgerService
}

func NewReportingService(pool *pgxpool.Pool, ledger DebtLedgerService) ReportingService {
	return &reportingService{pool: pool, ledger: ledger}
}

func (s *reportingService) Revenue(ctx context.Context, userID int) (*Revenue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.category, COALESCE(SUM(oi.quantity * oi.price), 0)
		FROM order_items oi
		JOIN orders o   ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.client_id = $1 AND o.status = $2
		GROUP BY p.category
	`, userID, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := Revenue{EUR: decimal.Zero, MKD: decimal.Zero}
	for rows.Next() {
		var category string
		var sum decimal.Decimal
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		switch CurrencyForCategory(category) {
		case CurrencyEUR:
			out.EUR = out.EUR.Add(sum)
		default:
			out.MKD = out.MKD.Add(sum)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read revenue rows: %w", err)
	}
	return &out, nil
}

func (s *reportingService) OrderCounts(ctx context.Context, userID int) (*OrderCounts, error) {
	var c OrderCounts
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM orders
		WHERE client_id = $1
	`, userID, StatusPending, StatusCompleted).Scan(&c.Total, &c.Pending, &c.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders for user %d: %w", userID, err)
	}
	return &c, nil
}

func (s *reportingService) UserStats(ctx context.Context, userID int) (*UserStats, error) {
	if err := ensureUser(ctx, s.pool, userID); err != nil {
		return nil, err
	}

	var (
		debt    *DebtSummary
		revenue *Revenue
		counts  *OrderCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		debt, err = s.ledger.Summary(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.Revenue(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.OrderCounts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &UserStats{
		UserID:  userID,
		Debt:    *debt,
		Revenue: *revenue,
		Orders:  *counts,
	}, nil
}
