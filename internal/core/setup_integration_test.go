package core_test

import (
	"context"
	"os"
	"testing"

	"phonestore-crm/internal/core"
	"phonestore-crm/internal/db"
	"phonestore-crm/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	adminID    = 1
	clientID   = 7
	phoneID    = 1 // smartphone, 500 EUR, stock 10
	chargerID  = 2 // accessory, 50 MKD, stock 20
	disabledID = 3 // accessory, disabled
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE user_debt_adjustments, order_items, orders, products, users RESTART IDENTITY CASCADE;

		INSERT INTO users (id, name, email, password_hash, role, phone) VALUES
		(1, 'Store Admin', 'admin@test.local',  'x', 'admin',  ''),
		(7, 'Marko Petrov', 'marko@test.local', 'x', 'client', '+389 70 000 000'),
		(8, 'Ana Ilieva',   'ana@test.local',   'x', 'client', '');

		INSERT INTO products (id, name, price, category, stock_quantity, stock_status) VALUES
		(1, 'Galaxy S24',   500.00, 'smartphones', 10, 'enabled'),
		(2, 'USB-C Charger', 50.00, 'accessories', 20, 'enabled'),
		(3, 'Old Case',      10.00, 'accessories', 5,  'disabled');

		SELECT setval('users_id_seq', 100);
		SELECT setval('products_id_seq', 100);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newServices(pool *pgxpool.Pool) (core.OrderService, *core.DebtLedger) {
	ledger := core.NewDebtLedger(pool)
	return core.NewOrderService(pool, ledger), ledger
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID int) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&n); err != nil {
		t.Fatalf("failed to read stock of product %d: %v", productID, err)
	}
	return n
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func intPtr(i int) *int { return &i }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
