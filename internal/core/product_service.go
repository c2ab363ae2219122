package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageBounds normalizes 1-based page/limit into LIMIT/OFFSET values.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	StockQuantity int
	StockStatus   string
}

func (in ProductInput) validate() error {
	var fields []FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if in.Price.IsNegative() {
		fields = append(fields, FieldError{Field: "price", Message: "must not be negative"})
	} else if !isCents(in.Price) {
		fields = append(fields, FieldError{Field: "price", Message: "must have at most 2 decimal places"})
	}
	if strings.TrimSpace(in.Category) == "" {
		fields = append(fields, FieldError{Field: "category", Message: "is required"})
	}
	if in.StockQuantity < 0 {
		fields = append(fields, FieldError{Field: "stockQuantity", Message: "must not be negative"})
	}
	if in.StockStatus != StockEnabled && in.StockStatus != StockDisabled {
		fields = append(fields, FieldError{Field: "stockStatus", Message: "must be enabled or disabled"})
	}
	if len(fields) > 0 {
		return NewValidationError("invalid product", fields...)
	}
	return nil
}

// ProductService manages the product catalog.
type ProductService interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error)
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = `id, name, description, price, category, stock_quantity, stock_status, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.StockQuantity, &p.StockStatus, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Currency = CurrencyForCategory(p.Category)
	return &p, nil
}

func (s *productService) ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error) {
	limit, offset := pageBounds(f.Page, f.Limit)

	where := "WHERE ($1::text = '' OR category = $1) AND (NOT $2::boolean OR stock_status = 'enabled')"

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, f.Category, f.OnlyEnabled).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products "+where+" ORDER BY category, name, id LIMIT $3 OFFSET $4",
		f.Category, f.OnlyEnabled, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read products: %w", err)
	}
	return products, total, nil
}

func (s *productService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Entity: "Product", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if in.StockStatus == "" {
		in.StockStatus = StockEnabled
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, category, stock_quantity, stock_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		in.Name, in.Description, in.Price, in.Category, in.StockQuantity, in.StockStatus))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error) {
	if in.StockStatus == "" {
		in.StockStatus = StockEnabled
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, stock_quantity = $6, stock_status = $7
		WHERE id = $1
		RETURNING `+productColumns,
		id, in.Name, in.Description, in.Price, in.Category, in.StockQuantity, in.StockStatus))
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Entity: "Product", ID: id}
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return p, nil
}

// lockedProduct is a product row held FOR UPDATE inside an order transaction.
// Stock is tracked in memory so repeated lines for one product see earlier reservations.
type lockedProduct struct {
	Product
	stock int
}

// lockProducts locks the given product rows in ascending id order and returns them by id.
// Ids with no row are simply absent from the result.
func lockProducts(ctx context.Context, tx pgx.Tx, ids []int) (map[int]*lockedProduct, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE",
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	locked := make(map[int]*lockedProduct, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		locked[p.ID] = &lockedProduct{Product: *p, stock: p.StockQuantity}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locked products: %w", err)
	}
	return locked, nil
}

// adjustStock adds delta to a product's stock_quantity.
func adjustStock(ctx context.Context, tx pgx.Tx, productID, delta int) error {
	tag, err := tx.Exec(ctx,
		"UPDATE products SET stock_quantity = stock_quantity + $2 WHERE id = $1",
		productID, delta)
	if err != nil {
		return fmt.Errorf("failed to update stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "Product", ID: productID}
	}
	return nil
}
