// seed creates the initial admin account and a sample catalog.
// Existing users with the same email are left untouched.
//
// Usage: SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"phonestore-crm/internal/config"
	"phonestore-crm/internal/core"
	"phonestore-crm/internal/db"
)

var catalog = []core.ProductInput{
	{Name: "Samsung Galaxy S24", Price: decimal.NewFromInt(800), Category: core.CategorySmartphones, StockQuantity: 10, StockStatus: core.StockEnabled},
	{Name: "iPhone 15", Price: decimal.NewFromInt(950), Category: core.CategorySmartphones, StockQuantity: 8, StockStatus: core.StockEnabled},
	{Name: "USB-C Charger 25W", Price: decimal.NewFromInt(900), Category: core.CategoryAccessories, StockQuantity: 40, StockStatus: core.StockEnabled},
	{Name: "Silicone Case", Price: decimal.NewFromInt(450), Category: core.CategoryAccessories, StockQuantity: 60, StockStatus: core.StockEnabled},
	{Name: "Screen Repair", Price: decimal.NewFromInt(3500), Category: "services", StockQuantity: 100, StockStatus: core.StockEnabled},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	config.SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer pool.Close()

	users := core.NewUserService(pool)
	products := core.NewProductService(pool)

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD environment variable not set")
	}
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@phonestore.local"
	}

	admin, err := users.CreateUser(ctx, core.UserInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     core.RoleAdmin,
	})
	var verr *core.ValidationError
	switch {
	case err == nil:
		log.Info().Int("user_id", admin.ID).Str("email", admin.Email).Msg("Admin created")
	case errors.As(err, &verr):
		log.Info().Str("email", email).Msg("Admin already exists, skipping")
	default:
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	existing, _, err := products.ListProducts(ctx, core.ProductFilter{Limit: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list products")
	}
	if len(existing) > 0 {
		log.Info().Msg("Catalog already populated, skipping")
		return
	}
	for _, in := range catalog {
		p, err := products.CreateProduct(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("product", in.Name).Msg("Failed to create product")
		}
		log.Info().Int("product_id", p.ID).Str("name", p.Name).Msg("Product created")
	}
	log.Info().Msg("Seed data restored successfully.")
}
