package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"phonestore-crm/internal/adapters/cli"
	"phonestore-crm/internal/app"
	"phonestore-crm/internal/config"
	"phonestore-crm/internal/core"
	"phonestore-crm/internal/db"
	"phonestore-crm/internal/documents"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	config.SetupLogger(cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.Options{MaxConns: 2})
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	ledger := core.NewDebtLedger(pool)
	svc := app.NewAppService(app.Services{
		Users:    core.NewUserService(pool),
		Products: core.NewProductService(pool),
		Orders:   core.NewOrderService(pool, ledger),
		Ledger:   ledger,
		Reports:  core.NewReportingService(pool, ledger),
	}, nil, nil, documents.Store{Name: cfg.StoreName, Address: cfg.StoreAddress})

	// The CLI runs with the privileges of a configured admin account.
	self := app.Actor{UserID: cfg.CLIUserID, Role: core.RoleAdmin}
	user, err := svc.GetUser(ctx, self, cfg.CLIUserID)
	if err != nil {
		log.Fatal().Err(err).Int("user_id", cfg.CLIUserID).Msg("CLI user not found")
	}
	if user.Role != core.RoleAdmin {
		log.Fatal().Int("user_id", user.ID).Msg("CLI user must be an admin")
	}

	if err := cli.Run(ctx, svc, self, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("command failed")
	}
}
