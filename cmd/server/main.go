package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	webAdapter "phonestore-crm/internal/adapters/web"
	"phonestore-crm/internal/app"
	"phonestore-crm/internal/cache"
	"phonestore-crm/internal/config"
	"phonestore-crm/internal/core"
	"phonestore-crm/internal/db"
	"phonestore-crm/internal/documents"
	"phonestore-crm/internal/events"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	config.SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// Money is serialized as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.Options{
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	ledger := core.NewDebtLedger(pool)
	services := app.Services{
		Users:    core.NewUserService(pool),
		Products: core.NewProductService(pool),
		Orders:   core.NewOrderService(pool, ledger),
		Ledger:   ledger,
		Reports:  core.NewReportingService(pool, ledger),
	}

	store, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, "phonestore:", cfg.ProductCacheTTL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, product cache disabled")
		store = nil
	}
	defer store.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, events disabled")
		} else {
			publisher = amqpPub
		}
	}
	defer publisher.Close()

	svc := app.NewAppService(services, store, publisher, documents.Store{
		Name:    cfg.StoreName,
		Address: cfg.StoreAddress,
	})

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		Ping:           pool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
