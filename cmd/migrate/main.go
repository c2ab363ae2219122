// migrate applies pending schema migrations from the embedded migrations directory.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"phonestore-crm/internal/config"
	"phonestore-crm/internal/db"
	"phonestore-crm/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("[CONFIG] failed")
	}
	config.SetupLogger(cfg.LogLevel)

	connCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := db.NewPool(connCtx, cfg.DatabaseURL, db.Options{MaxConns: 2})
	if err != nil {
		log.Fatal().Err(err).Msg("[CONNECT] failed")
	}
	defer pool.Close()
	log.Info().Msg("[CONNECT] success")

	if err := db.Migrate(context.Background(), pool, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] failed")
	}
	log.Info().Msg("[DONE] All migrations processed.")
}
