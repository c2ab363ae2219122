package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, "phonestore.events", cfg.EventsExchange)
	assert.Empty(t, cfg.RedisAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestValidate_MissingRequired(t *testing.T) {
	assert.Error(t, Config{JWTSecret: "x"}.Validate())
	assert.Error(t, Config{DatabaseURL: "postgres://"}.Validate())
}

func TestSetupLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	SetupLogger("chatty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetupLogger("DEBUG")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
