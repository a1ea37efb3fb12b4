package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "PORT", "SERVER_ENV", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
		"HOSTED", "VERCEL", "DATABASE_URL", "POSTGRES_URL", "DB_PATH",
		"DB_MAX_CONNS", "DB_IDLE_TIMEOUT", "REDIS_ADDR", "RATE_LIMIT_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "3333", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Database.Hosted)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "database.sqlite", cfg.Database.Path)
	assert.NotEmpty(t, cfg.Database.FallbackPath)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, int32(0), cfg.Database.MinConns)
	assert.Equal(t, 10*time.Second, cfg.Database.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Database.AcquireTimeout)
	assert.Equal(t, 30*time.Second, cfg.Database.SchemaInitTimeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.IsProduction())
}

func TestLoadHostingAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("VERCEL", "1")
	t.Setenv("POSTGRES_URL", " postgres://u:p@db/shop ")
	t.Setenv("PORT", "8080")

	cfg := Load()

	assert.True(t, cfg.Database.Hosted)
	assert.Equal(t, "postgres://u:p@db/shop", cfg.Database.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadPrefersPrimaryKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://primary/shop")
	t.Setenv("POSTGRES_URL", "postgres://secondary/shop")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PORT", "8080")
	t.Setenv("HOSTED", "true")

	cfg := Load()

	assert.Equal(t, "postgres://primary/shop", cfg.Database.URL)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Database.Hosted)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_IDLE_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
