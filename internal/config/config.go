package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DatabaseConfig carries everything the store selector needs. Hosted mirrors
// the platform flag (HOSTED, or VERCEL as set by the hosting provider).
type DatabaseConfig struct {
	Hosted            bool
	URL               string
	Path              string
	FallbackPath      string
	MaxConns          int32
	MinConns          int32
	IdleTimeout       time.Duration
	AcquireTimeout    time.Duration
	SchemaInitTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	_ = v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	_ = v.BindEnv("DATABASE_URL", "DATABASE_URL", "POSTGRES_URL")

	// Set defaults
	v.SetDefault("SERVER_PORT", "3333")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("HOSTED", false)
	v.SetDefault("DB_PATH", "database.sqlite")
	v.SetDefault("DB_FALLBACK_PATH", filepath.Join(os.TempDir(), "storefront.sqlite"))
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MIN_CONNS", 0)
	v.SetDefault("DB_IDLE_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_ACQUIRE_TIMEOUT", 30*time.Second)
	v.SetDefault("SCHEMA_INIT_TIMEOUT", 30*time.Second)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Hosted:            v.GetBool("HOSTED") || v.GetString("VERCEL") != "",
			URL:               strings.TrimSpace(v.GetString("DATABASE_URL")),
			Path:              v.GetString("DB_PATH"),
			FallbackPath:      v.GetString("DB_FALLBACK_PATH"),
			MaxConns:          v.GetInt32("DB_MAX_CONNS"),
			MinConns:          v.GetInt32("DB_MIN_CONNS"),
			IdleTimeout:       v.GetDuration("DB_IDLE_TIMEOUT"),
			AcquireTimeout:    v.GetDuration("DB_ACQUIRE_TIMEOUT"),
			SchemaInitTimeout: v.GetDuration("SCHEMA_INIT_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

// IsProduction reports whether the server runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
