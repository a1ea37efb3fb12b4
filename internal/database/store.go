package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrStoreUnavailable marks failures to reach or prepare the selected backend.
var ErrStoreUnavailable = errors.New("store unavailable")

var errStoreClosed = errors.New("store is closed")

// Backend identifies which storage engine a Descriptor points at.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite3"
)

// Descriptor is the outcome of store selection: which backend to use and how
// to connect to it.
type Descriptor struct {
	Backend  Backend
	DSN      string
	Fallback bool

	MaxConns       int32
	MinConns       int32
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
}

// Select applies the backend decision table to the database configuration.
//
//	hosted + URL     -> pooled PostgreSQL over TLS
//	hosted, no URL   -> SQLite at the writable fallback path
//	not hosted       -> SQLite at the local path
func Select(cfg config.DatabaseConfig) Descriptor {
	d := Descriptor{
		MaxConns:       cfg.MaxConns,
		MinConns:       cfg.MinConns,
		IdleTimeout:    cfg.IdleTimeout,
		AcquireTimeout: cfg.AcquireTimeout,
	}

	switch {
	case cfg.Hosted && cfg.URL != "":
		d.Backend = BackendPostgres
		d.DSN = requireTLS(cfg.URL)
	case cfg.Hosted:
		d.Backend = BackendSQLite
		d.DSN = sqliteDSN(cfg.FallbackPath)
		d.Fallback = true
	default:
		d.Backend = BackendSQLite
		d.DSN = sqliteDSN(cfg.Path)
	}

	return d
}

// requireTLS forces sslmode=require on URL-style connection strings that do
// not choose an sslmode themselves. Key/value DSNs are returned untouched.
func requireTLS(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return dsn
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
}

// Store is the process-wide handle to the selected backend. The connection
// pool is opened on first use and shared by every caller afterwards.
//
// Opening only parses configuration and builds the pool; connections are
// dialed lazily, so an unreachable backend surfaces on the first query and is
// retried on the next one. A malformed connection string is a configuration
// error and stays failed for the life of the process.
type Store struct {
	descriptor Descriptor
	logger     *zap.Logger

	once sync.Once
	mu   sync.RWMutex
	db   *sql.DB
	err  error
}

// NewStore creates a store for the given descriptor without touching the
// network or the filesystem.
func NewStore(d Descriptor, logger *zap.Logger) *Store {
	return &Store{descriptor: d, logger: logger}
}

// Descriptor returns the selection this store was built from.
func (s *Store) Descriptor() Descriptor {
	return s.descriptor
}

// Dialect returns the backend name as goose and the diagnostics expect it.
func (s *Store) Dialect() string {
	return string(s.descriptor.Backend)
}

// DB returns the shared connection pool, opening it on the first call.
func (s *Store) DB(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return db, nil
}

// Conn checks out one connection from the pool. Waiting for a free
// connection is bounded by the acquire timeout; the caller's ctx still
// governs the queries run on the returned connection, which must be closed
// to hand it back to the pool.
func (s *Store) Conn(ctx context.Context) (*sql.Conn, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return nil, err
	}

	acquireCtx := ctx
	if s.descriptor.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, s.descriptor.AcquireTimeout)
		defer cancel()
	}

	conn, err := db.Conn(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: failed to acquire connection: %w", ErrStoreUnavailable, err)
	}
	return conn, nil
}

// Ping verifies the backend is reachable within the acquire timeout.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.DB(ctx)
	if err != nil {
		return err
	}

	if s.descriptor.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.descriptor.AcquireTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool if it was ever opened. Later calls to DB fail.
func (s *Store) Close() error {
	s.once.Do(func() { s.err = errStoreClosed })

	s.mu.Lock()
	db := s.db
	s.db, s.err = nil, errStoreClosed
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

func (s *Store) open() (*sql.DB, error) {
	s.once.Do(func() {
		db, err := s.connect()
		s.mu.Lock()
		s.db, s.err = db, err
		s.mu.Unlock()
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db, s.err
}

func (s *Store) connect() (*sql.DB, error) {
	switch s.descriptor.Backend {
	case BackendPostgres:
		return s.connectPostgres()
	case BackendSQLite:
		return s.connectSQLite()
	default:
		return nil, fmt.Errorf("unsupported backend %q", s.descriptor.Backend)
	}
}

func (s *Store) connectPostgres() (*sql.DB, error) {
	poolConfig, err := pgxpool.ParseConfig(s.descriptor.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	if s.descriptor.MaxConns > 0 {
		poolConfig.MaxConns = s.descriptor.MaxConns
	}
	poolConfig.MinConns = s.descriptor.MinConns
	if s.descriptor.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = s.descriptor.IdleTimeout
	}
	if s.descriptor.AcquireTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = s.descriptor.AcquireTimeout
	}

	// MinConns is zero by default so creating the pool does not dial.
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s.logger.Info("Opened PostgreSQL pool",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("idle_timeout", poolConfig.MaxConnIdleTime),
	)

	return stdlib.OpenDBFromPool(pool), nil
}

func (s *Store) connectSQLite() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.descriptor.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if s.descriptor.MaxConns > 0 {
		db.SetMaxOpenConns(int(s.descriptor.MaxConns))
	}
	db.SetMaxIdleConns(2)
	if s.descriptor.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(s.descriptor.IdleTimeout)
	}

	path := strings.TrimPrefix(s.descriptor.DSN, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	s.logger.Info("Opened SQLite database",
		zap.String("path", path),
		zap.Bool("fallback", s.descriptor.Fallback),
	)

	return db, nil
}
