package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema declares the categories and products tables, one embedded goose
// migration set per backend, and applies them to a Store.
type Schema struct {
	store  *Store
	logger *zap.Logger
}

// NewSchema creates the registrar for the given store.
func NewSchema(store *Store, logger *zap.Logger) *Schema {
	return &Schema{store: store, logger: logger}
}

// Migrations returns the migration files for a backend.
func Migrations(backend Backend) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+string(backend))
}

func gooseDialect(backend Backend) (goose.Dialect, error) {
	switch backend {
	case BackendPostgres:
		return goose.DialectPostgres, nil
	case BackendSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("no migration dialect for backend %q", backend)
	}
}

func (s *Schema) provider(ctx context.Context) (*goose.Provider, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	backend := s.store.Descriptor().Backend
	dialect, err := gooseDialect(backend)
	if err != nil {
		return nil, err
	}

	fsys, err := Migrations(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	// Never close the provider; Provider.Close closes the Store's pool.
	p, err := goose.NewProvider(dialect, db, fsys, goose.WithDisableGlobalRegistry(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// Ensure creates any missing tables by applying pending migrations. Existing
// data is never touched and calling it again is a no-op.
func (s *Schema) Ensure(ctx context.Context) error {
	p, err := s.provider(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Checking for pending migrations...", zap.String("dialect", s.store.Dialect()))

	results, err := p.Up(ctx)
	s.logResults(results)
	if err != nil {
		s.logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("%w: failed to run migrations: %w", ErrStoreUnavailable, err)
	}

	s.logger.Info("Migrations completed successfully", zap.Int("applied", len(results)))
	return nil
}

// Refresh drops every table and recreates the schema from scratch. All rows
// are lost; only the maintenance CLI calls this.
func (s *Schema) Refresh(ctx context.Context) error {
	p, err := s.provider(ctx)
	if err != nil {
		return err
	}

	s.logger.Warn("Refreshing schema, all data will be dropped", zap.String("dialect", s.store.Dialect()))

	results, err := p.DownTo(ctx, 0)
	s.logResults(results)
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	results, err = p.Up(ctx)
	s.logResults(results)
	if err != nil {
		return fmt.Errorf("failed to reapply migrations: %w", err)
	}

	return nil
}

// Status reports every known migration and whether it has been applied.
func (s *Schema) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}
	return statuses, nil
}

func (s *Schema) logResults(results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		s.logger.Info("Migration applied",
			zap.String("direction", r.Direction),
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
			zap.Duration("duration", r.Duration),
		)
	}
}
