package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// SeedData is the on-disk seed format: categories and products with explicit
// IDs so products can reference their category.
type SeedData struct {
	Categories []*domain.Category `json:"categories"`
	Products   []*domain.Product  `json:"products"`
}

// SeedResult counts the rows written by Seed.
type SeedResult struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
}

// DecodeSeed reads a JSON seed document.
func DecodeSeed(r io.Reader) (*SeedData, error) {
	var data SeedData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	for i, c := range data.Categories {
		if c == nil || c.ID <= 0 {
			return nil, fmt.Errorf("seed category #%d has no id", i)
		}
	}
	for i, p := range data.Products {
		if p == nil || p.ID <= 0 {
			return nil, fmt.Errorf("seed product #%d has no id", i)
		}
	}

	return &data, nil
}

// Seed upserts the seed rows by ID, categories first, then moves the
// PostgreSQL id sequences past the highest seeded ID so later inserts do not
// collide. SQLite AUTOINCREMENT tracks explicit IDs on its own.
func Seed(ctx context.Context, store *Store, data *SeedData, logger *zap.Logger) (*SeedResult, error) {
	if err := NewSchema(store, logger).Ensure(ctx); err != nil {
		return nil, err
	}

	categories := repository.NewCategoryRepository(store)
	products := repository.NewProductRepository(store)

	for _, c := range data.Categories {
		if err := categories.Upsert(ctx, c); err != nil {
			return nil, err
		}
	}
	for _, p := range data.Products {
		if err := products.Upsert(ctx, p); err != nil {
			return nil, err
		}
	}

	if store.Descriptor().Backend == BackendPostgres {
		if err := resetSequences(ctx, store, "categories", "products"); err != nil {
			return nil, err
		}
	}

	result := &SeedResult{Categories: len(data.Categories), Products: len(data.Products)}
	logger.Info("Seed applied",
		zap.Int("categories", result.Categories),
		zap.Int("products", result.Products),
	)
	return result, nil
}

func resetSequences(ctx context.Context, store *Store, tables ...string) error {
	conn, err := store.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, table := range tables {
		// Table names come from the fixed list above, never from input.
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
			table,
		)
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s id sequence: %w", table, err)
		}
	}
	return nil
}
