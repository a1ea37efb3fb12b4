package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Upsert(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
}

type categoryRepository struct {
	pool Connector
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(pool Connector) CategoryRepository {
	return &categoryRepository{pool: pool}
}

// Create inserts a new category and fills in the assigned ID
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if category.CreatedAt.IsZero() {
		category.CreatedAt = now()
	}
	category.UpdatedAt = category.CreatedAt

	query := `
		INSERT INTO categories (title, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err = conn.QueryRowContext(
		ctx,
		query,
		category.Title,
		category.Image,
		category.CreatedAt,
		category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Upsert inserts a category with an explicit ID, replacing the title and
// image of an existing row with the same ID
func (r *categoryRepository) Upsert(ctx context.Context, category *domain.Category) error {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if category.CreatedAt.IsZero() {
		category.CreatedAt = now()
	}
	category.UpdatedAt = now()

	query := `
		INSERT INTO categories (id, title, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title, image = excluded.image, updated_at = excluded.updated_at
	`

	_, err = conn.ExecContext(
		ctx,
		query,
		category.ID,
		category.Title,
		category.Image,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category %d: %w", category.ID, err)
	}

	return nil
}

// List retrieves all categories ordered by ID
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := `
		SELECT id, title, image, created_at, updated_at
		FROM categories
		ORDER BY id ASC
	`

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := `
		SELECT id, title, image, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	err := row.Scan(
		&category.ID,
		&category.Title,
		&category.Image,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}
