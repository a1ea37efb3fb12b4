package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Upsert(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
}

type productRepository struct {
	pool Connector
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(pool Connector) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, title, price, discount_price, description, image, category_id, created_at, updated_at`

// Create inserts a new product and fills in the assigned ID
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = now()
	}
	product.UpdatedAt = product.CreatedAt

	query := `
		INSERT INTO products (title, price, discount_price, description, image, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err = conn.QueryRowContext(
		ctx,
		query,
		product.Title,
		product.Price,
		product.DiscountPrice,
		product.Description,
		product.Image,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Upsert inserts a product with an explicit ID, overwriting every column but
// created_at when the ID already exists
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = now()
	}
	product.UpdatedAt = now()

	query := `
		INSERT INTO products (id, title, price, discount_price, description, image, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title,
		    price = excluded.price,
		    discount_price = excluded.discount_price,
		    description = excluded.description,
		    image = excluded.image,
		    category_id = excluded.category_id,
		    updated_at = excluded.updated_at
	`

	_, err = conn.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Price,
		product.DiscountPrice,
		product.Description,
		product.Image,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", product.ID, err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products ordered by ID
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`
	return r.query(ctx, "list products", query)
}

// ListByCategory retrieves the products of one category ordered by ID
func (r *productRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY id ASC`
	return r.query(ctx, "list products by category", query, categoryID)
}

func (r *productRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Product, error) {
	conn, err := r.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&product.DiscountPrice,
		&product.Description,
		&product.Image,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
