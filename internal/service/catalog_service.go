package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyCategory is returned for a category that exists but owns no
	// products. The HTTP layer reports it as 404.
	ErrEmptyCategory = errors.New("empty category")

	// ErrUnknownCategory is returned when a new product references a
	// category the store does not have.
	ErrUnknownCategory = errors.New("category not found")
)

// CreateProductInput carries the validated fields of a new product.
type CreateProductInput struct {
	Title         string
	Price         int64
	DiscountPrice *int64
	Description   *string
	Image         *string
	CategoryID    *int64
}

// CatalogService defines the read and create operations on categories and
// products
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, []*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory loads a category and its products concurrently.
func (s *catalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, []*domain.Product, error) {
	var (
		category *domain.Category
		products []*domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		category, err = s.categoryRepo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.ListByCategory(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(products) == 0 {
		return category, nil, ErrEmptyCategory
	}

	return category, products, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// CreateProduct persists a product. A dangling category reference is
// rejected by the store's foreign key and reported as ErrUnknownCategory.
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Title:         input.Title,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Description:   input.Description,
		Image:         input.Image,
		CategoryID:    input.CategoryID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}
