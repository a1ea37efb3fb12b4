package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCategoryRepo struct {
	categories map[int64]*domain.Category
	err        error
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error { return f.err }
func (f *fakeCategoryRepo) Upsert(ctx context.Context, c *domain.Category) error { return f.err }

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

type fakeProductRepo struct {
	products  []*domain.Product
	createErr error
	nextID    int64
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, p)
	return nil
}

func (f *fakeProductRepo) Upsert(ctx context.Context, p *domain.Product) error { return nil }

func (f *fakeProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range f.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func int64Ptr(i int64) *int64 { return &i }

func TestGetCategoryReturnsProducts(t *testing.T) {
	categories := &fakeCategoryRepo{categories: map[int64]*domain.Category{
		1: {ID: 1, Title: "Stationery"},
	}}
	products := &fakeProductRepo{products: []*domain.Product{
		{ID: 1, Title: "Pen", Price: 100, CategoryID: int64Ptr(1)},
		{ID: 2, Title: "Novel", Price: 900, CategoryID: int64Ptr(2)},
	}}

	svc := NewCatalogService(categories, products)

	category, list, err := svc.GetCategory(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Stationery", category.Title)
	require.Len(t, list, 1)
	assert.Equal(t, "Pen", list[0].Title)
}

func TestGetCategoryEmpty(t *testing.T) {
	categories := &fakeCategoryRepo{categories: map[int64]*domain.Category{
		1: {ID: 1, Title: "Stationery"},
	}}
	svc := NewCatalogService(categories, &fakeProductRepo{})

	_, _, err := svc.GetCategory(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyCategory)
}

func TestGetCategoryMissing(t *testing.T) {
	svc := NewCatalogService(&fakeCategoryRepo{categories: map[int64]*domain.Category{}}, &fakeProductRepo{})

	_, _, err := svc.GetCategory(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestGetCategoryStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewCatalogService(&fakeCategoryRepo{err: boom}, &fakeProductRepo{})

	_, _, err := svc.GetCategory(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	fk := fmt.Errorf("failed to create product: %w", &pgconn.PgError{Code: "23503"})
	svc := NewCatalogService(&fakeCategoryRepo{}, &fakeProductRepo{createErr: fk})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Title: "Pen", Price: 100, CategoryID: int64Ptr(9)})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCreateProductOtherFailure(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewCatalogService(&fakeCategoryRepo{}, &fakeProductRepo{createErr: boom})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Title: "Pen", Price: 100})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnknownCategory)
}

// Feature: storefront, Property 5: Created products keep every submitted field
func TestProperty_CreateProductPreservesInput(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("CreateProduct returns the submitted fields with an id", prop.ForAll(
		func(title string, price int64, discount *int64) bool {
			repo := &fakeProductRepo{}
			svc := NewCatalogService(&fakeCategoryRepo{}, repo)

			product, err := svc.CreateProduct(context.Background(), CreateProductInput{
				Title:         title,
				Price:         price,
				DiscountPrice: discount,
			})
			if err != nil {
				return false
			}

			return product.ID > 0 &&
				product.Title == title &&
				product.Price == price &&
				product.DiscountPrice == discount &&
				len(repo.products) == 1
		},
		gen.Identifier(),
		gen.Int64Range(0, 2147483647),
		gen.PtrOf(gen.Int64Range(0, 2147483647)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSubmissionServiceIssuesFreshReferences(t *testing.T) {
	svc := NewSubmissionService(zap.NewNop())
	ctx := context.Background()

	first, err := svc.SubmitSale(ctx, domain.Sale{ProductID: 1, UserID: 2})
	require.NoError(t, err)
	second, err := svc.SubmitSale(ctx, domain.Sale{ProductID: 1, UserID: 2})
	require.NoError(t, err)

	assert.Equal(t, "sale", first.Kind)
	assert.NotEqual(t, first.Reference, second.Reference)

	order, err := svc.SubmitOrder(ctx, domain.Order{"items": []interface{}{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "order", order.Kind)

	empty, err := svc.SubmitOrder(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "order", empty.Kind)
}
