package transport

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload. Prices are
// decoded as JSON numbers and must be whole minor units that fit the INTEGER
// price columns.
type CreateProductRequest struct {
	Title         string   `json:"title" validate:"notblank"`
	Price         *float64 `json:"price" validate:"required,gte=0,lte=2147483647,integer"`
	DiscountPrice *float64 `json:"discount_price" validate:"omitempty,gte=0,lte=2147483647,integer"`
	Description   *string  `json:"description"`
	Image         *string  `json:"image"`
	CategoryID    *int64   `json:"categoryId" validate:"omitempty,gt=0"`
}

// StatusResponse wraps a payload with an OK status
type StatusResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/all", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
	})
}

// ListProducts returns every product ordered by ID
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct validates and stores a new product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CreateProductInput{
		Title:       strings.TrimSpace(req.Title),
		Price:       int64(*req.Price),
		Description: req.Description,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	}
	if req.DiscountPrice != nil {
		discount := int64(*req.DiscountPrice)
		input.DiscountPrice = &discount
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "categoryId", Message: "category not found"},
			})
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, StatusResponse{
		Status: "OK",
		Data:   product,
	})
}
