package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryResponse is a category together with its products
type CategoryResponse struct {
	Category *domain.Category  `json:"category"`
	Data     []*domain.Product `json:"data"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/all", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
	})
}

// ListCategories returns every category ordered by ID
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetCategory returns a category and its products
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, products, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, service.ErrEmptyCategory):
			middleware.RespondWithError(w, http.StatusNotFound, "empty category")
		default:
			h.logger.Error("Failed to get category", zap.Int64("category_id", id), zap.Error(err))
			middleware.RespondWithFailure(w, err)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryResponse{
		Category: category,
		Data:     products,
	})
}
