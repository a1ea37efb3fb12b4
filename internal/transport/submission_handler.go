package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SaleRequest represents the sale submission payload. Both identifiers must
// be present and non-empty; their type is up to the client.
type SaleRequest struct {
	ProductID interface{} `json:"productId" validate:"required"`
	UserID    interface{} `json:"userId" validate:"required"`
	Discount  interface{} `json:"discount"`
}

// SaleData echoes the accepted sale
type SaleData struct {
	ProductID interface{} `json:"productId"`
	UserID    interface{} `json:"userId"`
	Discount  interface{} `json:"discount"`
}

// SaleResponse acknowledges a sale submission
type SaleResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Data      SaleData `json:"data"`
	Reference string   `json:"reference"`
}

// OrderResponse acknowledges an order submission
type OrderResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// SubmissionHandler handles sale and order submissions
type SubmissionHandler struct {
	submissions service.SubmissionService
	logger      *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(submissions service.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger,
	}
}

// RegisterRoutes registers the submission routes behind the given limiter
func (h *SubmissionHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/sale/send", h.SubmitSale)
		r.Post("/order/send", h.SubmitOrder)
	})
}

// SubmitSale validates and acknowledges a sale request
func (h *SubmissionHandler) SubmitSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "productId and userId are required",
				map[string]interface{}{"validation_errors": validationErrors})
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.submissions.SubmitSale(r.Context(), domain.Sale{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Discount:  req.Discount,
	})
	if err != nil {
		h.logger.Error("Failed to submit sale", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SaleResponse{
		Status:  "OK",
		Message: "sale request accepted",
		Data: SaleData{
			ProductID: req.ProductID,
			UserID:    req.UserID,
			Discount:  req.Discount,
		},
		Reference: receipt.Reference.String(),
	})
}

// SubmitOrder acknowledges an order. Any JSON object, or no body at all, is
// accepted.
func (h *SubmissionHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	order := domain.Order{}

	if err := json.NewDecoder(r.Body).Decode(&order); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("Order decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.submissions.SubmitOrder(r.Context(), order)
	if err != nil {
		h.logger.Error("Failed to submit order", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{
		Status:    "OK",
		Reference: receipt.Reference.String(),
	})
}
