package service

import (
	"context"
	"sort"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionService acknowledges sale and order submissions. Nothing is
// stored; every accepted submission is logged under a fresh reference.
type SubmissionService interface {
	SubmitSale(ctx context.Context, sale domain.Sale) (*domain.Receipt, error)
	SubmitOrder(ctx context.Context, order domain.Order) (*domain.Receipt, error)
}

type submissionService struct {
	logger *zap.Logger
}

// NewSubmissionService creates a new instance of SubmissionService
func NewSubmissionService(logger *zap.Logger) SubmissionService {
	return &submissionService{logger: logger}
}

func (s *submissionService) SubmitSale(ctx context.Context, sale domain.Sale) (*domain.Receipt, error) {
	receipt := &domain.Receipt{Reference: uuid.New(), Kind: "sale"}

	s.logger.Info("Sale request accepted",
		zap.String("reference", receipt.Reference.String()),
		zap.Any("product_id", sale.ProductID),
		zap.Any("user_id", sale.UserID),
		zap.Any("discount", sale.Discount),
	)

	return receipt, nil
}

func (s *submissionService) SubmitOrder(ctx context.Context, order domain.Order) (*domain.Receipt, error) {
	receipt := &domain.Receipt{Reference: uuid.New(), Kind: "order"}

	fields := make([]string, 0, len(order))
	for k := range order {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	s.logger.Info("Order request accepted",
		zap.String("reference", receipt.Reference.String()),
		zap.Strings("fields", fields),
	)

	return receipt, nil
}
