package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// OverflowAllocator is the slice of the allocator the review queue needs.
type OverflowAllocator interface {
	AllocateOverflow(ctx context.Context, entryID, loanID uuid.UUID, note string) (*allocation.Result, error)
}

// ReviewServiceImpl implements the ReviewService interface
type ReviewServiceImpl struct {
	repaymentRepo repayment.Repository
	allocator     OverflowAllocator
	logger        *slog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(logger *slog.Logger, repaymentRepo repayment.Repository, allocator OverflowAllocator) ReviewService {
	return &ReviewServiceImpl{
		repaymentRepo: repaymentRepo,
		allocator:     allocator,
		logger:        logger,
	}
}

// ListUnresolved returns paginated MANUAL_RESOLUTION rows with the total count
func (s *ReviewServiceImpl) ListUnresolved(ctx context.Context, page, perPage int) ([]*repayment.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.repaymentRepo.ListByStatus(ctx, shared.RepaymentStatusManualResolution, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repaymentRepo.CountByStatus(ctx, shared.RepaymentStatusManualResolution)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Resolve assigns an unresolved row's money onto a specific loan
func (s *ReviewServiceImpl) Resolve(ctx context.Context, entryID, loanID uuid.UUID, note string) (*allocation.Result, error) {
	result, err := s.allocator.AllocateOverflow(ctx, entryID, loanID, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Manual resolution row resolved",
		"entry_id", entryID,
		"loan_id", loanID,
		"allocated", result.Allocated,
		"leftover", result.Leftover,
	)
	return result, nil
}
