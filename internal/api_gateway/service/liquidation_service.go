package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

// TxAllocator is the slice of the allocator liquidation approval composes
// with its own writes.
type TxAllocator interface {
	AllocateInTx(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, amount int64, period shared.Period, penaltyRate float64) (*allocation.Result, error)
}

// LiquidationServiceImpl implements the LiquidationService interface
type LiquidationServiceImpl struct {
	db              *persistence.PostgresDB
	liquidationRepo liquidation.Repository
	customerRepo    customer.Repository
	settings        settings.Store
	allocator       TxAllocator
	logger          *slog.Logger
}

// NewLiquidationService creates a new liquidation service
func NewLiquidationService(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	liquidationRepo liquidation.Repository,
	customerRepo customer.Repository,
	settingsStore settings.Store,
	allocator TxAllocator,
) LiquidationService {
	return &LiquidationServiceImpl{
		db:              db,
		liquidationRepo: liquidationRepo,
		customerRepo:    customerRepo,
		settings:        settingsStore,
		allocator:       allocator,
		logger:          logger,
	}
}

// CreateRequest files a PENDING lump-sum payoff request for a customer
func (s *LiquidationServiceImpl) CreateRequest(ctx context.Context, customerID uuid.UUID, amount int64) (*liquidation.Request, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	r, err := liquidation.New(customerID, amount)
	if err != nil {
		return nil, err
	}

	if err := s.liquidationRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Liquidation request filed", "request_id", r.ID, "customer_id", customerID, "amount", amount)
	return r, nil
}

// GetRequestByID retrieves a liquidation request
func (s *LiquidationServiceImpl) GetRequestByID(ctx context.Context, id uuid.UUID) (*liquidation.Request, error) {
	return s.liquidationRepo.GetByID(ctx, id)
}

// ListPending returns paginated PENDING liquidation requests
func (s *LiquidationServiceImpl) ListPending(ctx context.Context, page, perPage int) ([]*liquidation.Request, error) {
	offset := (page - 1) * perPage
	return s.liquidationRepo.ListByStatus(ctx, shared.LiquidationStatusPending, perPage, offset)
}

// ApproveRequest allocates the requested amount like a normal payment dated
// to the current period, then marks the request approved. Both commit in one
// transaction so an allocation failure leaves the request PENDING.
func (s *LiquidationServiceImpl) ApproveRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, *allocation.Result, error) {
	var (
		r      *liquidation.Request
		result *allocation.Result
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		liquidationsTx := s.liquidationRepo.WithTx(tx)
		settingsTx := s.settings.WithTx(tx)

		var err error
		r, err = liquidationsTx.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := r.Approve(); err != nil {
			return err
		}

		penaltyRate, err := settingsTx.Rate(ctx, settings.KeyPenaltyRate)
		if err != nil {
			return err
		}

		period := shared.CurrentPeriod(time.Now())
		result, err = s.allocator.AllocateInTx(ctx, tx, r.CustomerID, r.Amount, period, penaltyRate)
		if err != nil {
			return err
		}

		return liquidationsTx.Update(ctx, r)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Liquidation request approved",
		"request_id", r.ID,
		"customer_id", r.CustomerID,
		"allocated", result.Allocated,
		"leftover", result.Leftover,
	)
	return r, result, nil
}

// RejectRequest declines a pending liquidation request
func (s *LiquidationServiceImpl) RejectRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, error) {
	r, err := s.liquidationRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := r.Reject(); err != nil {
		return nil, err
	}

	if err := s.liquidationRepo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Liquidation request rejected", "request_id", r.ID)
	return r, nil
}
