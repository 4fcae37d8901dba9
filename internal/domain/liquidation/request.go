package liquidation

import (
	"context"
	"errors"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotPending = errors.New("liquidation request is not pending")

// Request is a customer-initiated lump-sum payoff. Once approved, the amount
// is allocated exactly like a normal payment, dated to the current period.
type Request struct {
	ID         uuid.UUID                `json:"id"`
	CustomerID uuid.UUID                `json:"customer_id"`
	Amount     int64                    `json:"amount"`
	Status     shared.LiquidationStatus `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	ResolvedAt *time.Time               `json:"resolved_at,omitempty"`
}

// New creates a PENDING liquidation request.
func New(customerID uuid.UUID, amount int64) (*Request, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}
	return &Request{
		ID:         uuid.New(),
		CustomerID: customerID,
		Amount:     amount,
		Status:     shared.LiquidationStatusPending,
		CreatedAt:  time.Now(),
	}, nil
}

// Approve marks the request approved after its amount was allocated.
func (r *Request) Approve() error {
	if r.Status != shared.LiquidationStatusPending {
		return ErrNotPending
	}
	r.Status = shared.LiquidationStatusApproved
	now := time.Now()
	r.ResolvedAt = &now
	return nil
}

// Reject declines a pending request.
func (r *Request) Reject() error {
	if r.Status != shared.LiquidationStatusPending {
		return ErrNotPending
	}
	r.Status = shared.LiquidationStatusRejected
	now := time.Now()
	r.ResolvedAt = &now
	return nil
}

// Repository defines liquidation request persistence operations
type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	Update(ctx context.Context, r *Request) error
	ListByStatus(ctx context.Context, status shared.LiquidationStatus, limit, offset int) ([]*Request, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRequestNotFound indicates a missing liquidation request
type ErrRequestNotFound struct {
	RequestID uuid.UUID
}

func (e ErrRequestNotFound) Error() string {
	return "liquidation request not found: " + e.RequestID.String()
}
