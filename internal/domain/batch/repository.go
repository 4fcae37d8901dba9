package batch

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines deduction batch persistence operations
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// ExistsActiveForPeriod reports whether a PENDING or RUNNING batch exists
	// for the period. Uploads for an in-flight period are rejected so the
	// same AWAITING rows are never pre-created or swept twice.
	ExistsActiveForPeriod(ctx context.Context, period string) (bool, error)

	MarkRunning(ctx context.Context, id uuid.UUID, rowsTotal int) error

	// UpdateProgress persists monotonically increasing completion percentage
	// with the count of processed rows.
	UpdateProgress(ctx context.Context, id uuid.UUID, rowsProcessed, progress int) error

	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ErrBatchNotFound indicates a missing deduction batch
type ErrBatchNotFound struct {
	BatchID uuid.UUID
}

func (e ErrBatchNotFound) Error() string {
	return "deduction batch not found: " + e.BatchID.String()
}

// ErrPeriodInFlight indicates a second batch was submitted for a period that
// is still being processed
type ErrPeriodInFlight struct {
	Period string
}

func (e ErrPeriodInFlight) Error() string {
	return "a batch for period " + e.Period + " is already in flight"
}
