package repayment

import (
	"context"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages repayment ledger row persistence
type Repository interface {
	Create(ctx context.Context, e *Entry) error

	// CreateAwaitingIfAbsent inserts the proactive expected-payment row for a
	// (loan, period) pair, doing nothing when one already exists. Reports
	// whether a row was inserted.
	CreateAwaitingIfAbsent(ctx context.Context, e *Entry) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByLoanAndPeriod(ctx context.Context, loanID uuid.UUID, period string) (*Entry, error)
	Update(ctx context.Context, e *Entry) error

	// ListAwaitingByPeriod returns up to limit rows still AWAITING for the
	// period, for the bounded-batch end-of-ingestion sweep.
	ListAwaitingByPeriod(ctx context.Context, period string, limit int) ([]*Entry, error)

	ListByStatus(ctx context.Context, status shared.RepaymentStatus, limit, offset int) ([]*Entry, error)
	CountByStatus(ctx context.Context, status shared.RepaymentStatus) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates a missing ledger row
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "repayment entry not found: " + e.EntryID.String()
}

// Is matches any ErrEntryNotFound when the target carries the nil UUID.
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
