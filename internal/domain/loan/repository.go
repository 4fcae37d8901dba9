package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines loan persistence operations
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	Update(ctx context.Context, l *Loan) error

	// ListOutstandingByCustomer returns the customer's DISBURSED loans in
	// allocation order: ascending (tenure, disbursed_at, principal), so short
	// obligations are retired first. The ordering is a deliberate policy and
	// is encoded in one place, the repository query.
	ListOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Loan, error)

	// ListDisbursed returns all DISBURSED loans in allocation order, used to
	// pre-create the period's expected-payment rows.
	ListDisbursed(ctx context.Context) ([]*Loan, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrLoanNotFound indicates a missing loan
type ErrLoanNotFound struct {
	LoanID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID.String()
}

// Is matches any ErrLoanNotFound when the target carries the nil UUID.
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}
