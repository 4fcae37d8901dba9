package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines customer persistence operations
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// GetByStaffID resolves an external payroll identifier to a customer.
	// Returns nil, nil when no mapping exists; the caller records a
	// manual-resolution row rather than failing the batch.
	GetByStaffID(ctx context.Context, staffID string) (*Customer, error)

	// UpdatePayrollAttributes persists the passthrough fields from a
	// deduction sheet row.
	UpdatePayrollAttributes(ctx context.Context, id uuid.UUID, attrs PayrollAttributes) error

	// UpdateRepaymentRate persists the customer's recomputed repayment-rate
	// metric after a batch run.
	UpdateRepaymentRate(ctx context.Context, id uuid.UUID, rate int) error

	WithTx(tx pgx.Tx) Repository
}

// ErrCustomerNotFound indicates a missing customer
type ErrCustomerNotFound struct {
	CustomerID uuid.UUID
}

func (e ErrCustomerNotFound) Error() string {
	return "customer not found: " + e.CustomerID.String()
}

// ErrDuplicateStaffID indicates staff ID uniqueness violation
type ErrDuplicateStaffID struct {
	StaffID string
}

func (e ErrDuplicateStaffID) Error() string {
	return "customer with staff ID already exists: " + e.StaffID
}
