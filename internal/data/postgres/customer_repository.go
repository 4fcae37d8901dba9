package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CustomerRepository implements the customer.Repository interface for PostgreSQL
type CustomerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCustomerRepository creates a new PostgreSQL customer repository
func NewCustomerRepository(logger *slog.Logger, db *persistence.PostgresDB) customer.Repository {
	return &CustomerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *CustomerRepository) WithTx(tx pgx.Tx) customer.Repository {
	return &CustomerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const customerColumns = `id, full_name, staff_id, email, grade, step, command,
		gross_pay, net_pay, repayment_rate, created_at, updated_at`

// Create stores a new customer. Staff IDs are unique; inserting a duplicate
// returns ErrDuplicateStaffID.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.FullName,
		c.StaffID,
		c.Email,
		c.Payroll.Grade,
		c.Payroll.Step,
		c.Payroll.Command,
		c.Payroll.GrossPay,
		c.Payroll.NetPay,
		c.RepaymentRate,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return customer.ErrDuplicateStaffID{StaffID: c.StaffID}
		}
		r.logger.Error("Failed to create customer", "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by its ID
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1
	`

	c, err := r.scanCustomer(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound{CustomerID: id}
		}
		r.logger.Error("Failed to get customer", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return c, nil
}

// GetByStaffID resolves a payroll staff ID to a customer. Returns nil, nil
// when no mapping exists so the batch pipeline can record a
// manual-resolution row instead of failing.
func (r *CustomerRepository) GetByStaffID(ctx context.Context, staffID string) (*customer.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE staff_id = $1
	`

	c, err := r.scanCustomer(r.querier.QueryRow(ctx, query, staffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get customer by staff ID", "staff_id", staffID, "error", err)
		return nil, fmt.Errorf("failed to get customer by staff ID: %w", err)
	}

	return c, nil
}

// UpdatePayrollAttributes persists the passthrough fields carried on a
// deduction sheet row
func (r *CustomerRepository) UpdatePayrollAttributes(ctx context.Context, id uuid.UUID, attrs customer.PayrollAttributes) error {
	query := `
		UPDATE customers
		SET grade = $1, step = $2, command = $3, gross_pay = $4, net_pay = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.querier.Exec(ctx, query,
		attrs.Grade,
		attrs.Step,
		attrs.Command,
		attrs.GrossPay,
		attrs.NetPay,
		time.Now(),
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update payroll attributes", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update payroll attributes: %w", err)
	}

	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound{CustomerID: id}
	}

	return nil
}

// UpdateRepaymentRate persists the customer's recomputed repayment-rate metric
func (r *CustomerRepository) UpdateRepaymentRate(ctx context.Context, id uuid.UUID, rate int) error {
	query := `
		UPDATE customers
		SET repayment_rate = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, rate, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update repayment rate", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update repayment rate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound{CustomerID: id}
	}

	return nil
}

func (r *CustomerRepository) scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID,
		&c.FullName,
		&c.StaffID,
		&c.Email,
		&c.Payroll.Grade,
		&c.Payroll.Step,
		&c.Payroll.Command,
		&c.Payroll.GrossPay,
		&c.Payroll.NetPay,
		&c.RepaymentRate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
