// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the loan ledger system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const loanColumns = `id, customer_id, principal, annual_rate, tenure_months, extension_months,
		penalty, penalty_repaid, repaid, repayable, status, disbursed_at, created_at, updated_at`

// Create stores a new loan in the database
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.querier.Exec(ctx, query,
		l.ID,
		l.CustomerID,
		l.Principal,
		l.AnnualRate,
		l.TenureMonths,
		l.ExtensionMonths,
		l.Penalty,
		l.PenaltyRepaid,
		l.Repaid,
		l.Repayable,
		l.Status,
		l.DisbursedAt,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// Update persists the full loan state
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET principal = $1, annual_rate = $2, tenure_months = $3, extension_months = $4,
			penalty = $5, penalty_repaid = $6, repaid = $7, repayable = $8,
			status = $9, disbursed_at = $10, updated_at = $11
		WHERE id = $12
	`

	result, err := r.querier.Exec(ctx, query,
		l.Principal,
		l.AnnualRate,
		l.TenureMonths,
		l.ExtensionMonths,
		l.Penalty,
		l.PenaltyRepaid,
		l.Repaid,
		l.Repayable,
		l.Status,
		l.DisbursedAt,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update loan", "id", l.ID.String(), "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}

	return nil
}

// ListOutstandingByCustomer returns the customer's DISBURSED loans in
// allocation order. Shortest tenure first, then earliest disbursement, then
// smallest principal; this ordering is what the allocator relies on when it
// walks a payment across multiple open loans.
func (r *LoanRepository) ListOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE customer_id = $1 AND status = $2
		ORDER BY tenure_months ASC, disbursed_at ASC, principal ASC
	`

	rows, err := r.querier.Query(ctx, query, customerID, shared.LoanStatusDisbursed)
	if err != nil {
		r.logger.Error("Failed to list outstanding loans", "customer_id", customerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list outstanding loans: %w", err)
	}
	defer rows.Close()

	return r.collectLoans(rows)
}

// ListDisbursed returns all DISBURSED loans in allocation order. Used to
// pre-create the period's expected-payment rows at the start of a batch.
func (r *LoanRepository) ListDisbursed(ctx context.Context) ([]*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1
		ORDER BY tenure_months ASC, disbursed_at ASC, principal ASC
	`

	rows, err := r.querier.Query(ctx, query, shared.LoanStatusDisbursed)
	if err != nil {
		r.logger.Error("Failed to list disbursed loans", "error", err)
		return nil, fmt.Errorf("failed to list disbursed loans: %w", err)
	}
	defer rows.Close()

	return r.collectLoans(rows)
}

func (r *LoanRepository) collectLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for rows.Next() {
		l, err := r.scanLoan(rows)
		if err != nil {
			r.logger.Error("Failed to scan loan", "error", err)
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over loans", "error", err)
		return nil, fmt.Errorf("error iterating over loans: %w", err)
	}

	return loans, nil
}

func (r *LoanRepository) scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.CustomerID,
		&l.Principal,
		&l.AnnualRate,
		&l.TenureMonths,
		&l.ExtensionMonths,
		&l.Penalty,
		&l.PenaltyRepaid,
		&l.Repaid,
		&l.Repayable,
		&l.Status,
		&l.DisbursedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
