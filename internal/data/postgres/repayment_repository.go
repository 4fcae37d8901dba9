package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RepaymentRepository implements the repayment.Repository interface for PostgreSQL
type RepaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRepaymentRepository creates a new PostgreSQL repayment repository
func NewRepaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) repayment.Repository {
	return &RepaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *RepaymentRepository) WithTx(tx pgx.Tx) repayment.Repository {
	return &RepaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const repaymentColumns = `id, customer_id, loan_id, period, period_date, amount_received,
		amount_expected, amount_repaid, penalty_charge, status, note, created_at, updated_at`

// Create stores a new repayment ledger row
func (r *RepaymentRepository) Create(ctx context.Context, e *repayment.Entry) error {
	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.CustomerID,
		e.LoanID,
		e.Period,
		e.PeriodDate,
		e.AmountReceived,
		e.AmountExpected,
		e.AmountRepaid,
		e.PenaltyCharge,
		e.Status,
		e.Note,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create repayment entry", "error", err)
		return fmt.Errorf("failed to create repayment entry: %w", err)
	}

	return nil
}

// CreateAwaitingIfAbsent inserts the expected-payment row for a (loan, period)
// pair, doing nothing when one already exists. The unique index on
// (loan_id, period) makes this safe to call from a redelivered batch job.
func (r *RepaymentRepository) CreateAwaitingIfAbsent(ctx context.Context, e *repayment.Entry) (bool, error) {
	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (loan_id, period) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		e.ID,
		e.CustomerID,
		e.LoanID,
		e.Period,
		e.PeriodDate,
		e.AmountReceived,
		e.AmountExpected,
		e.AmountRepaid,
		e.PenaltyCharge,
		e.Status,
		e.Note,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create awaiting repayment entry",
			"period", e.Period,
			"error", err,
		)
		return false, fmt.Errorf("failed to create awaiting repayment entry: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a repayment entry by its ID
func (r *RepaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*repayment.Entry, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE id = $1
	`

	e, err := r.scanEntry(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repayment.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get repayment entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get repayment entry: %w", err)
	}

	return e, nil
}

// GetByLoanAndPeriod retrieves the ledger row for a loan in a specific period
func (r *RepaymentRepository) GetByLoanAndPeriod(ctx context.Context, loanID uuid.UUID, period string) (*repayment.Entry, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE loan_id = $1 AND period = $2
	`

	e, err := r.scanEntry(r.querier.QueryRow(ctx, query, loanID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repayment.ErrEntryNotFound{}
		}
		r.logger.Error("Failed to get repayment entry by loan and period",
			"loan_id", loanID.String(),
			"period", period,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get repayment entry by loan and period: %w", err)
	}

	return e, nil
}

// Update persists the full entry state, including the customer and loan
// assignment so a resolved manual row stays attributed on disk.
func (r *RepaymentRepository) Update(ctx context.Context, e *repayment.Entry) error {
	query := `
		UPDATE repayments
		SET customer_id = $1, loan_id = $2, amount_received = $3, amount_expected = $4,
			amount_repaid = $5, penalty_charge = $6, status = $7, note = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.querier.Exec(ctx, query,
		e.CustomerID,
		e.LoanID,
		e.AmountReceived,
		e.AmountExpected,
		e.AmountRepaid,
		e.PenaltyCharge,
		e.Status,
		e.Note,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update repayment entry", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to update repayment entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repayment.ErrEntryNotFound{EntryID: e.ID}
	}

	return nil
}

// ListAwaitingByPeriod returns up to limit rows still AWAITING for the period,
// oldest first, for the bounded end-of-ingestion sweep.
func (r *RepaymentRepository) ListAwaitingByPeriod(ctx context.Context, period string, limit int) ([]*repayment.Entry, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE period = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, period, shared.RepaymentStatusAwaiting, limit)
	if err != nil {
		r.logger.Error("Failed to list awaiting repayment entries", "period", period, "error", err)
		return nil, fmt.Errorf("failed to list awaiting repayment entries: %w", err)
	}
	defer rows.Close()

	return r.collectEntries(rows)
}

// ListByStatus returns a page of entries in the given status, newest first.
// Backs the review queue endpoints.
func (r *RepaymentRepository) ListByStatus(ctx context.Context, status shared.RepaymentStatus, limit, offset int) ([]*repayment.Entry, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list repayment entries by status", "status", status, "error", err)
		return nil, fmt.Errorf("failed to list repayment entries by status: %w", err)
	}
	defer rows.Close()

	return r.collectEntries(rows)
}

// CountByStatus returns the number of entries in the given status
func (r *RepaymentRepository) CountByStatus(ctx context.Context, status shared.RepaymentStatus) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM repayments
		WHERE status = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, status).Scan(&count); err != nil {
		r.logger.Error("Failed to count repayment entries", "status", status, "error", err)
		return 0, fmt.Errorf("failed to count repayment entries: %w", err)
	}

	return count, nil
}

func (r *RepaymentRepository) collectEntries(rows pgx.Rows) ([]*repayment.Entry, error) {
	var entries []*repayment.Entry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			r.logger.Error("Failed to scan repayment entry", "error", err)
			return nil, fmt.Errorf("failed to scan repayment entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over repayment entries", "error", err)
		return nil, fmt.Errorf("error iterating over repayment entries: %w", err)
	}

	return entries, nil
}

func (r *RepaymentRepository) scanEntry(row pgx.Row) (*repayment.Entry, error) {
	var e repayment.Entry
	err := row.Scan(
		&e.ID,
		&e.CustomerID,
		&e.LoanID,
		&e.Period,
		&e.PeriodDate,
		&e.AmountReceived,
		&e.AmountExpected,
		&e.AmountRepaid,
		&e.PenaltyCharge,
		&e.Status,
		&e.Note,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
