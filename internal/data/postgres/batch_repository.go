package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BatchRepository implements the batch.Repository interface for PostgreSQL
type BatchRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBatchRepository creates a new PostgreSQL deduction batch repository
func NewBatchRepository(logger *slog.Logger, db *persistence.PostgresDB) batch.Repository {
	return &BatchRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new deduction batch record
func (r *BatchRepository) Create(ctx context.Context, b *batch.Batch) error {
	query := `
		INSERT INTO deduction_batches (id, period, file_key, status, progress, rows_total, rows_processed, failure_reason, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.Period,
		b.FileKey,
		b.Status,
		b.Progress,
		b.RowsTotal,
		b.RowsProcessed,
		b.FailureReason,
		b.CreatedAt,
		b.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create deduction batch", "period", b.Period, "error", err)
		return fmt.Errorf("failed to create deduction batch: %w", err)
	}

	return nil
}

// GetByID retrieves a deduction batch by its ID
func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	query := `
		SELECT id, period, file_key, status, progress, rows_total, rows_processed, failure_reason, created_at, completed_at
		FROM deduction_batches
		WHERE id = $1
	`

	var b batch.Batch
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Period,
		&b.FileKey,
		&b.Status,
		&b.Progress,
		&b.RowsTotal,
		&b.RowsProcessed,
		&b.FailureReason,
		&b.CreatedAt,
		&b.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, batch.ErrBatchNotFound{BatchID: id}
		}
		r.logger.Error("Failed to get deduction batch", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get deduction batch: %w", err)
	}

	return &b, nil
}

// ExistsActiveForPeriod reports whether a PENDING or RUNNING batch exists for
// the period. The gateway uses this to reject concurrent uploads for the same
// payroll month.
func (r *BatchRepository) ExistsActiveForPeriod(ctx context.Context, period string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM deduction_batches
			WHERE period = $1 AND status IN ($2, $3)
		)
	`

	var exists bool
	err := r.querier.QueryRow(ctx, query, period, shared.BatchStatusPending, shared.BatchStatusRunning).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check for active batch", "period", period, "error", err)
		return false, fmt.Errorf("failed to check for active batch: %w", err)
	}

	return exists, nil
}

// MarkRunning transitions the batch to RUNNING and records the row count
func (r *BatchRepository) MarkRunning(ctx context.Context, id uuid.UUID, rowsTotal int) error {
	query := `
		UPDATE deduction_batches
		SET status = $1, rows_total = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, shared.BatchStatusRunning, rowsTotal, id)
	if err != nil {
		r.logger.Error("Failed to mark batch running", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch running: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{BatchID: id}
	}

	return nil
}

// UpdateProgress persists completion percentage with the processed row count.
// GREATEST keeps the stored value monotone even when updates land out of order.
func (r *BatchRepository) UpdateProgress(ctx context.Context, id uuid.UUID, rowsProcessed, progress int) error {
	query := `
		UPDATE deduction_batches
		SET rows_processed = GREATEST(rows_processed, $1), progress = GREATEST(progress, $2)
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, rowsProcessed, progress, id)
	if err != nil {
		r.logger.Error("Failed to update batch progress", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update batch progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{BatchID: id}
	}

	return nil
}

// MarkCompleted transitions the batch to COMPLETED at 100% progress
func (r *BatchRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE deduction_batches
		SET status = $1, progress = 100, completed_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, shared.BatchStatusCompleted, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark batch completed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch completed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{BatchID: id}
	}

	return nil
}

// MarkFailed transitions the batch to FAILED with the reason
func (r *BatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE deduction_batches
		SET status = $1, failure_reason = $2, completed_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, shared.BatchStatusFailed, reason, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark batch failed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark batch failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return batch.ErrBatchNotFound{BatchID: id}
	}

	return nil
}
