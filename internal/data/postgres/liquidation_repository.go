package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LiquidationRepository implements the liquidation.Repository interface for PostgreSQL
type LiquidationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLiquidationRepository creates a new PostgreSQL liquidation request repository
func NewLiquidationRepository(logger *slog.Logger, db *persistence.PostgresDB) liquidation.Repository {
	return &LiquidationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so approving a request and
// allocating its amount commit atomically.
func (r *LiquidationRepository) WithTx(tx pgx.Tx) liquidation.Repository {
	return &LiquidationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new liquidation request
func (r *LiquidationRepository) Create(ctx context.Context, req *liquidation.Request) error {
	query := `
		INSERT INTO liquidation_requests (id, customer_id, amount, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		req.ID,
		req.CustomerID,
		req.Amount,
		req.Status,
		req.CreatedAt,
		req.ResolvedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create liquidation request", "error", err)
		return fmt.Errorf("failed to create liquidation request: %w", err)
	}

	return nil
}

// GetByID retrieves a liquidation request by its ID
func (r *LiquidationRepository) GetByID(ctx context.Context, id uuid.UUID) (*liquidation.Request, error) {
	query := `
		SELECT id, customer_id, amount, status, created_at, resolved_at
		FROM liquidation_requests
		WHERE id = $1
	`

	var req liquidation.Request
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.CustomerID,
		&req.Amount,
		&req.Status,
		&req.CreatedAt,
		&req.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, liquidation.ErrRequestNotFound{RequestID: id}
		}
		r.logger.Error("Failed to get liquidation request", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get liquidation request: %w", err)
	}

	return &req, nil
}

// Update persists the request's resolution state
func (r *LiquidationRepository) Update(ctx context.Context, req *liquidation.Request) error {
	query := `
		UPDATE liquidation_requests
		SET status = $1, resolved_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, req.Status, req.ResolvedAt, req.ID)
	if err != nil {
		r.logger.Error("Failed to update liquidation request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to update liquidation request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return liquidation.ErrRequestNotFound{RequestID: req.ID}
	}

	return nil
}

// ListByStatus returns a page of requests in the given status, oldest first
func (r *LiquidationRepository) ListByStatus(ctx context.Context, status shared.LiquidationStatus, limit, offset int) ([]*liquidation.Request, error) {
	query := `
		SELECT id, customer_id, amount, status, created_at, resolved_at
		FROM liquidation_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list liquidation requests", "status", status, "error", err)
		return nil, fmt.Errorf("failed to list liquidation requests: %w", err)
	}
	defer rows.Close()

	var requests []*liquidation.Request
	for rows.Next() {
		var req liquidation.Request
		err := rows.Scan(
			&req.ID,
			&req.CustomerID,
			&req.Amount,
			&req.Status,
			&req.CreatedAt,
			&req.ResolvedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan liquidation request", "error", err)
			return nil, fmt.Errorf("failed to scan liquidation request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over liquidation requests", "error", err)
		return nil, fmt.Errorf("error iterating over liquidation requests: %w", err)
	}

	return requests, nil
}
