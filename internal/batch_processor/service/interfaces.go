package service

import (
	"context"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/spreadsheet"
)

// IngestionService runs one period's deduction batch end to end.
type IngestionService interface {
	ProcessBatch(ctx context.Context, request *shared.DeductionBatchRequest) error
}

// AwaitingPreCreator inserts the period's expected-payment rows for every
// disbursed loan before any actual payment is matched. Reports how many rows
// were newly created.
type AwaitingPreCreator interface {
	PreCreate(ctx context.Context, period shared.Period) (int, error)
}

// RowAllocator resolves one deduction sheet row to a customer and applies the
// payment. An unmatched staff ID produces a manual-resolution ledger row
// instead of an error.
type RowAllocator interface {
	ProcessRow(ctx context.Context, row spreadsheet.Row, period shared.Period, penaltyRate float64) (*allocation.Result, error)
}

// SweepResult summarizes the end-of-batch sweep of unmatched AWAITING rows.
type SweepResult struct {
	RowsFailed     int
	PenaltyAccrued int64
}

// Sweeper fails every ledger row still AWAITING for the period after all
// sheet rows are processed, charging the shortfall penalty and extending the
// affected loans by one month.
type Sweeper interface {
	Sweep(ctx context.Context, period shared.Period, penaltyRate float64) (*SweepResult, error)
}

// RunSummary folds the per-row allocation results into the figures a batch
// report carries.
type RunSummary struct {
	Customers     int
	TotalReceived int64
	TotalRepaid   int64
	TotalPenalty  int64
	TotalLeftover int64
	FailedLoans   int
}

// ReportPublisher archives the batch report for delivery by the report
// mailer.
type ReportPublisher interface {
	Publish(ctx context.Context, b *batch.Batch, summary *RunSummary) error
}
