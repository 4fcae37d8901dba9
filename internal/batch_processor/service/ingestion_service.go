package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/spreadsheet"
)

type IngestionServiceImpl struct {
	batches    batch.Repository
	files      batch.FileStore
	settings   settings.Store
	preCreator AwaitingPreCreator
	rows       RowAllocator
	sweeper    Sweeper
	reports    ReportPublisher
	logger     *slog.Logger
}

func NewIngestionService(
	batches batch.Repository,
	files batch.FileStore,
	settingsStore settings.Store,
	preCreator AwaitingPreCreator,
	rows RowAllocator,
	sweeper Sweeper,
	reports ReportPublisher,
	logger *slog.Logger,
) IngestionService {
	return &IngestionServiceImpl{
		batches:    batches,
		files:      files,
		settings:   settingsStore,
		preCreator: preCreator,
		rows:       rows,
		sweeper:    sweeper,
		reports:    reports,
		logger:     logger,
	}
}

// ProcessBatch ingests one uploaded deduction sheet: parse, pre-create the
// period's expected-payment rows, allocate each sheet row sequentially, sweep
// the rows no payment matched, then archive the report. Input errors fail the
// batch terminally and commit the message; infrastructure errors propagate so
// the consumer retries.
func (s *IngestionServiceImpl) ProcessBatch(ctx context.Context, request *shared.DeductionBatchRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	b, err := s.batches.GetByID(ctx, request.BatchID)
	if err != nil {
		return fmt.Errorf("failed to load deduction batch %s: %w", request.BatchID, err)
	}

	// Redelivered message for a batch that already ran. Commit the offset.
	if b.Status == shared.BatchStatusCompleted || b.Status == shared.BatchStatusFailed {
		logger.Info("Skipping batch in terminal status", "batch_id", b.ID, "status", b.Status)
		return nil
	}

	logger.Info("Processing deduction batch", "batch_id", b.ID, "period", b.Period)

	period, err := shared.ParsePeriod(b.Period)
	if err != nil {
		return s.failBatch(ctx, logger, b, fmt.Sprintf("invalid period label %q: %s", b.Period, err))
	}

	data, err := s.files.Get(ctx, b.FileKey)
	if err != nil {
		if errors.As(err, &batch.ErrFileNotFound{}) {
			return s.failBatch(ctx, logger, b, err.Error())
		}
		return fmt.Errorf("failed to fetch archived sheet %s: %w", b.FileKey, err)
	}

	sheetRows, err := spreadsheet.Parse(bytes.NewReader(data))
	if err != nil {
		return s.failBatch(ctx, logger, b, "unreadable deduction sheet: "+err.Error())
	}

	// One snapshot for the whole batch so every row and the sweep use the
	// same rate.
	penaltyRate, err := s.settings.Rate(ctx, settings.KeyPenaltyRate)
	if err != nil {
		if errors.Is(err, settings.ErrRateNotConfigured) {
			return s.failBatch(ctx, logger, b, "penalty rate is not configured")
		}
		return fmt.Errorf("failed to read penalty rate: %w", err)
	}

	created, err := s.preCreator.PreCreate(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to pre-create awaiting rows for %s: %w", period.Label, err)
	}
	logger.Info("Pre-created awaiting ledger rows", "batch_id", b.ID, "period", period.Label, "created", created)

	if err := s.batches.MarkRunning(ctx, b.ID, len(sheetRows)); err != nil {
		return fmt.Errorf("failed to mark batch %s running: %w", b.ID, err)
	}

	summary := &RunSummary{}
	for i, row := range sheetRows {
		result, err := s.rows.ProcessRow(ctx, row, period, penaltyRate)
		if err != nil {
			// Rows already applied stay applied; the batch ends here.
			reason := fmt.Sprintf("row %d (staff %s): %s", i+1, row.StaffID, err)
			return s.failBatch(ctx, logger, b, reason)
		}

		summary.TotalReceived += result.Received
		summary.TotalRepaid += result.Allocated
		summary.TotalPenalty += result.Penalty
		summary.TotalLeftover += result.Leftover
		if result.Loans > 0 {
			summary.Customers++
		}

		// Progress stays below 100 until the sweep has run.
		progress := (i + 1) * 100 / (len(sheetRows) + 1)
		if err := s.batches.UpdateProgress(ctx, b.ID, i+1, progress); err != nil {
			logger.Warn("Failed to update batch progress", "batch_id", b.ID, "rows_processed", i+1, "error", err)
		}
	}

	swept, err := s.sweeper.Sweep(ctx, period, penaltyRate)
	if err != nil {
		return s.failBatch(ctx, logger, b, "sweep of unmatched rows failed: "+err.Error())
	}
	summary.FailedLoans = swept.RowsFailed
	summary.TotalPenalty += swept.PenaltyAccrued

	if err := s.settings.Set(ctx, settings.KeyLastProcessedPeriod, period.Label); err != nil {
		logger.Warn("Failed to record last processed period", "period", period.Label, "error", err)
	}

	if err := s.batches.MarkCompleted(ctx, b.ID); err != nil {
		return fmt.Errorf("failed to mark batch %s completed: %w", b.ID, err)
	}
	b.MarkCompleted()

	logger.Info("Deduction batch completed",
		"batch_id", b.ID,
		"period", period.Label,
		"customers", summary.Customers,
		"total_received", summary.TotalReceived,
		"total_repaid", summary.TotalRepaid,
		"failed_loans", summary.FailedLoans,
	)

	// Report archival must not fail a batch that already committed its
	// ledger writes.
	if err := s.reports.Publish(ctx, b, summary); err != nil {
		logger.Error("Failed to archive batch report", "batch_id", b.ID, "period", period.Label, "error", err)
	}

	return nil
}

// failBatch records a terminal failure and returns nil so the consumer
// commits the message: re-running would double-apply the rows already
// allocated.
func (s *IngestionServiceImpl) failBatch(ctx context.Context, logger *slog.Logger, b *batch.Batch, reason string) error {
	logger.Error("Deduction batch failed", "batch_id", b.ID, "period", b.Period, "reason", reason)
	if err := s.batches.MarkFailed(ctx, b.ID, reason); err != nil {
		logger.Error("Failed to mark batch as failed", "batch_id", b.ID, "error", err)
		return fmt.Errorf("failed to mark batch %s failed: %w", b.ID, err)
	}
	return nil
}
