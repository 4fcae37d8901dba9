package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/messaging/producers"
)

// BatchServiceImpl implements the BatchService interface
type BatchServiceImpl struct {
	batchRepo  batch.Repository
	reportRepo report.Repository
	fileStore  batch.FileStore
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(
	logger *slog.Logger,
	batchRepo batch.Repository,
	reportRepo report.Repository,
	fileStore batch.FileStore,
	producer producers.MessagePublisher,
) BatchService {
	return &BatchServiceImpl{
		batchRepo:  batchRepo,
		reportRepo: reportRepo,
		fileStore:  fileStore,
		producer:   producer,
		logger:     logger,
	}
}

// UploadBatch archives the sheet, records the batch and enqueues ingestion.
// A period with a PENDING or RUNNING batch is rejected so the same AWAITING
// rows are never pre-created or swept twice.
func (s *BatchServiceImpl) UploadBatch(ctx context.Context, periodLabel string, sheet []byte, correlationID string) (*batch.Batch, error) {
	period, err := shared.ParsePeriod(periodLabel)
	if err != nil {
		return nil, err
	}
	if len(sheet) == 0 {
		return nil, fmt.Errorf("deduction sheet is empty")
	}

	active, err := s.batchRepo.ExistsActiveForPeriod(ctx, period.Label)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, batch.ErrPeriodInFlight{Period: period.Label}
	}

	fileKey := sheetFileKey(period)
	if err := s.fileStore.Save(ctx, fileKey, sheet); err != nil {
		return nil, fmt.Errorf("failed to archive deduction sheet: %w", err)
	}

	b := batch.New(period, fileKey)
	if err := s.batchRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	request := &shared.DeductionBatchRequest{
		BatchID:       b.ID,
		Period:        b.Period,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
	if err := s.producer.Publish(ctx, b.ID.String(), request); err != nil {
		s.logger.Error("Failed to publish batch request",
			"batch_id", b.ID,
			"period", b.Period,
			"error", err,
		)
		if failErr := s.batchRepo.MarkFailed(ctx, b.ID, "failed to enqueue batch request"); failErr != nil {
			s.logger.Error("Failed to mark unqueued batch as failed", "batch_id", b.ID, "error", failErr)
		}
		return nil, err
	}

	s.logger.Info("Deduction batch enqueued",
		"batch_id", b.ID,
		"period", b.Period,
		"sheet_bytes", len(sheet),
	)
	return b, nil
}

// GetBatchByID returns the batch with its progress, for polling
func (s *BatchServiceImpl) GetBatchByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	return s.batchRepo.GetByID(ctx, id)
}

// GetReportByPeriod returns the archived report for a processed period
func (s *BatchServiceImpl) GetReportByPeriod(ctx context.Context, periodLabel string) (*report.Report, error) {
	period, err := shared.ParsePeriod(periodLabel)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.GetByPeriod(ctx, period.Label)
}

func sheetFileKey(period shared.Period) string {
	return "sheets/" + strings.ToLower(strings.ReplaceAll(period.Label, " ", "-"))
}
