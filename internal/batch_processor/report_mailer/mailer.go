// Package report_mailer delivers archived batch reports to the operator
// mailing list, retrying failed sends on each poll until the attempt budget
// is spent.
package report_mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deducta-loan-ledger/internal/config"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// Mailer polls for undelivered batch reports and sends them
type Mailer struct {
	reports          report.Repository
	notifier         Notifier
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewMailer(
	cfg *config.ReportsConfig,
	reports report.Repository,
	notifier Notifier,
	logger *slog.Logger,
) *Mailer {
	return &Mailer{
		reports:          reports,
		notifier:         notifier,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (m *Mailer) Start(ctx context.Context) {
	m.logger.Info("Starting Report Mailer",
		"poll_interval", m.pollInterval.String(),
		"batch_size", m.batchSize,
		"max_retry_attempts", m.maxRetryAttempts,
	)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Report Mailer stopping due to context cancellation.")
			return
		case <-ticker.C:
			m.logger.Debug("Report Mailer tick: processing pending reports")
			if err := m.processPendingReports(ctx); err != nil {
				m.logger.Error("Error during batch processing of pending reports", "error", err)
			}
		}
	}
}

func (m *Mailer) processPendingReports(ctx context.Context) error {
	pending, err := m.reports.GetPending(ctx, m.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending reports: %w", err)
	}

	if len(pending) == 0 {
		m.logger.Debug("No pending reports found.")
		return nil
	}

	m.logger.Info("Fetched pending reports", "count", len(pending))

	for _, r := range pending {
		logger := m.logger.With("period", r.Period, "batch_id", r.BatchID)

		if err := m.notifier.SendReport(ctx, r); err != nil {
			logger.Error("Failed to send batch report", "current_attempts", r.Attempts, "error", err)

			if errInc := m.reports.IncrementAttempts(ctx, r.Period); errInc != nil {
				logger.Error("Failed to increment attempts for report", "error", errInc)
				continue
			}

			if r.Attempts+1 >= m.maxRetryAttempts {
				logger.Warn("Max retry attempts reached for report, marking as FAILED_TO_SEND",
					"attempts_made", r.Attempts+1,
				)
				if errUpdate := m.reports.UpdateStatus(ctx, r.Period, shared.ReportStatusFailedToSend); errUpdate != nil {
					logger.Error("Failed to update report status to FAILED_TO_SEND after max retries", "error", errUpdate)
				}
			}
			continue
		}

		if err := m.reports.UpdateStatus(ctx, r.Period, shared.ReportStatusSent); err != nil {
			logger.Error("Failed to update report status to SENT", "error", err)
			continue
		}
		logger.Info("Successfully delivered batch report")
	}
	return nil
}
