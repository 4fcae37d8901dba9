package components

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deducta-loan-ledger/internal/batch_processor/service"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// ReportPublisherImpl archives the batch outcome, keyed by period, for the
// report mailer to deliver.
type ReportPublisherImpl struct {
	reports report.Repository
	logger  *slog.Logger
}

func NewReportPublisher(reports report.Repository, logger *slog.Logger) *ReportPublisherImpl {
	return &ReportPublisherImpl{
		reports: reports,
		logger:  logger,
	}
}

// Publish archives a PENDING report with a CSV summary attachment. A report
// that already exists for the period is left alone, so re-running a period
// never regenerates its report.
func (p *ReportPublisherImpl) Publish(ctx context.Context, b *batch.Batch, summary *service.RunSummary) error {
	r := &report.Report{
		BatchID:       b.ID,
		Period:        b.Period,
		CustomerCount: summary.Customers,
		TotalReceived: summary.TotalReceived,
		TotalRepaid:   summary.TotalRepaid,
		TotalPenalty:  summary.TotalPenalty,
		TotalLeftover: summary.TotalLeftover,
		FailedLoans:   summary.FailedLoans,
		Attachment:    buildAttachment(b, summary),
		Status:        shared.ReportStatusPending,
		CreatedAt:     time.Now(),
	}

	if err := p.reports.Create(ctx, r); err != nil {
		if errors.As(err, &report.ErrDuplicateReport{}) {
			p.logger.Info("Report already archived for period, skipping", "period", b.Period)
			return nil
		}
		return fmt.Errorf("failed to archive report for period %s: %w", b.Period, err)
	}

	p.logger.Info("Archived batch report", "batch_id", b.ID, "period", b.Period)
	return nil
}

func buildAttachment(b *batch.Batch, summary *service.RunSummary) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"period", "rows_total", "customers", "total_received", "total_repaid", "total_penalty", "total_leftover", "failed_loans"},
		{
			b.Period,
			strconv.Itoa(b.RowsTotal),
			strconv.Itoa(summary.Customers),
			formatAmount(summary.TotalReceived),
			formatAmount(summary.TotalRepaid),
			formatAmount(summary.TotalPenalty),
			formatAmount(summary.TotalLeftover),
			strconv.Itoa(summary.FailedLoans),
		},
	}
	_ = w.WriteAll(records)
	return buf.Bytes()
}

// formatAmount renders minor units as a two-decimal figure.
func formatAmount(v int64) string {
	return decimal.NewFromInt(v).Div(decimal.NewFromInt(100)).StringFixed(2)
}
