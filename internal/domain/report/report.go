package report

import (
	"context"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Report is the archived outcome of one batch run: summary figures plus the
// generated CSV buffer, keyed by period. Its delivery status drives the
// report mailer's retry loop.
type Report struct {
	BatchID       uuid.UUID           `json:"batch_id" bson:"batch_id"`
	Period        string              `json:"period" bson:"period"`
	CustomerCount int                 `json:"customer_count" bson:"customer_count"`
	TotalReceived int64               `json:"total_received" bson:"total_received"`
	TotalRepaid   int64               `json:"total_repaid" bson:"total_repaid"`
	TotalPenalty  int64               `json:"total_penalty" bson:"total_penalty"`
	TotalLeftover int64               `json:"total_leftover" bson:"total_leftover"`
	FailedLoans   int                 `json:"failed_loans" bson:"failed_loans"`
	Attachment    []byte              `json:"attachment" bson:"attachment"`
	Status        shared.ReportStatus `json:"status" bson:"status"`
	Attempts      int                 `json:"attempts" bson:"attempts"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty" bson:"last_attempt_at,omitempty"`
}

// Repository manages batch report archival and delivery state
type Repository interface {
	// Create archives a report. Returns ErrDuplicateReport when one already
	// exists for the period, which callers use to skip regeneration.
	Create(ctx context.Context, r *Report) error

	GetByPeriod(ctx context.Context, period string) (*Report, error)

	// GetPending returns undelivered reports in creation order for the
	// mailer's retry loop.
	GetPending(ctx context.Context, limit int) ([]*Report, error)

	UpdateStatus(ctx context.Context, period string, status shared.ReportStatus) error
	IncrementAttempts(ctx context.Context, period string) error
}

// ErrReportNotFound indicates a missing report
type ErrReportNotFound struct {
	Period string
}

func (e ErrReportNotFound) Error() string {
	return "batch report not found for period: " + e.Period
}

// Is matches any ErrReportNotFound when the target period is empty.
func (e ErrReportNotFound) Is(target error) bool {
	t, ok := target.(ErrReportNotFound)
	if !ok {
		return false
	}
	if t.Period == "" {
		return true
	}
	return e.Period == t.Period
}

// ErrDuplicateReport indicates a report already exists for the period
type ErrDuplicateReport struct {
	Period string
}

func (e ErrDuplicateReport) Error() string {
	return "batch report already exists for period: " + e.Period
}
