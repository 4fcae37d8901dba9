package batch

import (
	"time"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Batch tracks one uploaded deduction sheet through ingestion: its archived
// source file, row counts, fractional progress for polling, and the terminal
// outcome. The (period, non-terminal-status) pair also serves as the guard
// against running the same period twice.
type Batch struct {
	ID            uuid.UUID          `json:"id"`
	Period        string             `json:"period"`
	FileKey       string             `json:"file_key"`
	Status        shared.BatchStatus `json:"status"`
	Progress      int                `json:"progress"` // 0..100
	RowsTotal     int                `json:"rows_total"`
	RowsProcessed int                `json:"rows_processed"`
	FailureReason string             `json:"failure_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// New creates a PENDING batch for a period, referencing the archived sheet.
func New(period shared.Period, fileKey string) *Batch {
	return &Batch{
		ID:        uuid.New(),
		Period:    period.Label,
		FileKey:   fileKey,
		Status:    shared.BatchStatusPending,
		CreatedAt: time.Now(),
	}
}

// MarkRunning is called when the processor picks the batch up.
func (b *Batch) MarkRunning(rowsTotal int) {
	b.Status = shared.BatchStatusRunning
	b.RowsTotal = rowsTotal
}

// MarkCompleted records a successful run at 100% progress.
func (b *Batch) MarkCompleted() {
	b.Status = shared.BatchStatusCompleted
	b.Progress = 100
	now := time.Now()
	b.CompletedAt = &now
}

// MarkFailed records a terminal failure with its triggering error message.
func (b *Batch) MarkFailed(reason string) {
	b.Status = shared.BatchStatusFailed
	b.FailureReason = reason
	now := time.Now()
	b.CompletedAt = &now
}
