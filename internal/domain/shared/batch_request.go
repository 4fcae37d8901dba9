package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPeriod = errors.New("invalid period label")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// DeductionBatchRequest defines a Kafka message asking the batch processor to
// ingest one period's payroll deduction sheet. The sheet itself is archived
// separately and referenced by BatchID.
type DeductionBatchRequest struct {
	BatchID       uuid.UUID `json:"batch_id"`
	Period        string    `json:"period"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}
