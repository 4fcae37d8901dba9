package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/batch_processor/service"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/messaging/producers"
)

// BatchEventHandler handles incoming deduction batch request messages from Kafka
type BatchEventHandler struct {
	ingestionService service.IngestionService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewBatchEventHandler creates a new handler
func NewBatchEventHandler(
	logger *slog.Logger,
	ingestionService service.IngestionService,
	producer producers.DeadLetterPublisher,
) *BatchEventHandler {
	return &BatchEventHandler{
		ingestionService: ingestionService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes Kafka messages
func (h *BatchEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.DeductionBatchRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal deduction batch request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received deduction batch request for processing",
		"batch_id", request.BatchID.String(),
		"period", request.Period,
	)

	if err := h.ingestionService.ProcessBatch(ctx, &request); err != nil {
		var inFlight batch.ErrPeriodInFlight
		if errors.As(err, &inFlight) {
			// Let the redelivery land after the running batch finishes
			logger.Warn("Period already in flight, leaving message for retry",
				"batch_id", request.BatchID.String(),
				"period", request.Period,
			)
			return err
		}

		logger.Error("Failed to process deduction batch",
			"batch_id", request.BatchID.String(),
			"period", request.Period,
			"error", err,
		)
		return fmt.Errorf("processing batch %s failed: %w", request.BatchID.String(), err)
	}

	logger.Info("Successfully processed deduction batch", "batch_id", request.BatchID.String())
	return nil // Success, commit offset
}
