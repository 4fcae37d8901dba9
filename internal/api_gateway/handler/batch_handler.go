package handler

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/api_gateway/middleware"
	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// maxSheetSize bounds uploaded deduction sheets at 10 MiB.
const maxSheetSize = 10 << 20

// BatchHandler handles HTTP requests for deduction sheet ingestion
type BatchHandler struct {
	batchService service.BatchService
	logger       *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(logger *slog.Logger, batchService service.BatchService) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		logger:       logger,
	}
}

// Upload accepts a multipart deduction sheet for a period and enqueues its
// ingestion, responding 202 with the batch to poll
func (h *BatchHandler) Upload(c *gin.Context) {
	var req UploadBatchRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid upload form", "error", err)
		RespondBadRequest(c, "Invalid upload form: "+err.Error())
		return
	}

	fileHeader, err := c.FormFile("sheet")
	if err != nil {
		RespondBadRequest(c, "Missing deduction sheet file")
		return
	}
	if fileHeader.Size > maxSheetSize {
		RespondBadRequest(c, "Deduction sheet exceeds the size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded sheet", "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	sheet, err := io.ReadAll(io.LimitReader(file, maxSheetSize))
	if err != nil {
		h.logger.Error("Failed to read uploaded sheet", "error", err)
		RespondInternalError(c)
		return
	}

	b, err := h.batchService.UploadBatch(c.Request.Context(), req.Period, sheet, middleware.GetCorrelationID(c))
	if err != nil {
		var inFlight batch.ErrPeriodInFlight
		switch {
		case errors.Is(err, shared.ErrInvalidPeriod):
			RespondBadRequest(c, "Invalid period label, expected e.g. \"May 2026\"")
		case errors.As(err, &inFlight):
			h.logger.Warn("Period already has an active batch", "period", inFlight.Period)
			RespondConflict(c, "A batch for this period is already in progress")
		default:
			h.logger.Error("Failed to accept batch upload", "period", req.Period, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondAccepted(c, mapBatchToResponse(b))
}

// GetByID returns a batch with its current progress, for polling
func (h *BatchHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid batch ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid batch ID")
		return
	}

	b, err := h.batchService.GetBatchByID(c.Request.Context(), id)
	if err != nil {
		var notFound batch.ErrBatchNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Batch not found")
			return
		}
		h.logger.Error("Failed to get batch", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapBatchToResponse(b))
}

// GetReport returns the archived run report for a processed period
func (h *BatchHandler) GetReport(c *gin.Context) {
	periodLabel := c.Param("period")

	r, err := h.batchService.GetReportByPeriod(c.Request.Context(), periodLabel)
	if err != nil {
		var notFound report.ErrReportNotFound
		switch {
		case errors.Is(err, shared.ErrInvalidPeriod):
			RespondBadRequest(c, "Invalid period label")
		case errors.As(err, &notFound):
			RespondNotFound(c, "No report exists for this period")
		default:
			h.logger.Error("Failed to get report", "period", periodLabel, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapReportToResponse(r))
}

// mapBatchToResponse maps a batch entity to a batch response DTO
func mapBatchToResponse(b *batch.Batch) BatchResponse {
	resp := BatchResponse{
		ID:            b.ID.String(),
		Period:        b.Period,
		Status:        string(b.Status),
		Progress:      b.Progress,
		RowsTotal:     b.RowsTotal,
		RowsProcessed: b.RowsProcessed,
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
	if b.CompletedAt != nil {
		resp.CompletedAt = b.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// mapReportToResponse maps a report to a response DTO, omitting the attachment
func mapReportToResponse(r *report.Report) ReportResponse {
	return ReportResponse{
		BatchID:       r.BatchID.String(),
		Period:        r.Period,
		CustomerCount: r.CustomerCount,
		TotalReceived: r.TotalReceived,
		TotalRepaid:   r.TotalRepaid,
		TotalPenalty:  r.TotalPenalty,
		TotalLeftover: r.TotalLeftover,
		FailedLoans:   r.FailedLoans,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
