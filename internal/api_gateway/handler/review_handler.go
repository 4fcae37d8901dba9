package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
)

// ReviewHandler handles HTTP requests for the manual-resolution queue
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(logger *slog.Logger, reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// List returns the paginated queue of ledger rows awaiting manual resolution
func (h *ReviewHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.reviewService.ListUnresolved(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list unresolved entries", "error", err)
		RespondInternalError(c)
		return
	}

	rows := make([]RepaymentEntryResponse, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, mapEntryToResponse(e))
	}
	RespondWithPaginatedData(c, 200, rows, params.Page, params.PerPage, int(total))
}

// Resolve assigns an unresolved entry's money to a specific loan
func (h *ReviewHandler) Resolve(c *gin.Context) {
	idParam := c.Param("id")
	entryID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid entry ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid entry ID")
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loanID, err := uuid.Parse(req.LoanID)
	if err != nil {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	result, err := h.reviewService.Resolve(c.Request.Context(), entryID, loanID, req.Note)
	if err != nil {
		var entryNotFound repayment.ErrEntryNotFound
		var loanNotFound loan.ErrLoanNotFound
		switch {
		case errors.As(err, &entryNotFound):
			RespondNotFound(c, "Entry not found")
		case errors.As(err, &loanNotFound):
			RespondNotFound(c, "Loan not found")
		case errors.Is(err, allocation.ErrNotUnresolved):
			RespondConflict(c, "Entry is not awaiting manual resolution")
		case errors.Is(err, loan.ErrNotDisbursed):
			RespondConflict(c, "Loan is not disbursed")
		default:
			h.logger.Error("Failed to resolve entry", "entry_id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapResultToResponse(result))
}

// mapEntryToResponse maps a repayment ledger row to a response DTO
func mapEntryToResponse(e *repayment.Entry) RepaymentEntryResponse {
	resp := RepaymentEntryResponse{
		ID:             e.ID.String(),
		Period:         e.Period,
		AmountReceived: e.AmountReceived,
		AmountExpected: e.AmountExpected,
		AmountRepaid:   e.AmountRepaid,
		PenaltyCharge:  e.PenaltyCharge,
		Status:         string(e.Status),
		Note:           e.Note,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
	if e.CustomerID != nil {
		resp.CustomerID = e.CustomerID.String()
	}
	if e.LoanID != nil {
		resp.LoanID = e.LoanID.String()
	}
	return resp
}

// mapResultToResponse maps an allocation result to a response DTO
func mapResultToResponse(r *allocation.Result) AllocationResultResponse {
	return AllocationResultResponse{
		Received:  r.Received,
		Allocated: r.Allocated,
		Expected:  r.Expected,
		Penalty:   r.Penalty,
		Leftover:  r.Leftover,
		Loans:     r.Loans,
	}
}
