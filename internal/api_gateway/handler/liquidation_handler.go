package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// LiquidationHandler handles HTTP requests for lump-sum payoff requests
type LiquidationHandler struct {
	liquidationService service.LiquidationService
	logger             *slog.Logger
}

// NewLiquidationHandler creates a new liquidation handler
func NewLiquidationHandler(logger *slog.Logger, liquidationService service.LiquidationService) *LiquidationHandler {
	return &LiquidationHandler{
		liquidationService: liquidationService,
		logger:             logger,
	}
}

// Create files a PENDING payoff request for a customer
func (h *LiquidationHandler) Create(c *gin.Context) {
	var req CreateLiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	r, err := h.liquidationService.CreateRequest(c.Request.Context(), customerID, req.Amount)
	if err != nil {
		var notFound customer.ErrCustomerNotFound
		switch {
		case errors.As(err, &notFound):
			RespondNotFound(c, "Customer not found")
		case errors.Is(err, shared.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create liquidation request", "customer_id", req.CustomerID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapLiquidationToResponse(r))
}

// GetByID retrieves a liquidation request
func (h *LiquidationHandler) GetByID(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	r, err := h.liquidationService.GetRequestByID(c.Request.Context(), id)
	if err != nil {
		h.respondLiquidationError(c, id, err)
		return
	}

	RespondOK(c, mapLiquidationToResponse(r))
}

// ListPending returns paginated pending payoff requests
func (h *LiquidationHandler) ListPending(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	requests, err := h.liquidationService.ListPending(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list pending liquidation requests", "error", err)
		RespondInternalError(c)
		return
	}

	rows := make([]LiquidationResponse, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, mapLiquidationToResponse(r))
	}
	RespondOK(c, rows)
}

// Approve allocates the requested amount against the customer's loans and
// marks the request approved
func (h *LiquidationHandler) Approve(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	r, result, err := h.liquidationService.ApproveRequest(c.Request.Context(), id)
	if err != nil {
		h.respondLiquidationError(c, id, err)
		return
	}

	RespondOK(c, gin.H{
		"request":    mapLiquidationToResponse(r),
		"allocation": mapResultToResponse(result),
	})
}

// Reject declines a pending payoff request
func (h *LiquidationHandler) Reject(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}

	r, err := h.liquidationService.RejectRequest(c.Request.Context(), id)
	if err != nil {
		h.respondLiquidationError(c, id, err)
		return
	}

	RespondOK(c, mapLiquidationToResponse(r))
}

func (h *LiquidationHandler) requestID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid liquidation request ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid request ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *LiquidationHandler) respondLiquidationError(c *gin.Context, id uuid.UUID, err error) {
	var notFound liquidation.ErrRequestNotFound
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Liquidation request not found")
	case errors.Is(err, liquidation.ErrNotPending):
		RespondConflict(c, "Liquidation request has already been resolved")
	default:
		h.logger.Error("Liquidation operation failed", "request_id", id, "error", err)
		RespondInternalError(c)
	}
}

// mapLiquidationToResponse maps a liquidation request to a response DTO
func mapLiquidationToResponse(r *liquidation.Request) LiquidationResponse {
	resp := LiquidationResponse{
		ID:         r.ID.String(),
		CustomerID: r.CustomerID.String(),
		Amount:     r.Amount,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResolvedAt != nil {
		resp.ResolvedAt = r.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}
