package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/settings"
)

// LoanHandler handles HTTP requests for the loan lifecycle
type LoanHandler struct {
	loanService service.LoanService
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Create opens a PENDING loan for an existing customer
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
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

	l, err := h.loanService.CreateLoan(c.Request.Context(), customerID)
	if err != nil {
		var notFound customer.ErrCustomerNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Customer not found")
			return
		}
		h.logger.Error("Failed to create loan", "customer_id", req.CustomerID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// GetByID retrieves a loan by its ID, returning 404 if not found
func (h *LoanHandler) GetByID(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	l, err := h.loanService.GetLoanByID(c.Request.Context(), id)
	if err != nil {
		h.respondLoanError(c, id, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// SetTerms fixes a loan's principal and tenure, stamping the platform
// interest rate
func (h *LoanHandler) SetTerms(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	var req SetTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.SetTerms(c.Request.Context(), id, req.Principal, req.TenureMonths)
	if err != nil {
		if errors.Is(err, settings.ErrRateNotConfigured) {
			h.logger.Error("Interest rate not configured", "loan_id", id)
			RespondInternalError(c)
			return
		}
		h.respondLoanError(c, id, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Approve moves a loan with fixed terms to APPROVED
func (h *LoanHandler) Approve(c *gin.Context) {
	h.transition(c, h.loanService.ApproveLoan)
}

// Reject declines a pending loan
func (h *LoanHandler) Reject(c *gin.Context) {
	h.transition(c, h.loanService.RejectLoan)
}

// Disburse pays out an approved loan, fixing its total repayable
func (h *LoanHandler) Disburse(c *gin.Context) {
	h.transition(c, h.loanService.DisburseLoan)
}

// transition runs a single-argument lifecycle operation and maps its errors
func (h *LoanHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*loan.Loan, error)) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	l, err := op(c.Request.Context(), id)
	if err != nil {
		h.respondLoanError(c, id, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// loanID parses the :id path parameter, responding 400 on failure
func (h *LoanHandler) loanID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid loan ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid loan ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondLoanError maps loan domain errors to HTTP responses
func (h *LoanHandler) respondLoanError(c *gin.Context, id uuid.UUID, err error) {
	var notFound loan.ErrLoanNotFound
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, "Loan not found")
	case errors.Is(err, loan.ErrInvalidPrincipal),
		errors.Is(err, loan.ErrInvalidTenure),
		errors.Is(err, loan.ErrNegativeRate):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, loan.ErrTermsNotSet),
		errors.Is(err, loan.ErrNotApproved),
		errors.Is(err, loan.ErrAlreadyDisbursed),
		errors.Is(err, loan.ErrNotDisbursed),
		errors.Is(err, loan.ErrTerminalStatus):
		RespondConflict(c, err.Error())
	default:
		h.logger.Error("Loan operation failed", "loan_id", id, "error", err)
		RespondInternalError(c)
	}
}
