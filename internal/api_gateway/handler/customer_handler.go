package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
)

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(logger *slog.Logger, customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// Create handles registration of a new borrower, rejecting duplicate staff IDs
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cust, err := h.customerService.CreateCustomer(c.Request.Context(), req.FullName, req.StaffID, req.Email)
	if err != nil {
		var duplicateStaffIDErr customer.ErrDuplicateStaffID
		if errors.As(err, &duplicateStaffIDErr) {
			h.logger.Warn("Attempt to register duplicate staff ID", "staff_id", duplicateStaffIDErr.StaffID)
			RespondConflict(c, "Customer with this staff ID already exists")
			return
		}
		if errors.Is(err, customer.ErrEmptyFullName) || errors.Is(err, customer.ErrEmptyStaffID) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create customer", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapCustomerToResponse(cust))
}

// GetByID retrieves a customer by ID, returning 404 if not found
func (h *CustomerHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid customer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	cust, err := h.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		var notFound customer.ErrCustomerNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Customer not found")
			return
		}
		h.logger.Error("Failed to get customer", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapCustomerToResponse(cust))
}

// ListLoans returns the customer's disbursed loans in allocation order
func (h *CustomerHandler) ListLoans(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid customer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	loans, err := h.customerService.ListOutstandingLoans(c.Request.Context(), id)
	if err != nil {
		var notFound customer.ErrCustomerNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Customer not found")
			return
		}
		h.logger.Error("Failed to list customer loans", "customer_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := LoanListResponse{Loans: make([]LoanResponse, 0, len(loans))}
	for _, l := range loans {
		response.Loans = append(response.Loans, mapLoanToResponse(l))
	}
	RespondOK(c, response)
}

// mapCustomerToResponse maps a customer entity to a customer response DTO
func mapCustomerToResponse(cust *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            cust.ID.String(),
		FullName:      cust.FullName,
		StaffID:       cust.StaffID,
		Email:         cust.Email,
		Grade:         cust.Payroll.Grade,
		Step:          cust.Payroll.Step,
		Command:       cust.Payroll.Command,
		GrossPay:      cust.Payroll.GrossPay,
		NetPay:        cust.Payroll.NetPay,
		RepaymentRate: cust.RepaymentRate,
		CreatedAt:     cust.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     cust.UpdatedAt.Format(time.RFC3339),
	}
}

// mapLoanToResponse maps a loan entity to a loan response DTO
func mapLoanToResponse(l *loan.Loan) LoanResponse {
	resp := LoanResponse{
		ID:              l.ID.String(),
		CustomerID:      l.CustomerID.String(),
		Principal:       l.Principal,
		AnnualRate:      l.AnnualRate,
		TenureMonths:    l.TenureMonths,
		ExtensionMonths: l.ExtensionMonths,
		Penalty:         l.Penalty,
		Repaid:          l.Repaid,
		Repayable:       l.Repayable,
		Outstanding:     l.Outstanding(),
		Status:          string(l.Status),
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}
	if l.DisbursedAt != nil {
		resp.DisbursedAt = l.DisbursedAt.Format(time.RFC3339)
	}
	return resp
}
