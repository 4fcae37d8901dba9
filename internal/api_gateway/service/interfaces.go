package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/report"
)

// CustomerService defines the interface for customer operations
type CustomerService interface {
	// CreateCustomer registers a borrower keyed by a payroll staff ID.
	// Returns ErrDuplicateStaffID if one already exists.
	CreateCustomer(ctx context.Context, fullName, staffID, email string) (*customer.Customer, error)

	// GetCustomerByID retrieves a customer by ID.
	// Returns ErrCustomerNotFound if none exists.
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)

	// ListOutstandingLoans returns the customer's disbursed loans in
	// allocation order.
	ListOutstandingLoans(ctx context.Context, customerID uuid.UUID) ([]*loan.Loan, error)
}

// LoanService drives the loan lifecycle: PENDING, terms, approval, disbursal.
type LoanService interface {
	// CreateLoan opens a PENDING loan for a customer.
	CreateLoan(ctx context.Context, customerID uuid.UUID) (*loan.Loan, error)

	// GetLoanByID retrieves a loan. Returns ErrLoanNotFound if none exists.
	GetLoanByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error)

	// SetTerms fixes principal and tenure, stamping the platform interest
	// rate. Returns settings.ErrRateNotConfigured when no rate is set: fixing
	// terms without a configured rate is an internal configuration error.
	SetTerms(ctx context.Context, loanID uuid.UUID, principal int64, tenureMonths int) (*loan.Loan, error)

	ApproveLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	RejectLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)

	// DisburseLoan computes the total repayable, stamps the disbursement
	// date and accumulates the platform disbursement counters, all in one
	// transaction.
	DisburseLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
}

// BatchService accepts deduction sheet uploads and exposes batch state.
type BatchService interface {
	// UploadBatch archives the sheet, records a PENDING batch and enqueues
	// the ingestion request. Returns batch.ErrPeriodInFlight when the period
	// already has an active batch.
	UploadBatch(ctx context.Context, periodLabel string, sheet []byte, correlationID string) (*batch.Batch, error)

	// GetBatchByID returns the batch with its current progress, for polling.
	GetBatchByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error)

	// GetReportByPeriod returns the archived report for a processed period.
	GetReportByPeriod(ctx context.Context, periodLabel string) (*report.Report, error)
}

// ReviewService exposes the operator queue of manual-resolution ledger rows.
type ReviewService interface {
	// ListUnresolved returns the MANUAL_RESOLUTION rows, newest first, with
	// the total count for pagination.
	ListUnresolved(ctx context.Context, page, perPage int) ([]*repayment.Entry, int64, error)

	// Resolve assigns an unresolved row's money to a specific loan.
	Resolve(ctx context.Context, entryID, loanID uuid.UUID, note string) (*allocation.Result, error)
}

// LiquidationService manages lump-sum payoff requests.
type LiquidationService interface {
	CreateRequest(ctx context.Context, customerID uuid.UUID, amount int64) (*liquidation.Request, error)
	GetRequestByID(ctx context.Context, id uuid.UUID) (*liquidation.Request, error)
	ListPending(ctx context.Context, page, perPage int) ([]*liquidation.Request, error)

	// ApproveRequest allocates the amount like a normal payment dated to the
	// current period, then marks the request approved. Allocation and
	// approval commit atomically.
	ApproveRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, *allocation.Result, error)

	RejectRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, error)
}

// PlatformService exposes the admin view of the platform counters, rates and
// operational flags.
type PlatformService interface {
	// Overview returns the accumulated counters and configured rates.
	Overview(ctx context.Context) (*PlatformOverview, error)

	// SetRate stores a whole-number percentage for one of the configurable
	// rate keys. Returns ErrUnknownRateKey for any other key.
	SetRate(ctx context.Context, key string, percent float64) error

	SetMaintenanceMode(ctx context.Context, enabled bool) error
}

// PlatformOverview is the admin snapshot of platform state. Rates are
// fractions; amounts are minor units. Unconfigured rates read as zero.
type PlatformOverview struct {
	TotalDisbursed      int64   `json:"total_disbursed"`
	TotalBorrowed       int64   `json:"total_borrowed"`
	TotalRepaid         int64   `json:"total_repaid"`
	InterestRevenue     int64   `json:"interest_revenue"`
	PenaltyRevenue      int64   `json:"penalty_revenue"`
	InterestRate        float64 `json:"interest_rate"`
	PenaltyRate         float64 `json:"penalty_rate"`
	ManagementFeeRate   float64 `json:"management_fee_rate"`
	MaintenanceMode     bool    `json:"maintenance_mode"`
	LastProcessedPeriod string  `json:"last_processed_period,omitempty"`
}
