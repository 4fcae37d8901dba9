package handler

// CreateCustomerRequest represents a request to register a new borrower
type CreateCustomerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	StaffID  string `json:"staff_id" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	StaffID       string `json:"staff_id"`
	Email         string `json:"email,omitempty"`
	Grade         string `json:"grade,omitempty"`
	Step          string `json:"step,omitempty"`
	Command       string `json:"command,omitempty"`
	GrossPay      int64  `json:"gross_pay,omitempty"`
	NetPay        int64  `json:"net_pay,omitempty"`
	RepaymentRate int    `json:"repayment_rate"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// CreateLoanRequest represents a request to open a new loan
type CreateLoanRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// SetTermsRequest represents a request to fix a loan's principal and tenure
type SetTermsRequest struct {
	Principal    int64 `json:"principal" binding:"required,gt=0"`
	TenureMonths int   `json:"tenure_months" binding:"required,gt=0"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	Principal       int64   `json:"principal"`
	AnnualRate      float64 `json:"annual_rate"`
	TenureMonths    int     `json:"tenure_months"`
	ExtensionMonths int     `json:"extension_months,omitempty"`
	Penalty         int64   `json:"penalty"`
	Repaid          int64   `json:"repaid"`
	Repayable       int64   `json:"repayable"`
	Outstanding     int64   `json:"outstanding"`
	Status          string  `json:"status"`
	DisbursedAt     string  `json:"disbursed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// LoanListResponse represents a list of loans in API responses
type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
}

// UploadBatchRequest represents the multipart form fields of a deduction
// sheet upload. The sheet itself arrives as the "sheet" file part.
type UploadBatchRequest struct {
	Period string `form:"period" binding:"required"`
}

// BatchResponse represents an ingestion batch in API responses
type BatchResponse struct {
	ID            string `json:"id"`
	Period        string `json:"period"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	RowsTotal     int    `json:"rows_total"`
	RowsProcessed int    `json:"rows_processed"`
	FailureReason string `json:"failure_reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// ReportResponse represents an archived batch report in API responses
type ReportResponse struct {
	BatchID       string `json:"batch_id"`
	Period        string `json:"period"`
	CustomerCount int    `json:"customer_count"`
	TotalReceived int64  `json:"total_received"`
	TotalRepaid   int64  `json:"total_repaid"`
	TotalPenalty  int64  `json:"total_penalty"`
	TotalLeftover int64  `json:"total_leftover"`
	FailedLoans   int    `json:"failed_loans"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// RepaymentEntryResponse represents a repayment ledger row in API responses
type RepaymentEntryResponse struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer_id,omitempty"`
	LoanID         string `json:"loan_id,omitempty"`
	Period         string `json:"period"`
	AmountReceived int64  `json:"amount_received"`
	AmountExpected int64  `json:"amount_expected"`
	AmountRepaid   int64  `json:"amount_repaid"`
	PenaltyCharge  int64  `json:"penalty_charge"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ResolveRequest represents a request to assign an unresolved entry to a loan
type ResolveRequest struct {
	LoanID string `json:"loan_id" binding:"required,uuid"`
	Note   string `json:"note"`
}

// CreateLiquidationRequest represents a request for a lump-sum payoff
type CreateLiquidationRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

// LiquidationResponse represents a liquidation request in API responses
type LiquidationResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

// AllocationResultResponse summarizes how a payment was applied
type AllocationResultResponse struct {
	Received  int64 `json:"received"`
	Allocated int64 `json:"allocated"`
	Expected  int64 `json:"expected"`
	Penalty   int64 `json:"penalty"`
	Leftover  int64 `json:"leftover"`
	Loans     int   `json:"loans"`
}

// SetRateRequest represents a request to update a platform rate. Percent is a
// whole number, e.g. 5 for five percent.
type SetRateRequest struct {
	Key     string  `json:"key" binding:"required"`
	Percent float64 `json:"percent" binding:"required,gt=0,lte=100"`
}

// MaintenanceRequest represents a request to toggle maintenance mode
type MaintenanceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
