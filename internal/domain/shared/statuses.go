package shared

// LoanStatus defines the loan lifecycle states
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusApproved  LoanStatus = "APPROVED"
	LoanStatusRejected  LoanStatus = "REJECTED"
	LoanStatusDisbursed LoanStatus = "DISBURSED"
	LoanStatusRepaid    LoanStatus = "REPAID"
)

// RepaymentStatus defines the states of a repayment ledger row
type RepaymentStatus string

const (
	// RepaymentStatusAwaiting is the proactive expected-payment row created at
	// the start of a period's ingestion, before any payment is matched.
	RepaymentStatusAwaiting RepaymentStatus = "AWAITING"
	// RepaymentStatusFulfilled means the expected amount was fully matched.
	RepaymentStatusFulfilled RepaymentStatus = "FULFILLED"
	// RepaymentStatusPartial means less than the expected amount was matched.
	RepaymentStatusPartial RepaymentStatus = "PARTIAL"
	// RepaymentStatusFailed means no payment arrived for the period; a penalty
	// was applied and the loan's tenure was extended by one month.
	RepaymentStatusFailed RepaymentStatus = "FAILED"
	// RepaymentStatusManualResolution records money the system could not match
	// to any obligation. An operator reconciles it later.
	RepaymentStatusManualResolution RepaymentStatus = "MANUAL_RESOLUTION"
)

// BatchStatus defines deduction batch processing states
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "PENDING"
	BatchStatusRunning   BatchStatus = "RUNNING"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusFailed    BatchStatus = "FAILED"
)

// LiquidationStatus defines lump-sum payoff request states
type LiquidationStatus string

const (
	LiquidationStatusPending  LiquidationStatus = "PENDING"
	LiquidationStatusApproved LiquidationStatus = "APPROVED"
	LiquidationStatusRejected LiquidationStatus = "REJECTED"
)

// ReportStatus defines batch report delivery states
type ReportStatus string

const (
	ReportStatusPending      ReportStatus = "PENDING"
	ReportStatusSent         ReportStatus = "SENT"
	ReportStatusFailedToSend ReportStatus = "FAILED_TO_SEND"
)
