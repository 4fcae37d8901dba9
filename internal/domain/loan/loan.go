package loan

import (
	"errors"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidTenure    = errors.New("tenure must be at least one month")
	ErrNegativeRate     = errors.New("annual rate cannot be negative")
	ErrTermsNotSet      = errors.New("loan terms have not been set")
	ErrNotApproved      = errors.New("loan has not been approved")
	ErrAlreadyDisbursed = errors.New("loan has already been disbursed")
	ErrNotDisbursed     = errors.New("loan has not been disbursed")
	ErrInvalidRepayment = errors.New("repayment amount must be positive")
	ErrTerminalStatus   = errors.New("loan is in a terminal status")
)

// Loan represents one borrowing instance for a customer. All monetary amounts
// are stored in minor units (kobo/cents); AnnualRate is a fraction (0.1 = 10%).
type Loan struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	Principal       int64             `json:"principal"`
	AnnualRate      float64           `json:"annual_rate"`
	TenureMonths    int               `json:"tenure_months"`
	ExtensionMonths int               `json:"extension_months"`
	Penalty         int64             `json:"penalty"`
	PenaltyRepaid   int64             `json:"penalty_repaid"`
	Repaid          int64             `json:"repaid"`
	Repayable       int64             `json:"repayable"`
	Status          shared.LoanStatus `json:"status"`
	DisbursedAt     *time.Time        `json:"disbursed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// New creates a loan in PENDING status. Terms are fixed later, before approval.
func New(customerID uuid.UUID) *Loan {
	now := time.Now()
	return &Loan{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     shared.LoanStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetTerms fixes principal, rate and tenure. Only valid while PENDING.
func (l *Loan) SetTerms(principal int64, annualRate float64, tenureMonths int) error {
	if l.Status != shared.LoanStatusPending {
		return ErrTerminalStatus
	}
	if principal <= 0 {
		return ErrInvalidPrincipal
	}
	if tenureMonths <= 0 {
		return ErrInvalidTenure
	}
	if annualRate < 0 {
		return ErrNegativeRate
	}

	l.Principal = principal
	l.AnnualRate = annualRate
	l.TenureMonths = tenureMonths
	l.UpdatedAt = time.Now()
	return nil
}

// Approve moves a PENDING loan with fixed terms to APPROVED.
func (l *Loan) Approve() error {
	if l.Status != shared.LoanStatusPending {
		return ErrTerminalStatus
	}
	if l.Principal == 0 || l.TenureMonths == 0 {
		return ErrTermsNotSet
	}

	l.Status = shared.LoanStatusApproved
	l.UpdatedAt = time.Now()
	return nil
}

// Reject terminates a loan before disbursement.
func (l *Loan) Reject() error {
	if l.Status != shared.LoanStatusPending && l.Status != shared.LoanStatusApproved {
		return ErrTerminalStatus
	}

	l.Status = shared.LoanStatusRejected
	l.UpdatedAt = time.Now()
	return nil
}

// Disburse marks the loan DISBURSED, fixing its total repayable and the
// disbursement date from which amortization periods are counted.
func (l *Loan) Disburse(repayable int64, at time.Time) error {
	if l.Status == shared.LoanStatusDisbursed {
		return ErrAlreadyDisbursed
	}
	if l.Status != shared.LoanStatusApproved {
		return ErrNotApproved
	}

	l.Repayable = repayable
	l.Status = shared.LoanStatusDisbursed
	l.DisbursedAt = &at
	l.UpdatedAt = time.Now()
	return nil
}

// ApplyRepayment increments the repaid total and transitions to REPAID once
// the cumulative repaid covers repayable plus accrued penalty.
func (l *Loan) ApplyRepayment(amount int64) error {
	if l.Status != shared.LoanStatusDisbursed {
		return ErrNotDisbursed
	}
	if amount <= 0 {
		return ErrInvalidRepayment
	}

	l.Repaid += amount
	if l.Repaid >= l.TotalPayable() {
		l.Status = shared.LoanStatusRepaid
	}
	l.UpdatedAt = time.Now()
	return nil
}

// AccruePenalty adds a penalty charge to the loan. The penalty raises both the
// accrued penalty and the total repayable.
func (l *Loan) AccruePenalty(amount int64) {
	if amount <= 0 {
		return
	}
	l.Penalty += amount
	l.Repayable += amount
	l.UpdatedAt = time.Now()
}

// ExtendTenure pushes the effective tenure out by one month, rescheduling a
// missed period instead of losing it.
func (l *Loan) ExtendTenure() {
	l.ExtensionMonths++
	l.UpdatedAt = time.Now()
}

// EffectiveTenure is the number of amortization periods including extensions.
func (l *Loan) EffectiveTenure() int {
	return l.TenureMonths + l.ExtensionMonths
}

// TotalPayable is the amount the borrower must ultimately pay.
func (l *Loan) TotalPayable() int64 {
	return l.Repayable
}

// Outstanding is what remains to be paid.
func (l *Loan) Outstanding() int64 {
	out := l.TotalPayable() - l.Repaid
	if out < 0 {
		return 0
	}
	return out
}

// PeriodIndex maps a period to this loan's 1-based amortization month,
// clamped to the effective tenure. Returns 0 when the period predates
// disbursement.
func (l *Loan) PeriodIndex(p shared.Period) int {
	if l.DisbursedAt == nil {
		return 0
	}
	idx := p.MonthsSince(*l.DisbursedAt)
	if idx < 1 {
		if idx == 0 {
			return 1 // disbursed and first deduction within the same month
		}
		return 0
	}
	if idx > l.EffectiveTenure() {
		return l.EffectiveTenure()
	}
	return idx
}
