package repayment

import (
	"time"

	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Entry is one repayment ledger row: the expected-vs-actual payment event for
// a (loan, period) pair, or a standalone manual-resolution record when no
// loan or customer match exists. Amounts are in minor units.
type Entry struct {
	ID             uuid.UUID              `json:"id"`
	CustomerID     *uuid.UUID             `json:"customer_id,omitempty"`
	LoanID         *uuid.UUID             `json:"loan_id,omitempty"`
	Period         string                 `json:"period"`
	PeriodDate     time.Time              `json:"period_date"`
	AmountReceived int64                  `json:"amount_received"`
	AmountExpected int64                  `json:"amount_expected"`
	AmountRepaid   int64                  `json:"amount_repaid"`
	PenaltyCharge  int64                  `json:"penalty_charge"`
	Status         shared.RepaymentStatus `json:"status"`
	Note           string                 `json:"note,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewAwaiting creates the proactive expected-payment row for a disbursed loan
// at the start of a period's ingestion.
func NewAwaiting(customerID, loanID uuid.UUID, period shared.Period, expected int64) *Entry {
	now := time.Now()
	return &Entry{
		ID:             uuid.New(),
		CustomerID:     &customerID,
		LoanID:         &loanID,
		Period:         period.Label,
		PeriodDate:     period.Date,
		AmountExpected: expected,
		Status:         shared.RepaymentStatusAwaiting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewManualResolution records money that could not be matched to any
// obligation. The ledger never silently drops money: unmatched staff IDs and
// overpayment leftovers both land here for an operator to reconcile.
func NewManualResolution(customerID *uuid.UUID, period shared.Period, amount int64, note string) *Entry {
	now := time.Now()
	return &Entry{
		ID:             uuid.New(),
		CustomerID:     customerID,
		Period:         period.Label,
		PeriodDate:     period.Date,
		AmountReceived: amount,
		Status:         shared.RepaymentStatusManualResolution,
		Note:           note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Fulfill applies a matched payment against the expected amount. The row ends
// FULFILLED when fully matched and PARTIAL otherwise; penalty is the charge
// computed on the shortfall.
func (e *Entry) Fulfill(received, repaid, penalty int64) {
	e.AmountReceived = received
	e.AmountRepaid = repaid
	e.PenaltyCharge = penalty
	if repaid >= e.AmountExpected {
		e.Status = shared.RepaymentStatusFulfilled
	} else {
		e.Status = shared.RepaymentStatusPartial
	}
	e.UpdatedAt = time.Now()
}

// Fail marks a row whose period closed with no matching payment.
func (e *Entry) Fail(penalty int64, note string) {
	e.Status = shared.RepaymentStatusFailed
	e.PenaltyCharge = penalty
	e.Note = note
	e.UpdatedAt = time.Now()
}

// IsTerminal reports whether this row will not be retried by the same
// ingestion run.
func (e *Entry) IsTerminal() bool {
	return e.Status == shared.RepaymentStatusFulfilled || e.Status == shared.RepaymentStatusFailed
}
