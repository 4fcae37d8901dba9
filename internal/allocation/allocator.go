// Package allocation applies incoming repayment money across a customer's
// outstanding loans. It is the one place that knows the allocation order, the
// shortfall penalty rule, and the revenue counter bookkeeping; the batch
// processor and the API gateway both drive it rather than re-implementing any
// of that.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deducta-loan-ledger/internal/amort"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

var (
	// ErrNotUnresolved is returned when overflow resolution targets a ledger
	// row that is not awaiting manual resolution.
	ErrNotUnresolved = errors.New("ledger row is not awaiting manual resolution")
)

// Result summarizes one allocation run for a single customer. The ingestion
// pipeline folds these into the batch report.
type Result struct {
	Received  int64 // total money that came in
	Allocated int64 // portion applied to loans
	Expected  int64 // sum of expected amounts across touched rows
	Penalty   int64 // shortfall penalties accrued this run
	Leftover  int64 // unallocated remainder filed for manual resolution
	Loans     int   // loans touched
}

// Allocator walks a customer's open loans in allocation order and applies a
// payment against each period's expected amount.
type Allocator struct {
	db         *persistence.PostgresDB
	loans      loan.Repository
	customers  customer.Repository
	repayments repayment.Repository
	settings   settings.Store
	logger     *slog.Logger
}

func NewAllocator(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	loans loan.Repository,
	customers customer.Repository,
	repayments repayment.Repository,
	settingsStore settings.Store,
) *Allocator {
	return &Allocator{
		db:         db,
		loans:      loans,
		customers:  customers,
		repayments: repayments,
		settings:   settingsStore,
		logger:     logger,
	}
}

// ExpectedPayment is the amount a loan is expected to receive for one period:
// the annuity payment, capped at what is still outstanding so the final
// period never over-asks.
func ExpectedPayment(l *loan.Loan) (int64, error) {
	pmt, err := amort.MonthlyPayment(l.Principal, l.AnnualRate, l.EffectiveTenure())
	if err != nil {
		return 0, fmt.Errorf("expected payment for loan %s: %w", l.ID, err)
	}
	if out := l.Outstanding(); pmt > out {
		return out, nil
	}
	return pmt, nil
}

// AllocatePayment applies one customer's payment for a period inside a single
// transaction. penaltyRate is a snapshot taken by the caller so every row of
// a batch uses the same rate.
func (a *Allocator) AllocatePayment(ctx context.Context, customerID uuid.UUID, amount int64, period shared.Period, penaltyRate float64) (*Result, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	var result *Result
	err := a.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		result, txErr = a.AllocateInTx(ctx, tx, customerID, amount, period, penaltyRate)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllocateInTx is the transactional core of AllocatePayment, exposed so
// callers can compose it with their own writes (liquidation approval commits
// atomically with the allocation it triggers).
func (a *Allocator) AllocateInTx(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, amount int64, period shared.Period, penaltyRate float64) (*Result, error) {
	loansTx := a.loans.WithTx(tx)
	repaymentsTx := a.repayments.WithTx(tx)
	customersTx := a.customers.WithTx(tx)
	settingsTx := a.settings.WithTx(tx)

	open, err := loansTx.ListOutstandingByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := &Result{Received: amount}
	remaining := amount

	for _, l := range open {
		if remaining <= 0 {
			break
		}

		entry, err := a.periodEntry(ctx, repaymentsTx, l, period)
		if err != nil {
			return nil, err
		}
		if entry.IsTerminal() {
			// Already settled by an earlier row of this run.
			continue
		}

		expected := entry.AmountExpected
		repaid := remaining
		if repaid > expected {
			repaid = expected
		}

		penalty := shortfallPenalty(expected, repaid, penaltyRate)

		if err := a.applyToLoan(ctx, loansTx, settingsTx, l, repaid, penalty); err != nil {
			return nil, err
		}

		entry.Fulfill(repaid, repaid, penalty)
		if err := repaymentsTx.Update(ctx, entry); err != nil {
			return nil, err
		}

		remaining -= repaid
		result.Allocated += repaid
		result.Expected += expected
		result.Penalty += penalty
		result.Loans++
	}

	// Whatever did not match an obligation is never dropped: it becomes a
	// manual-resolution row for an operator.
	if remaining > 0 {
		note := fmt.Sprintf("payment exceeds outstanding obligations by %d for period %s", remaining, period.Label)
		overflow := repayment.NewManualResolution(&customerID, period, remaining, note)
		if err := repaymentsTx.Create(ctx, overflow); err != nil {
			return nil, err
		}
		result.Leftover = remaining

		a.logger.Warn("Payment overflow filed for manual resolution",
			"customer_id", customerID.String(),
			"period", period.Label,
			"leftover", remaining,
		)
	}

	if result.Expected > 0 {
		rate := int(decimal.NewFromInt(result.Allocated).
			Div(decimal.NewFromInt(result.Expected)).
			Mul(decimal.NewFromInt(100)).
			Round(0).IntPart())
		if err := customersTx.UpdateRepaymentRate(ctx, customerID, rate); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// AllocateOverflow resolves a MANUAL_RESOLUTION ledger row onto a specific
// loan. The row's recorded amount is allocated against the loan's expected
// payment for the row's period; any remainder is filed as a fresh
// manual-resolution row so money is conserved.
func (a *Allocator) AllocateOverflow(ctx context.Context, entryID, loanID uuid.UUID, note string) (*Result, error) {
	var result *Result
	err := a.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loansTx := a.loans.WithTx(tx)
		repaymentsTx := a.repayments.WithTx(tx)
		settingsTx := a.settings.WithTx(tx)

		entry, err := repaymentsTx.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != shared.RepaymentStatusManualResolution {
			return ErrNotUnresolved
		}

		l, err := loansTx.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status != shared.LoanStatusDisbursed {
			return loan.ErrNotDisbursed
		}

		penaltyRate, err := settingsTx.Rate(ctx, settings.KeyPenaltyRate)
		if err != nil {
			return err
		}

		expected, err := ExpectedPayment(l)
		if err != nil {
			return err
		}

		amount := entry.AmountReceived
		repaid := amount
		if repaid > expected {
			repaid = expected
		}

		penalty := shortfallPenalty(expected, repaid, penaltyRate)

		if err := a.applyToLoan(ctx, loansTx, settingsTx, l, repaid, penalty); err != nil {
			return err
		}

		entry.CustomerID = &l.CustomerID
		entry.LoanID = &l.ID
		entry.AmountExpected = expected
		entry.Note = note
		entry.Fulfill(amount, repaid, penalty)
		if err := repaymentsTx.Update(ctx, entry); err != nil {
			return err
		}

		result = &Result{
			Received:  amount,
			Allocated: repaid,
			Expected:  expected,
			Penalty:   penalty,
			Loans:     1,
		}

		if leftover := amount - repaid; leftover > 0 {
			period := shared.Period{Label: entry.Period, Date: entry.PeriodDate}
			leftoverNote := fmt.Sprintf("leftover after resolving entry %s onto loan %s", entry.ID, l.ID)
			overflow := repayment.NewManualResolution(&l.CustomerID, period, leftover, leftoverNote)
			if err := repaymentsTx.Create(ctx, overflow); err != nil {
				return err
			}
			result.Leftover = leftover
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// periodEntry fetches the loan's ledger row for the period, creating one on
// the fly for out-of-batch paths (liquidation, overflow into a period that
// was never batch-ingested). The unique (loan_id, period) index keeps the
// on-the-fly create idempotent.
func (a *Allocator) periodEntry(ctx context.Context, repaymentsTx repayment.Repository, l *loan.Loan, period shared.Period) (*repayment.Entry, error) {
	entry, err := repaymentsTx.GetByLoanAndPeriod(ctx, l.ID, period.Label)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, repayment.ErrEntryNotFound{}) {
		return nil, err
	}

	expected, err := ExpectedPayment(l)
	if err != nil {
		return nil, err
	}

	entry = repayment.NewAwaiting(l.CustomerID, l.ID, period, expected)
	if _, err := repaymentsTx.CreateAwaitingIfAbsent(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// applyToLoan updates the loan's balances and feeds the revenue counters. The
// counter writes ride the same transaction as the loan update.
func (a *Allocator) applyToLoan(ctx context.Context, loansTx loan.Repository, settingsTx settings.Store, l *loan.Loan, repaid, penalty int64) error {
	l.AccruePenalty(penalty)

	if repaid > 0 {
		if err := l.ApplyRepayment(repaid); err != nil {
			return err
		}
	}

	if err := loansTx.Update(ctx, l); err != nil {
		return err
	}

	if repaid > 0 {
		interest, err := amort.RevenueSplit(repaid, l.Principal, l.AnnualRate, l.EffectiveTenure())
		if err != nil {
			return err
		}
		if err := settingsTx.Accumulate(ctx, settings.KeyTotalRepaid, repaid); err != nil {
			return err
		}
		if err := settingsTx.Accumulate(ctx, settings.KeyInterestRevenue, interest); err != nil {
			return err
		}
	}
	if penalty > 0 {
		if err := settingsTx.Accumulate(ctx, settings.KeyPenaltyRevenue, penalty); err != nil {
			return err
		}
	}

	return nil
}

// shortfallPenalty charges penaltyRate on the unpaid part of the expected
// amount, rounded half away from zero to the nearest minor unit.
func shortfallPenalty(expected, repaid int64, penaltyRate float64) int64 {
	shortfall := expected - repaid
	if shortfall <= 0 || penaltyRate <= 0 {
		return 0
	}
	return decimal.NewFromInt(shortfall).
		Mul(decimal.NewFromFloat(penaltyRate)).
		Round(0).IntPart()
}
