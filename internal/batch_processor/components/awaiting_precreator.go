package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// AwaitingPreCreatorImpl inserts the period's AWAITING row for every
// disbursed loan before any payment is matched, so the end-of-batch sweep can
// fail the rows no payment reached without diffing against the sheet.
type AwaitingPreCreatorImpl struct {
	loans      loan.Repository
	repayments repayment.Repository
	logger     *slog.Logger
}

func NewAwaitingPreCreator(
	loans loan.Repository,
	repayments repayment.Repository,
	logger *slog.Logger,
) *AwaitingPreCreatorImpl {
	return &AwaitingPreCreatorImpl{
		loans:      loans,
		repayments: repayments,
		logger:     logger,
	}
}

// PreCreate is idempotent: the (loan, period) unique key makes a re-run a
// no-op for rows that already exist.
func (p *AwaitingPreCreatorImpl) PreCreate(ctx context.Context, period shared.Period) (int, error) {
	disbursed, err := p.loans.ListDisbursed(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list disbursed loans: %w", err)
	}

	created := 0
	for _, l := range disbursed {
		expected, err := allocation.ExpectedPayment(l)
		if err != nil {
			return created, err
		}
		if expected == 0 {
			continue
		}

		entry := repayment.NewAwaiting(l.CustomerID, l.ID, period, expected)
		inserted, err := p.repayments.CreateAwaitingIfAbsent(ctx, entry)
		if err != nil {
			return created, fmt.Errorf("failed to pre-create awaiting row for loan %s: %w", l.ID, err)
		}
		if inserted {
			created++
		}
	}
	return created, nil
}
