package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/deducta-loan-ledger/internal/batch_processor/service"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

// SweeperImpl fails the ledger rows still AWAITING once all sheet rows are
// processed: the loan received no payment this period, so it is charged the
// full-shortfall penalty and its tenure is pushed out by one month.
type SweeperImpl struct {
	db         *persistence.PostgresDB
	loans      loan.Repository
	repayments repayment.Repository
	settings   settings.Store
	batchSize  int
	logger     *slog.Logger
}

func NewSweeper(
	db *persistence.PostgresDB,
	loans loan.Repository,
	repayments repayment.Repository,
	settingsStore settings.Store,
	batchSize int,
	logger *slog.Logger,
) *SweeperImpl {
	return &SweeperImpl{
		db:         db,
		loans:      loans,
		repayments: repayments,
		settings:   settingsStore,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Sweep pages through the period's leftover AWAITING rows in bounded batches,
// each page in its own transaction. Failed rows leave the AWAITING status, so
// each round trip naturally fetches the next page.
func (s *SweeperImpl) Sweep(ctx context.Context, period shared.Period, penaltyRate float64) (*service.SweepResult, error) {
	total := &service.SweepResult{}
	for {
		var page *service.SweepResult
		err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			var txErr error
			page, txErr = s.SweepPage(ctx, tx, period, s.batchSize, penaltyRate)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		if page.RowsFailed == 0 {
			break
		}
		total.RowsFailed += page.RowsFailed
		total.PenaltyAccrued += page.PenaltyAccrued
	}

	if total.RowsFailed > 0 {
		s.logger.Info("Swept unmatched awaiting rows",
			"period", period.Label,
			"rows_failed", total.RowsFailed,
			"penalty_accrued", total.PenaltyAccrued,
		)
	}
	return total, nil
}

// SweepPage fails up to limit AWAITING rows for the period inside the given
// transaction.
func (s *SweeperImpl) SweepPage(ctx context.Context, tx pgx.Tx, period shared.Period, limit int, penaltyRate float64) (*service.SweepResult, error) {
	loansTx := s.loans.WithTx(tx)
	repaymentsTx := s.repayments.WithTx(tx)
	settingsTx := s.settings.WithTx(tx)

	entries, err := repaymentsTx.ListAwaitingByPeriod(ctx, period.Label, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list awaiting rows for %s: %w", period.Label, err)
	}

	result := &service.SweepResult{}

	for _, entry := range entries {
		penalty := missedPaymentPenalty(entry.AmountExpected, penaltyRate)
		note := fmt.Sprintf("no payment received for period %s", period.Label)

		if entry.LoanID != nil {
			l, err := loansTx.GetByID(ctx, *entry.LoanID)
			if err != nil {
				return nil, fmt.Errorf("failed to load loan %s for sweep: %w", *entry.LoanID, err)
			}
			if idx := l.PeriodIndex(period); idx > 0 {
				note = fmt.Sprintf("no payment received for period %s (installment %d of %d)",
					period.Label, idx, l.EffectiveTenure())
			}
			l.AccruePenalty(penalty)
			// The missed payment is rescheduled, not lost.
			l.ExtendTenure()
			if err := loansTx.Update(ctx, l); err != nil {
				return nil, fmt.Errorf("failed to update loan %s during sweep: %w", l.ID, err)
			}
		} else {
			penalty = 0
		}

		entry.Fail(penalty, note)
		if err := repaymentsTx.Update(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to fail awaiting row %s: %w", entry.ID, err)
		}

		if penalty > 0 {
			if err := settingsTx.Accumulate(ctx, settings.KeyPenaltyRevenue, penalty); err != nil {
				return nil, fmt.Errorf("failed to accumulate penalty revenue: %w", err)
			}
		}

		result.RowsFailed++
		result.PenaltyAccrued += penalty
	}
	return result, nil
}

// missedPaymentPenalty charges the full expected amount as the shortfall,
// rounded half away from zero to whole minor units.
func missedPaymentPenalty(expected int64, penaltyRate float64) int64 {
	return decimal.NewFromInt(expected).
		Mul(decimal.NewFromFloat(penaltyRate)).
		Round(0).
		IntPart()
}
