// Package components holds the collaborators the batch ingestion service is
// assembled from: pre-creation of expected-payment rows, per-row allocation,
// the end-of-batch sweep and report archival.
package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/spreadsheet"
)

// PaymentAllocator is the slice of the allocator the row processor needs.
type PaymentAllocator interface {
	AllocatePayment(ctx context.Context, customerID uuid.UUID, amount int64, period shared.Period, penaltyRate float64) (*allocation.Result, error)
}

// RowAllocatorImpl resolves each deduction sheet row to a customer and
// applies its payment.
type RowAllocatorImpl struct {
	customers  customer.Repository
	repayments repayment.Repository
	allocator  PaymentAllocator
	logger     *slog.Logger
}

func NewRowAllocator(
	customers customer.Repository,
	repayments repayment.Repository,
	allocator PaymentAllocator,
	logger *slog.Logger,
) *RowAllocatorImpl {
	return &RowAllocatorImpl{
		customers:  customers,
		repayments: repayments,
		allocator:  allocator,
		logger:     logger,
	}
}

// ProcessRow applies one sheet row. A staff ID with no payroll mapping files
// a manual-resolution ledger row carrying the raw amount and continues the
// batch; only persistence failures propagate.
func (r *RowAllocatorImpl) ProcessRow(ctx context.Context, row spreadsheet.Row, period shared.Period, penaltyRate float64) (*allocation.Result, error) {
	c, err := r.customers.GetByStaffID(ctx, row.StaffID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staff ID %s: %w", row.StaffID, err)
	}

	if c == nil {
		note := fmt.Sprintf("no payroll mapping for staff ID %s in period %s", row.StaffID, period.Label)
		entry := repayment.NewManualResolution(nil, period, row.Amount, note)
		if err := r.repayments.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to file manual resolution for staff ID %s: %w", row.StaffID, err)
		}
		r.logger.Warn("Unmatched staff ID filed for manual resolution",
			"staff_id", row.StaffID,
			"period", period.Label,
			"amount", row.Amount,
			"entry_id", entry.ID,
		)
		return &allocation.Result{Received: row.Amount, Leftover: row.Amount}, nil
	}

	attrs := customer.PayrollAttributes{
		Grade:    row.Grade,
		Step:     row.Step,
		Command:  row.Command,
		GrossPay: row.GrossPay,
		NetPay:   row.NetPay,
	}
	if err := r.customers.UpdatePayrollAttributes(ctx, c.ID, attrs); err != nil {
		return nil, fmt.Errorf("failed to update payroll attributes for customer %s: %w", c.ID, err)
	}

	result, err := r.allocator.AllocatePayment(ctx, c.ID, row.Amount, period, penaltyRate)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate payment for customer %s: %w", c.ID, err)
	}
	return result, nil
}
