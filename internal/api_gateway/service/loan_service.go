package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deducta-loan-ledger/internal/amort"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

// LoanServiceImpl implements the LoanService interface
type LoanServiceImpl struct {
	db           *persistence.PostgresDB
	loanRepo     loan.Repository
	customerRepo customer.Repository
	settings     settings.Store
	logger       *slog.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	loanRepo loan.Repository,
	customerRepo customer.Repository,
	settingsStore settings.Store,
) LoanService {
	return &LoanServiceImpl{
		db:           db,
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		settings:     settingsStore,
		logger:       logger,
	}
}

// CreateLoan opens a PENDING loan for an existing customer
func (s *LoanServiceImpl) CreateLoan(ctx context.Context, customerID uuid.UUID) (*loan.Loan, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	l := loan.New(customerID)
	if err := s.loanRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan created", "loan_id", l.ID, "customer_id", customerID)
	return l, nil
}

// GetLoanByID retrieves a loan, returns ErrLoanNotFound if missing
func (s *LoanServiceImpl) GetLoanByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	return s.loanRepo.GetByID(ctx, id)
}

// SetTerms fixes principal and tenure at the platform interest rate current
// at this moment. The rate is frozen into the loan so later rate changes do
// not reprice existing loans.
func (s *LoanServiceImpl) SetTerms(ctx context.Context, loanID uuid.UUID, principal int64, tenureMonths int) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rate, err := s.settings.Rate(ctx, settings.KeyInterestRate)
	if err != nil {
		return nil, fmt.Errorf("cannot fix loan terms: %w", err)
	}

	if err := l.SetTerms(principal, rate, tenureMonths); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan terms set",
		"loan_id", l.ID,
		"principal", principal,
		"annual_rate", rate,
		"tenure_months", tenureMonths,
	)
	return l, nil
}

// ApproveLoan moves a loan with fixed terms to APPROVED
func (s *LoanServiceImpl) ApproveLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := l.Approve(); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan approved", "loan_id", l.ID)
	return l, nil
}

// RejectLoan declines a loan before disbursement
func (s *LoanServiceImpl) RejectLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := l.Reject(); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan rejected", "loan_id", l.ID)
	return l, nil
}

// DisburseLoan computes the repayable total from the fixed terms and pays the
// loan out. The loan update and the platform disbursement counters commit in
// one transaction.
func (s *LoanServiceImpl) DisburseLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	repayable, err := amort.TotalPayment(l.Principal, l.AnnualRate, l.TenureMonths)
	if err != nil {
		return nil, fmt.Errorf("cannot compute repayable for loan %s: %w", l.ID, err)
	}

	if err := l.Disburse(repayable, time.Now()); err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loansTx := s.loanRepo.WithTx(tx)
		settingsTx := s.settings.WithTx(tx)

		if err := loansTx.Update(ctx, l); err != nil {
			return err
		}
		if err := settingsTx.Accumulate(ctx, settings.KeyTotalDisbursed, l.Principal); err != nil {
			return err
		}
		return settingsTx.Accumulate(ctx, settings.KeyTotalBorrowed, l.Principal)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan disbursed",
		"loan_id", l.ID,
		"principal", l.Principal,
		"repayable", repayable,
	)
	return l, nil
}
