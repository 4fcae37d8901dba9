package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
)

// CustomerServiceImpl implements the CustomerService interface
type CustomerServiceImpl struct {
	customerRepo customer.Repository
	loanRepo     loan.Repository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo customer.Repository, loanRepo loan.Repository) CustomerService {
	return &CustomerServiceImpl{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
	}
}

// CreateCustomer registers a borrower, rejecting duplicate staff IDs
func (s *CustomerServiceImpl) CreateCustomer(ctx context.Context, fullName, staffID, email string) (*customer.Customer, error) {
	existing, err := s.customerRepo.GetByStaffID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, customer.ErrDuplicateStaffID{StaffID: staffID}
	}

	c, err := customer.New(fullName, staffID, email)
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// GetCustomerByID retrieves a customer, returns ErrCustomerNotFound if missing
func (s *CustomerServiceImpl) GetCustomerByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// ListOutstandingLoans returns the customer's disbursed loans in allocation order
func (s *CustomerServiceImpl) ListOutstandingLoans(ctx context.Context, customerID uuid.UUID) ([]*loan.Loan, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListOutstandingByCustomer(ctx, customerID)
}
