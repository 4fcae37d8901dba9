package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyFullName = errors.New("full name cannot be empty")
	ErrEmptyStaffID  = errors.New("staff ID cannot be empty")
)

// PayrollAttributes are passthrough fields from the payroll deduction sheet,
// persisted on the customer record for risk scoring and reporting.
type PayrollAttributes struct {
	Grade    string `json:"grade,omitempty"`
	Step     string `json:"step,omitempty"`
	Command  string `json:"command,omitempty"`
	GrossPay int64  `json:"gross_pay,omitempty"`
	NetPay   int64  `json:"net_pay,omitempty"`
}

// Customer represents a borrower identified externally by a payroll staff ID.
type Customer struct {
	ID       uuid.UUID         `json:"id"`
	FullName string            `json:"full_name"`
	StaffID  string            `json:"staff_id"`
	Email    string            `json:"email"`
	Payroll  PayrollAttributes `json:"payroll"`
	// RepaymentRate is the percentage of expected payments actually received
	// in the customer's most recent batch, rounded to an integer.
	RepaymentRate int       `json:"repayment_rate"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New creates a customer keyed by a payroll staff ID.
func New(fullName, staffID, email string) (*Customer, error) {
	if fullName == "" {
		return nil, ErrEmptyFullName
	}
	if staffID == "" {
		return nil, ErrEmptyStaffID
	}

	now := time.Now()
	return &Customer{
		ID:        uuid.New(),
		FullName:  fullName,
		StaffID:   staffID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
