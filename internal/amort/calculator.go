// Package amort implements the amortized-loan math used across the platform:
// monthly payment, per-period interest and revenue split for a loan given
// principal, annual rate and tenure. All functions are pure; amounts enter
// and leave in minor units, rounded to the cent only at the boundary. The
// annuity model is canonical system-wide.
package amort

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTenure = errors.New("tenure must be at least one month")
	ErrNegativeRate  = errors.New("annual rate cannot be negative")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidMonth  = errors.New("month index must be within tenure")
)

// MonthlyPayment computes the fixed annuity payment in minor units.
// With monthly rate r = annualRate/12: payment = P*r / (1 - (1+r)^-n),
// or an even split when r == 0.
func MonthlyPayment(principal int64, annualRate float64, tenureMonths int) (int64, error) {
	pay, err := monthlyPaymentExact(principal, annualRate, tenureMonths)
	if err != nil {
		return 0, err
	}
	return toMinorUnits(pay), nil
}

// InterestForMonth computes the interest accrued in the given 1-based month
// using the closed-form outstanding balance at the start of that month:
// balance = P*(1+r)^k - pmt*((1+r)^k - 1)/r, k = monthIndex-1. Floored at 0
// so floating error near full payoff never yields negative interest.
func InterestForMonth(principal int64, annualRate float64, tenureMonths, monthIndex int) (int64, error) {
	if monthIndex < 1 || monthIndex > tenureMonths {
		return 0, ErrInvalidMonth
	}
	pmt, err := monthlyPaymentExact(principal, annualRate, tenureMonths)
	if err != nil {
		return 0, err
	}

	r := annualRate / 12
	if r == 0 {
		return 0, nil
	}

	p := float64(principal)
	k := float64(monthIndex - 1)
	growth := math.Pow(1+r, k)
	balance := p*growth - pmt*(growth-1)/r

	interest := balance * r
	if interest < 0 {
		interest = 0
	}
	return toMinorUnits(interest), nil
}

// TotalPayment is the total the borrower pays over the full tenure: the
// rounded monthly payment times the number of periods, so the figure quoted
// at disbursement matches the sum of the quoted installments.
func TotalPayment(principal int64, annualRate float64, tenureMonths int) (int64, error) {
	pay, err := MonthlyPayment(principal, annualRate, tenureMonths)
	if err != nil {
		return 0, err
	}
	return pay * int64(tenureMonths), nil
}

// RevenueSplit returns the portion of amountPaid attributable to interest,
// apportioned by the loan's overall interest-to-payable ratio:
// amountPaid * totalInterest / totalPayable.
func RevenueSplit(amountPaid, principal int64, annualRate float64, tenureMonths int) (int64, error) {
	if amountPaid < 0 {
		return 0, ErrInvalidAmount
	}
	if amountPaid == 0 {
		return 0, nil
	}
	pmt, err := monthlyPaymentExact(principal, annualRate, tenureMonths)
	if err != nil {
		return 0, err
	}

	totalPayable := pmt * float64(tenureMonths)
	totalInterest := totalPayable - float64(principal)
	if totalInterest <= 0 {
		return 0, nil
	}

	return toMinorUnits(float64(amountPaid) * totalInterest / totalPayable), nil
}

// monthlyPaymentExact keeps the unrounded payment for intermediate
// accumulation; rounding only happens on quoted amounts.
func monthlyPaymentExact(principal int64, annualRate float64, tenureMonths int) (float64, error) {
	if principal <= 0 {
		return 0, ErrInvalidAmount
	}
	if tenureMonths <= 0 {
		return 0, ErrInvalidTenure
	}
	if annualRate < 0 {
		return 0, ErrNegativeRate
	}

	p := float64(principal)
	n := float64(tenureMonths)
	r := annualRate / 12
	if r == 0 {
		return p / n, nil
	}
	return p * r / (1 - math.Pow(1+r, -n)), nil
}

// toMinorUnits rounds a minor-unit quantity half away from zero to a whole
// cent, matching how amounts are quoted to customers.
func toMinorUnits(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}
