package amort

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPayment(t *testing.T) {
	t.Run("matches closed-form annuity value", func(t *testing.T) {
		// principal 100,000.00 at 10% over 12 months
		principal := int64(10_000_000)
		rate := 0.1
		tenure := 12

		got, err := MonthlyPayment(principal, rate, tenure)
		require.NoError(t, err)

		r := rate / 12
		want := float64(principal) * r / (1 - math.Pow(1+r, -float64(tenure)))
		assert.InDelta(t, want, float64(got), 0.5) // within half a cent of the exact value

		// annuity payment always exceeds the even split and is below
		// principal*(1+r)/n-style naive figures
		assert.Greater(t, got, principal/int64(tenure))
	})

	t.Run("zero rate splits evenly", func(t *testing.T) {
		got, err := MonthlyPayment(1_200_000, 0, 12)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), got)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := MonthlyPayment(10_000, 0.1, 0)
		assert.ErrorIs(t, err, ErrInvalidTenure)

		_, err = MonthlyPayment(0, 0.1, 12)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = MonthlyPayment(10_000, -0.1, 12)
		assert.ErrorIs(t, err, ErrNegativeRate)
	})
}

func TestInterestForMonth(t *testing.T) {
	principal := int64(10_000_000)
	rate := 0.1
	tenure := 12

	t.Run("first month interest is principal times monthly rate", func(t *testing.T) {
		got, err := InterestForMonth(principal, rate, tenure, 1)
		require.NoError(t, err)
		assert.InDelta(t, float64(principal)*rate/12, float64(got), 0.5)
	})

	t.Run("interest decreases month over month", func(t *testing.T) {
		prev := int64(math.MaxInt64)
		for m := 1; m <= tenure; m++ {
			got, err := InterestForMonth(principal, rate, tenure, m)
			require.NoError(t, err)
			assert.Less(t, got, prev, "month %d", m)
			assert.GreaterOrEqual(t, got, int64(0), "month %d", m)
			prev = got
		}
	})

	t.Run("total interest reconciles with total payment", func(t *testing.T) {
		pay, err := MonthlyPayment(principal, rate, tenure)
		require.NoError(t, err)

		var totalInterest int64
		for m := 1; m <= tenure; m++ {
			i, err := InterestForMonth(principal, rate, tenure, m)
			require.NoError(t, err)
			totalInterest += i
		}

		// sum(interest) == pmt*n - principal within per-period rounding
		assert.InDelta(t, float64(pay*int64(tenure)-principal), float64(totalInterest), 2*float64(tenure))
	})

	t.Run("zero rate accrues nothing", func(t *testing.T) {
		got, err := InterestForMonth(1_200_000, 0, 12, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("month index out of range", func(t *testing.T) {
		_, err := InterestForMonth(principal, rate, tenure, 0)
		assert.ErrorIs(t, err, ErrInvalidMonth)

		_, err = InterestForMonth(principal, rate, tenure, 13)
		assert.ErrorIs(t, err, ErrInvalidMonth)
	})
}

func TestTotalPayment(t *testing.T) {
	pay, err := MonthlyPayment(10_000_000, 0.1, 12)
	require.NoError(t, err)

	total, err := TotalPayment(10_000_000, 0.1, 12)
	require.NoError(t, err)
	assert.Equal(t, pay*12, total)
}

func TestRevenueSplit(t *testing.T) {
	principal := int64(10_000_000)
	rate := 0.1
	tenure := 12

	t.Run("proportional to overall interest share", func(t *testing.T) {
		total, err := TotalPayment(principal, rate, tenure)
		require.NoError(t, err)

		// paying everything attributes the whole interest margin
		got, err := RevenueSplit(total, principal, rate, tenure)
		require.NoError(t, err)
		assert.InDelta(t, float64(total-principal), float64(got), 10)

		// half the payment attributes half the margin
		half, err := RevenueSplit(total/2, principal, rate, tenure)
		require.NoError(t, err)
		assert.InDelta(t, float64(got)/2, float64(half), 10)
	})

	t.Run("zero rate has no interest portion", func(t *testing.T) {
		got, err := RevenueSplit(100_000, 1_200_000, 0, 12)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("zero payment", func(t *testing.T) {
		got, err := RevenueSplit(0, principal, rate, tenure)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})
}
