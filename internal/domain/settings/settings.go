// Package settings defines the platform's flat key-value store for
// monotonically accumulated revenue counters, mutable rate configuration, and
// operational flags. It is an explicit dependency of the allocator and the
// ingestion pipeline, never ambient state.
package settings

import "errors"

// Key names a stored counter, rate or flag.
type Key string

// Revenue counters, in minor units. Accumulated atomically at the storage
// layer; replaying a batch still double-counts unless the caller guards
// against re-runs.
const (
	KeyTotalDisbursed  Key = "total_disbursed"
	KeyTotalBorrowed   Key = "total_borrowed"
	KeyTotalRepaid     Key = "total_repaid"
	KeyInterestRevenue Key = "interest_revenue"
	KeyPenaltyRevenue  Key = "penalty_revenue"
)

// Rate configuration, stored as fractions (0.1 = 10%).
const (
	KeyInterestRate      Key = "interest_rate"
	KeyPenaltyRate       Key = "penalty_rate"
	KeyManagementFeeRate Key = "management_fee_rate"
)

// Operational keys.
const (
	KeyMaintenanceMode     Key = "maintenance_mode"
	KeyLastProcessedPeriod Key = "last_processed_period"
)

var (
	// ErrNotSet is the sentinel for a key that has never been written.
	ErrNotSet = errors.New("setting has never been set")

	// ErrRateNotConfigured signals an internal configuration error: an
	// operation depending on a rate (e.g. loan approval) ran before the rate
	// was configured.
	ErrRateNotConfigured = errors.New("required rate is not configured")
)

// ErrInvalidValue indicates a stored value that fails its typed decode
type ErrInvalidValue struct {
	Key   Key
	Value string
}

func (e ErrInvalidValue) Error() string {
	return "invalid value for setting " + string(e.Key) + ": " + e.Value
}
