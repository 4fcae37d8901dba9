package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Store defines the platform settings operations: typed reads, replacing
// writes, and atomic counter accumulation.
type Store interface {
	// Get returns the raw stored value, or ErrNotSet.
	Get(ctx context.Context, key Key) (string, error)

	// Amount decodes a monetary counter in minor units; absent keys read as 0.
	Amount(ctx context.Context, key Key) (int64, error)

	// Rate decodes a rate fraction. Absent keys return ErrRateNotConfigured.
	Rate(ctx context.Context, key Key) (float64, error)

	// Bool decodes a flag; absent keys read as false.
	Bool(ctx context.Context, key Key) (bool, error)

	// List decodes a comma-separated list; absent keys read as empty.
	List(ctx context.Context, key Key) ([]string, error)

	// Set replaces the stored value. Last write wins, no history.
	Set(ctx context.Context, key Key, value string) error

	// SetRate stores a whole-number percentage input as a fraction.
	SetRate(ctx context.Context, key Key, percent float64) error

	// Accumulate atomically adds delta (minor units) to a counter, creating
	// it at delta when absent. The addition happens in a single storage-layer
	// statement so concurrent batches cannot lose updates.
	Accumulate(ctx context.Context, key Key, delta int64) error

	WithTx(tx pgx.Tx) Store
}
