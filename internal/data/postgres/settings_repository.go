package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the settings.Store interface for PostgreSQL.
// Values live in a flat key-value table; counters are accumulated inside a
// single UPDATE expression so concurrent batches never lose increments.
type SettingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSettingsRepository creates a new PostgreSQL platform settings store
func NewSettingsRepository(logger *slog.Logger, db *persistence.PostgresDB) settings.Store {
	return &SettingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the store with a transaction so counter accumulation commits
// atomically with the loan and ledger writes that produced it.
func (r *SettingsRepository) WithTx(tx pgx.Tx) settings.Store {
	return &SettingsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Get returns the raw stored value, or settings.ErrNotSet
func (r *SettingsRepository) Get(ctx context.Context, key settings.Key) (string, error) {
	query := `
		SELECT value
		FROM platform_settings
		WHERE key = $1
	`

	var value string
	err := r.querier.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", settings.ErrNotSet
		}
		r.logger.Error("Failed to get setting", "key", key, "error", err)
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return value, nil
}

// Amount decodes a monetary counter in minor units; absent keys read as 0
func (r *SettingsRepository) Amount(ctx context.Context, key settings.Key) (int64, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, settings.ErrNotSet) {
			return 0, nil
		}
		return 0, err
	}

	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, settings.ErrInvalidValue{Key: key, Value: raw}
	}

	return amount, nil
}

// Rate decodes a rate fraction. Absent keys return ErrRateNotConfigured: an
// operation that needs a rate cannot proceed with a silent zero.
func (r *SettingsRepository) Rate(ctx context.Context, key settings.Key) (float64, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, settings.ErrNotSet) {
			return 0, settings.ErrRateNotConfigured
		}
		return 0, err
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, settings.ErrInvalidValue{Key: key, Value: raw}
	}

	return rate, nil
}

// Bool decodes a flag; absent keys read as false
func (r *SettingsRepository) Bool(ctx context.Context, key settings.Key) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, settings.ErrNotSet) {
			return false, nil
		}
		return false, err
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, settings.ErrInvalidValue{Key: key, Value: raw}
	}

	return value, nil
}

// List decodes a comma-separated list; absent keys read as empty
func (r *SettingsRepository) List(ctx context.Context, key settings.Key) ([]string, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, settings.ErrNotSet) {
			return nil, nil
		}
		return nil, err
	}

	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items, nil
}

// Set replaces the stored value. Last write wins, no history is kept.
func (r *SettingsRepository) Set(ctx context.Context, key settings.Key, value string) error {
	query := `
		INSERT INTO platform_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier.Exec(ctx, query, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to set setting", "key", key, "error", err)
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}

// SetRate stores a whole-number percentage input as a fraction
func (r *SettingsRepository) SetRate(ctx context.Context, key settings.Key, percent float64) error {
	if percent < 0 {
		return settings.ErrInvalidValue{Key: key, Value: strconv.FormatFloat(percent, 'f', -1, 64)}
	}
	return r.Set(ctx, key, strconv.FormatFloat(percent/100, 'f', -1, 64))
}

// Accumulate atomically adds delta (minor units) to a counter, creating it at
// delta when absent. The arithmetic happens inside the statement, so
// concurrent batch transactions serialize on the row instead of clobbering
// each other's read-modify-write.
func (r *SettingsRepository) Accumulate(ctx context.Context, key settings.Key, delta int64) error {
	query := `
		INSERT INTO platform_settings (key, value, updated_at)
		VALUES ($1, $2::text, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = ((platform_settings.value)::numeric + $2)::text, updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier.Exec(ctx, query, key, delta, time.Now())
	if err != nil {
		r.logger.Error("Failed to accumulate setting", "key", key, "delta", delta, "error", err)
		return fmt.Errorf("failed to accumulate setting: %w", err)
	}

	return nil
}
