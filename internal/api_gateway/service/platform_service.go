package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/deducta-loan-ledger/internal/domain/settings"
)

// ErrUnknownRateKey indicates a rate update for a key that is not one of the
// configurable rates.
var ErrUnknownRateKey = errors.New("unknown rate key")

var configurableRates = map[string]settings.Key{
	"interest_rate":       settings.KeyInterestRate,
	"penalty_rate":        settings.KeyPenaltyRate,
	"management_fee_rate": settings.KeyManagementFeeRate,
}

// PlatformServiceImpl implements the PlatformService interface
type PlatformServiceImpl struct {
	settings settings.Store
	logger   *slog.Logger
}

// NewPlatformService creates a new platform service
func NewPlatformService(logger *slog.Logger, settingsStore settings.Store) PlatformService {
	return &PlatformServiceImpl{
		settings: settingsStore,
		logger:   logger,
	}
}

// Overview assembles the admin snapshot of accumulated counters, configured
// rates and platform flags. Unset counters read as zero and unconfigured
// rates read as zero so a fresh deployment still renders.
func (s *PlatformServiceImpl) Overview(ctx context.Context) (*PlatformOverview, error) {
	o := &PlatformOverview{}

	amounts := []struct {
		key  settings.Key
		dest *int64
	}{
		{settings.KeyTotalDisbursed, &o.TotalDisbursed},
		{settings.KeyTotalBorrowed, &o.TotalBorrowed},
		{settings.KeyTotalRepaid, &o.TotalRepaid},
		{settings.KeyInterestRevenue, &o.InterestRevenue},
		{settings.KeyPenaltyRevenue, &o.PenaltyRevenue},
	}
	for _, a := range amounts {
		v, err := s.settings.Amount(ctx, a.key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", a.key, err)
		}
		*a.dest = v
	}

	rates := []struct {
		key  settings.Key
		dest *float64
	}{
		{settings.KeyInterestRate, &o.InterestRate},
		{settings.KeyPenaltyRate, &o.PenaltyRate},
		{settings.KeyManagementFeeRate, &o.ManagementFeeRate},
	}
	for _, r := range rates {
		v, err := s.settings.Rate(ctx, r.key)
		if err != nil {
			if errors.Is(err, settings.ErrRateNotConfigured) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
		}
		*r.dest = v
	}

	maintenance, err := s.settings.Bool(ctx, settings.KeyMaintenanceMode)
	if err != nil {
		return nil, fmt.Errorf("failed to read maintenance mode: %w", err)
	}
	o.MaintenanceMode = maintenance

	last, err := s.settings.Get(ctx, settings.KeyLastProcessedPeriod)
	if err != nil && !errors.Is(err, settings.ErrNotSet) {
		return nil, fmt.Errorf("failed to read last processed period: %w", err)
	}
	o.LastProcessedPeriod = last

	return o, nil
}

// SetRate stores a whole-number percentage under one of the configurable
// rate keys
func (s *PlatformServiceImpl) SetRate(ctx context.Context, key string, percent float64) error {
	settingKey, ok := configurableRates[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRateKey, key)
	}

	if err := s.settings.SetRate(ctx, settingKey, percent); err != nil {
		return err
	}

	s.logger.Info("Platform rate updated", "key", key, "percent", percent)
	return nil
}

// SetMaintenanceMode toggles the platform-wide read-only flag
func (s *PlatformServiceImpl) SetMaintenanceMode(ctx context.Context, enabled bool) error {
	if err := s.settings.Set(ctx, settings.KeyMaintenanceMode, strconv.FormatBool(enabled)); err != nil {
		return err
	}

	s.logger.Info("Maintenance mode changed", "enabled", enabled)
	return nil
}
