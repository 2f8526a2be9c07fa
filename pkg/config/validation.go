package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateShops(cfg.Shops); err != nil {
		return fmt.Errorf("shops config: %w", err)
	}

	if err := validateQueryConfig(&cfg.Query); err != nil {
		return fmt.Errorf("query config: %w", err)
	}

	if err := validateMetricsConfig(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateShops(shops []string) error {
	if len(shops) == 0 {
		return ErrNoShopsConfigured
	}

	seen := make(map[string]struct{}, len(shops))
	for _, name := range shops {
		// The price generator seed uses the first three characters of the name
		if len(name) < 3 {
			return fmt.Errorf("%w: %q", ErrShopNameTooShort, name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateShop, name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

func validateQueryConfig(cfg *QueryConfig) error {
	if cfg.PoolCap <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPoolCap, cfg.PoolCap)
	}
	if cfg.Delay.ToDuration() < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDelay, cfg.Delay.ToDuration())
	}
	return nil
}

func validateMetricsConfig(cfg *MetricsConfig) error {
	if cfg.Enabled && cfg.Addr == "" {
		return ErrMetricsAddrRequired
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	level := strings.ToLower(cfg.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, cfg.Level)
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
