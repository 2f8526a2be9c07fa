// Package config provides configuration loading and validation for best-prices.
package config

import "errors"

var (
	// ErrNoShopsConfigured indicates that no shops are configured.
	ErrNoShopsConfigured = errors.New("at least one shop must be configured")
	// ErrDuplicateShop indicates that a shop name appears more than once.
	ErrDuplicateShop = errors.New("duplicate shop name")
	// ErrShopNameTooShort indicates that a shop name is too short to seed its price generator.
	ErrShopNameTooShort = errors.New("shop name must be at least 3 characters")
	// ErrInvalidPoolCap indicates that pool_cap is not positive.
	ErrInvalidPoolCap = errors.New("pool_cap must be positive")
	// ErrNegativeDelay indicates that the query delay is negative.
	ErrNegativeDelay = errors.New("query delay must not be negative")
	// ErrInvalidLogLevel indicates an invalid log level.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates an invalid log format.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrMetricsAddrRequired indicates that metrics addr must be set when metrics are enabled.
	ErrMetricsAddrRequired = errors.New("metrics addr must be specified when metrics are enabled")
)
