// Package exchange provides currency exchange rate lookups.
package exchange

import "errors"

var (
	// ErrUnknownCurrency indicates that no rate is known for a currency.
	ErrUnknownCurrency = errors.New("unknown currency")
)
