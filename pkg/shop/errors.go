// Package shop provides price-providing shops and their query contracts.
package shop

import "errors"

var (
	// ErrNameTooShort indicates that the shop name cannot seed the price generator.
	ErrNameTooShort = errors.New("shop name must be at least 3 characters")
	// ErrProductTooShort indicates that the product name is too short to price.
	ErrProductTooShort = errors.New("product name must be at least 2 characters")
)
