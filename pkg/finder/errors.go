// Package finder aggregates shop prices using several scheduling strategies.
package finder

import "errors"

var (
	// ErrNoShops indicates that the finder was built without shops.
	ErrNoShops = errors.New("at least one shop is required")
	// ErrFinderClosed indicates that the finder's pool has been closed.
	ErrFinderClosed = errors.New("finder closed")
)
