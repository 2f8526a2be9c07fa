package shop

import (
	"context"
	"time"
)

// DefaultDelay is the simulated per-query latency when none is configured.
const DefaultDelay = 1 * time.Second

// Delayer suspends the calling goroutine to simulate query latency. It must
// be safe for concurrent use. Returning an error aborts the query.
type Delayer func(ctx context.Context) error

// FixedDelay returns a Delayer that sleeps for d, honoring cancellation.
func FixedDelay(d time.Duration) Delayer {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NoDelay is a Delayer that returns immediately. Intended for tests.
func NoDelay(ctx context.Context) error {
	return ctx.Err()
}
