package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"tc.com/best-prices/pkg/logging"
	"tc.com/best-prices/pkg/metrics"
)

// Currency is an ISO-style currency code with a fixed USD multiplier.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
	MXN Currency = "MXN"
)

// multipliers maps each currency to its fixed value against the reference.
var multipliers = map[Currency]decimal.Decimal{
	USD: decimal.NewFromFloat(1.0),
	EUR: decimal.NewFromFloat(1.35387),
	GBP: decimal.NewFromFloat(1.69715),
	CAD: decimal.NewFromFloat(0.92189),
	MXN: decimal.NewFromFloat(0.07810),
}

// DefaultDelay is the simulated per-lookup latency when none is configured.
const DefaultDelay = 1 * time.Second

// Service resolves exchange rates. Implementations must be safe for
// concurrent use; rates are always positive for known currencies.
type Service interface {
	// Rate returns the multiplier that converts an amount in from-currency
	// into to-currency.
	Rate(ctx context.Context, from, to Currency) (decimal.Decimal, error)
}

// service computes rates from the fixed multiplier table with an artificial
// delay. Concurrent lookups of the same pair share a single computation.
type service struct {
	delay  time.Duration
	group  singleflight.Group
	logger *logging.Logger
}

// Ensure service implements Service interface.
var _ Service = (*service)(nil)

// Option configures the service.
type Option func(*service)

// WithDelay sets the simulated lookup latency.
func WithDelay(d time.Duration) Option {
	return func(s *service) {
		s.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates the default exchange rate service.
func New(opts ...Option) Service {
	s := &service{
		delay:  DefaultDelay,
		logger: logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate looks up the from→to multiplier. The in-flight computation for a pair
// is shared across concurrent callers; each caller still honors its own
// context at the wait.
func (s *service) Rate(ctx context.Context, from, to Currency) (decimal.Decimal, error) {
	key := string(from) + "/" + string(to)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.compute(from, to)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		rate := res.Val.(decimal.Decimal)
		s.logger.Debug("Resolved exchange rate",
			"from", string(from), "to", string(to), "rate", rate.String(), "shared", res.Shared)
		return rate, nil
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
}

func (s *service) compute(from, to Currency) (decimal.Decimal, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	fromMul, ok := multipliers[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toMul, ok := multipliers[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	metrics.RecordRateLookup(string(from), string(to))
	return toMul.Div(fromMul), nil
}

// Static returns a Service that always resolves to the given rate with no
// delay. Intended for tests and for disabling conversion (rate 1.0).
func Static(rate decimal.Decimal) Service {
	return staticService{rate: rate}
}

type staticService struct {
	rate decimal.Decimal
}

func (s staticService) Rate(_ context.Context, _, _ Currency) (decimal.Decimal, error) {
	return s.rate, nil
}
