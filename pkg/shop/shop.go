package shop

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/best-prices/pkg/future"
	"tc.com/best-prices/pkg/logging"
	"tc.com/best-prices/pkg/metrics"
)

// Shop is a price-providing source. Quote blocks the calling goroutine for
// the simulated latency; QuoteAsync returns a handle without blocking.
type Shop interface {
	// Name returns the unique name of this shop.
	Name() string

	// Quote returns the deterministic price of the product at this shop.
	Quote(ctx context.Context, product string) (decimal.Decimal, error)

	// QuoteAsync starts the same computation without blocking the caller.
	// A failure inside the computation is delivered to the awaiter.
	QuoteAsync(ctx context.Context, product string) *future.Future[decimal.Decimal]
}

// localShop synthesizes prices from a generator seeded by its name, so the
// (name, product) pair maps to the same price for the life of the process.
type localShop struct {
	name     string
	seed     int64
	delay    Delayer
	executor future.Executor
	logger   *logging.Logger
}

// Ensure localShop implements Shop interface.
var _ Shop = (*localShop)(nil)

// Option configures a shop.
type Option func(*localShop)

// WithDelay sets a fixed simulated query latency.
func WithDelay(d time.Duration) Option {
	return func(s *localShop) {
		s.delay = FixedDelay(d)
	}
}

// WithDelayer sets the delay generator directly.
func WithDelayer(d Delayer) Option {
	return func(s *localShop) {
		s.delay = d
	}
}

// WithExecutor sets the executor QuoteAsync submits its computation to.
// Defaults to one goroutine per call.
func WithExecutor(ex future.Executor) Option {
	return func(s *localShop) {
		s.executor = ex
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *localShop) {
		s.logger = logger
	}
}

// New creates a shop. The name must be at least 3 characters, matching the
// seed derivation below.
func New(name string, opts ...Option) (Shop, error) {
	if len(name) < 3 {
		return nil, ErrNameTooShort
	}

	s := &localShop{
		name:     name,
		seed:     int64(name[0]) * int64(name[1]) * int64(name[2]),
		delay:    FixedDelay(DefaultDelay),
		executor: future.GoExecutor{},
		logger:   logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustNew creates a shop and panics on error. Intended for fixed catalogs.
func MustNew(name string, opts ...Option) Shop {
	s, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the shop name.
func (s *localShop) Name() string {
	return s.name
}

// Quote computes the price after the simulated latency elapses.
func (s *localShop) Quote(ctx context.Context, product string) (decimal.Decimal, error) {
	start := time.Now()

	if err := s.delay(ctx); err != nil {
		return decimal.Zero, err
	}

	price, err := s.price(product)
	if err != nil {
		return decimal.Zero, err
	}

	metrics.RecordShopQuery(s.name, time.Since(start))
	s.logger.Debug("Quoted price", "shop", s.name, "product", product, "price", price.String())
	return price, nil
}

// QuoteAsync runs Quote on the configured executor and returns its handle.
func (s *localShop) QuoteAsync(ctx context.Context, product string) *future.Future[decimal.Decimal] {
	return future.Supply(s.executor, func() (decimal.Decimal, error) {
		return s.Quote(ctx, product)
	})
}

// price is a pure function of (shop name, product). A fresh generator is
// seeded per call, so repeated queries and concurrent strategies all observe
// the same value.
func (s *localShop) price(product string) (decimal.Decimal, error) {
	if len(product) < 2 {
		return decimal.Zero, ErrProductTooShort
	}
	rng := rand.New(rand.NewSource(s.seed))
	raw := rng.Float64()*float64(product[0]) + float64(product[1])
	return decimal.NewFromFloat(raw), nil
}
