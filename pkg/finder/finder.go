package finder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"tc.com/best-prices/pkg/exchange"
	"tc.com/best-prices/pkg/future"
	"tc.com/best-prices/pkg/logging"
	"tc.com/best-prices/pkg/metrics"
	"tc.com/best-prices/pkg/shop"
)

const (
	// StrategySequential queries shops one at a time on the calling goroutine.
	StrategySequential = "sequential"
	// StrategyParallel queries all shops concurrently, one goroutine each.
	StrategyParallel = "parallel"
	// StrategyPooled queues all queries as tasks on the dedicated pool.
	StrategyPooled = "pooled"
	// StrategyComposed combines per-shop price and rate futures into a
	// currency-converted report.
	StrategyComposed = "composed"
	// StrategyComposedLegacy is the deprecated composition that loses the
	// shop identity; it reports under its own label.
	StrategyComposedLegacy = "composed_legacy"

	// DefaultPoolCap is the hard upper bound on dedicated pool workers.
	DefaultPoolCap = 100
)

// Report is the ordered sequence of formatted result lines, one per shop, in
// the same order as the shop catalog.
type Report []string

// Finder owns a fixed shop catalog and a dedicated worker pool shared by all
// aggregation calls. Strategies only read this state, so a Finder is safe
// for concurrent use.
type Finder struct {
	shops  []shop.Shop
	pool   *future.Pool
	rates  exchange.Service
	logger *logging.Logger
	closed atomic.Bool
}

// Option configures a Finder.
type Option func(*options)

type options struct {
	poolCap   int
	queueSize int
	logger    *logging.Logger
}

// WithPoolCap sets the upper bound on dedicated pool workers.
func WithPoolCap(n int) Option {
	return func(o *options) {
		o.poolCap = n
	}
}

// WithQueueSize sets the dedicated pool's task queue capacity.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Finder over the given catalog. The dedicated pool is created
// once here, sized min(shop count, pool cap).
func New(shops []shop.Shop, rates exchange.Service, opts ...Option) (*Finder, error) {
	if len(shops) == 0 {
		return nil, ErrNoShops
	}

	o := options{
		poolCap:   DefaultPoolCap,
		queueSize: future.DefaultQueueSize,
		logger:    logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	workers := len(shops)
	if workers > o.poolCap {
		workers = o.poolCap
	}

	f := &Finder{
		shops: shops,
		pool: future.NewPool(workers,
			future.WithQueueSize(o.queueSize),
			future.WithPoolLogger(o.logger)),
		rates:  rates,
		logger: o.logger,
	}

	f.logger.Info("Finder initialized", "shops", len(shops), "pool_workers", workers)
	return f, nil
}

// Shops returns the catalog size.
func (f *Finder) Shops() int {
	return len(f.shops)
}

// Close shuts down the dedicated pool. Aggregation calls in flight drain;
// later pooled calls fail.
func (f *Finder) Close() {
	f.closed.Store(true)
	f.pool.Close()
}

// FindPricesSequential queries every shop in catalog order on the calling
// goroutine. Total latency is the sum of the per-query delays.
func (f *Finder) FindPricesSequential(ctx context.Context, product string) (Report, error) {
	defer f.observe(StrategySequential, product, time.Now())

	report := make(Report, 0, len(f.shops))
	for _, s := range f.shops {
		price, err := s.Quote(ctx, product)
		if err != nil {
			return nil, f.fail(StrategySequential, s.Name(), err)
		}
		report = append(report, formatLine(s.Name(), price))
	}
	return report, nil
}

// FindPricesParallel queries all shops concurrently, one goroutine per shop,
// and joins the results back into catalog order. The first failure cancels
// the remaining queries and is returned with the failing shop's name.
func (f *Finder) FindPricesParallel(ctx context.Context, product string) (Report, error) {
	defer f.observe(StrategyParallel, product, time.Now())

	g, gctx := errgroup.WithContext(ctx)
	report := make(Report, len(f.shops))
	for i, s := range f.shops {
		g.Go(func() error {
			price, err := s.Quote(gctx, product)
			if err != nil {
				return f.fail(StrategyParallel, s.Name(), err)
			}
			report[i] = formatLine(s.Name(), price)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// FindPricesPooled queues one query task per shop on the dedicated pool,
// collecting every future before joining any of them. Joining follows
// submission order, so the report matches the catalog regardless of
// completion order.
func (f *Finder) FindPricesPooled(ctx context.Context, product string) (Report, error) {
	defer f.observe(StrategyPooled, product, time.Now())

	if f.closed.Load() {
		return nil, ErrFinderClosed
	}

	futures := make([]*future.Future[string], 0, len(f.shops))
	for _, s := range f.shops {
		fut := future.Supply(f.pool, func() (string, error) {
			price, err := s.Quote(ctx, product)
			if err != nil {
				return "", f.fail(StrategyPooled, s.Name(), err)
			}
			return formatLine(s.Name(), price), nil
		})
		futures = append(futures, fut)
	}

	return f.join(ctx, futures)
}

// FindPricesIn converts each shop's price into the target currency. Per
// shop, the price query and the exchange rate lookup run as two independent
// tasks; a fail-fast combinator multiplies them and the result is formatted
// while the shop is still in scope, so its name survives the composition.
// All composed futures are materialized before the first join, keeping the
// queries concurrent.
func (f *Finder) FindPricesIn(ctx context.Context, product string, from, to exchange.Currency) (Report, error) {
	defer f.observe(StrategyComposed, product, time.Now())

	ex := future.GoExecutor{}
	futures := make([]*future.Future[string], 0, len(f.shops))
	for _, s := range f.shops {
		priceFut := future.Supply(ex, func() (decimal.Decimal, error) {
			price, err := s.Quote(ctx, product)
			if err != nil {
				return decimal.Zero, f.fail(StrategyComposed, s.Name(), err)
			}
			return price, nil
		})
		rateFut := future.Supply(ex, func() (decimal.Decimal, error) {
			return f.rates.Rate(ctx, from, to)
		})
		converted := future.Combine(priceFut, rateFut,
			func(price, rate decimal.Decimal) (decimal.Decimal, error) {
				return price.Mul(rate), nil
			})
		line := future.Then(converted, func(v decimal.Decimal) (string, error) {
			return formatLine(s.Name(), v), nil
		})
		futures = append(futures, line)
	}

	return f.join(ctx, futures)
}

// FindPricesInLegacy is the historical rendition of FindPricesIn where the
// formatting step runs after the loop, outside the per-shop scope. By then
// the shop identity is unrecoverable and the report lines carry no name.
//
// Deprecated: kept only to demonstrate the composition pitfall. Use
// FindPricesIn.
func (f *Finder) FindPricesInLegacy(ctx context.Context, product string, from, to exchange.Currency) (Report, error) {
	defer f.observe(StrategyComposedLegacy, product, time.Now())

	ex := future.GoExecutor{}
	futures := make([]*future.Future[decimal.Decimal], 0, len(f.shops))
	for _, s := range f.shops {
		priceFut := future.Supply(ex, func() (decimal.Decimal, error) {
			return s.Quote(ctx, product)
		})
		rateFut := future.Supply(ex, func() (decimal.Decimal, error) {
			return f.rates.Rate(ctx, from, to)
		})
		futures = append(futures, future.Combine(priceFut, rateFut,
			func(price, rate decimal.Decimal) (decimal.Decimal, error) {
				return price.Mul(rate), nil
			}))
	}

	report := make(Report, 0, len(futures))
	for _, fut := range futures {
		v, err := fut.Join(ctx)
		if err != nil {
			metrics.RecordAggregationError(StrategyComposedLegacy)
			return nil, err
		}
		report = append(report, formatLine("", v))
	}
	return report, nil
}

// join awaits the collected futures in submission order.
func (f *Finder) join(ctx context.Context, futures []*future.Future[string]) (Report, error) {
	report := make(Report, 0, len(futures))
	for _, fut := range futures {
		line, err := fut.Join(ctx)
		if err != nil {
			return nil, err
		}
		report = append(report, line)
	}
	return report, nil
}

// fail wraps a per-shop failure with the shop's identity and records it.
func (f *Finder) fail(strategy, shopName string, err error) error {
	metrics.RecordAggregationError(strategy)
	f.logger.Error("Shop query failed", "strategy", strategy, "shop", shopName, "error", err)
	return fmt.Errorf("shop %s: %w", shopName, err)
}

// observe records the aggregation duration and logs the call.
func (f *Finder) observe(strategy, product string, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordAggregation(strategy, elapsed)
	f.logger.Debug("Aggregation finished",
		"strategy", strategy,
		"product", product,
		"request_id", uuid.NewString(),
		"elapsed", elapsed.String())
}

// formatLine renders one report entry.
func formatLine(name string, price decimal.Decimal) string {
	return name + " price is " + price.StringFixed(2)
}
