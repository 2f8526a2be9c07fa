package finder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/best-prices/pkg/exchange"
	"tc.com/best-prices/pkg/future"
	"tc.com/best-prices/pkg/metrics"
	"tc.com/best-prices/pkg/shop"
)

var catalogNames = []string{"BestPrice", "LetsSaveBig", "MyFavoriteShop", "BuyItAll"}

func newCatalog(t *testing.T, delay time.Duration) []shop.Shop {
	t.Helper()
	shops := make([]shop.Shop, 0, len(catalogNames))
	for _, name := range catalogNames {
		s, err := shop.New(name, shop.WithDelay(delay))
		require.NoError(t, err)
		shops = append(shops, s)
	}
	return shops
}

func newTestFinder(t *testing.T, delay time.Duration, rate decimal.Decimal, opts ...Option) *Finder {
	t.Helper()
	f, err := New(newCatalog(t, delay), exchange.Static(rate), opts...)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestNew_NoShops(t *testing.T) {
	_, err := New(nil, exchange.Static(decimal.NewFromInt(1)))
	require.ErrorIs(t, err, ErrNoShops)
}

func TestStrategiesAgree(t *testing.T) {
	f := newTestFinder(t, 0, decimal.NewFromInt(1))
	ctx := context.Background()

	sequential, err := f.FindPricesSequential(ctx, "myPhone27S")
	require.NoError(t, err)

	parallel, err := f.FindPricesParallel(ctx, "myPhone27S")
	require.NoError(t, err)

	pooled, err := f.FindPricesPooled(ctx, "myPhone27S")
	require.NoError(t, err)

	// rate 1.0 makes the composed strategy comparable to the others
	composed, err := f.FindPricesIn(ctx, "myPhone27S", exchange.EUR, exchange.USD)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, sequential, pooled)
	assert.Equal(t, sequential, composed)
}

func TestReportOrderMatchesCatalog(t *testing.T) {
	f := newTestFinder(t, 0, decimal.NewFromInt(1))
	ctx := context.Background()

	strategies := map[string]func() (Report, error){
		StrategySequential: func() (Report, error) { return f.FindPricesSequential(ctx, "myPhone27S") },
		StrategyParallel:   func() (Report, error) { return f.FindPricesParallel(ctx, "myPhone27S") },
		StrategyPooled:     func() (Report, error) { return f.FindPricesPooled(ctx, "myPhone27S") },
		StrategyComposed: func() (Report, error) {
			return f.FindPricesIn(ctx, "myPhone27S", exchange.EUR, exchange.USD)
		},
	}

	for name, fn := range strategies {
		t.Run(name, func(t *testing.T) {
			report, err := fn()
			require.NoError(t, err)
			require.Len(t, report, len(catalogNames))
			for i, line := range report {
				assert.True(t, strings.HasPrefix(line, catalogNames[i]+" price is "),
					"line %d = %q, want prefix %q", i, line, catalogNames[i])
			}
		})
	}
}

func TestFindPricesIn_RateDoublesPrices(t *testing.T) {
	ctx := context.Background()

	base := newTestFinder(t, 0, decimal.NewFromInt(1))
	doubled := newTestFinder(t, 0, decimal.NewFromInt(2))

	baseReport, err := base.FindPricesIn(ctx, "myPhone27S", exchange.EUR, exchange.USD)
	require.NoError(t, err)
	doubledReport, err := doubled.FindPricesIn(ctx, "myPhone27S", exchange.EUR, exchange.USD)
	require.NoError(t, err)

	require.Len(t, doubledReport, len(baseReport))
	for i, name := range catalogNames {
		s, err := shop.New(name, shop.WithDelayer(shop.NoDelay))
		require.NoError(t, err)
		price, err := s.Quote(ctx, "myPhone27S")
		require.NoError(t, err)

		assert.Equal(t, name+" price is "+price.StringFixed(2), baseReport[i])
		assert.Equal(t, name+" price is "+price.Mul(decimal.NewFromInt(2)).StringFixed(2), doubledReport[i])
	}
}

func TestFindPricesIn_MaterializesBeforeJoining(t *testing.T) {
	const delay = 100 * time.Millisecond
	f := newTestFinder(t, delay, decimal.NewFromInt(1))

	start := time.Now()
	report, err := f.FindPricesIn(context.Background(), "myPhone27S", exchange.EUR, exchange.USD)
	require.NoError(t, err)
	elapsed := time.Since(start)

	// Every per-shop future is collected before the first join, so the four
	// queries overlap. Awaiting inside the loop would pay one delay per shop.
	require.Len(t, report, 4)
	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, 3*delay)
}

func TestFindPricesInLegacy_LosesShopNames(t *testing.T) {
	f := newTestFinder(t, 0, decimal.NewFromInt(1))

	// First call of the deprecated variant in this binary: it must show up
	// under its own duration label, not the canonical composed one.
	assert.NotEqual(t, StrategyComposed, StrategyComposedLegacy)
	labelsBefore := testutil.CollectAndCount(metrics.AggregationDuration)

	report, err := f.FindPricesInLegacy(context.Background(), "myPhone27S", exchange.EUR, exchange.USD)
	require.NoError(t, err)
	require.Len(t, report, len(catalogNames))
	for _, line := range report {
		assert.True(t, strings.HasPrefix(line, " price is "),
			"legacy line unexpectedly carries an identity: %q", line)
	}

	assert.Equal(t, labelsBefore+1, testutil.CollectAndCount(metrics.AggregationDuration))
}

// failingShop quotes nothing, ever.
type failingShop struct {
	name string
	err  error
}

func (s failingShop) Name() string { return s.name }

func (s failingShop) Quote(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, s.err
}

func (s failingShop) QuoteAsync(ctx context.Context, product string) *future.Future[decimal.Decimal] {
	return future.Supply(future.GoExecutor{}, func() (decimal.Decimal, error) {
		return s.Quote(ctx, product)
	})
}

func TestFailingShopNamesItself(t *testing.T) {
	errOutage := errors.New("storefront outage")
	shops := newCatalog(t, 0)
	shops[2] = failingShop{name: "MyFavoriteShop", err: errOutage}

	f, err := New(shops, exchange.Static(decimal.NewFromInt(1)))
	require.NoError(t, err)
	t.Cleanup(f.Close)

	ctx := context.Background()
	strategies := map[string]func() (Report, error){
		StrategySequential: func() (Report, error) { return f.FindPricesSequential(ctx, "myPhone27S") },
		StrategyParallel:   func() (Report, error) { return f.FindPricesParallel(ctx, "myPhone27S") },
		StrategyPooled:     func() (Report, error) { return f.FindPricesPooled(ctx, "myPhone27S") },
		StrategyComposed: func() (Report, error) {
			return f.FindPricesIn(ctx, "myPhone27S", exchange.EUR, exchange.USD)
		},
	}

	for name, fn := range strategies {
		t.Run(name, func(t *testing.T) {
			report, err := fn()
			require.ErrorIs(t, err, errOutage)
			assert.Contains(t, err.Error(), "MyFavoriteShop")
			assert.Nil(t, report)
		})
	}
}

func TestConcurrentStrategiesBeatSequential(t *testing.T) {
	const delay = 100 * time.Millisecond
	f := newTestFinder(t, delay, decimal.NewFromInt(1))
	ctx := context.Background()

	measure := func(fn func() (Report, error)) time.Duration {
		start := time.Now()
		_, err := fn()
		require.NoError(t, err)
		return time.Since(start)
	}

	sequential := measure(func() (Report, error) { return f.FindPricesSequential(ctx, "myPhone27S") })
	parallel := measure(func() (Report, error) { return f.FindPricesParallel(ctx, "myPhone27S") })
	pooled := measure(func() (Report, error) { return f.FindPricesPooled(ctx, "myPhone27S") })

	// 4 shops: sequential pays 4 delays, the concurrent strategies ~1.
	assert.GreaterOrEqual(t, sequential, 4*delay)
	assert.Less(t, parallel, 3*delay)
	assert.Less(t, pooled, 3*delay)
}

func TestPoolCapBoundsParallelism(t *testing.T) {
	const delay = 100 * time.Millisecond
	f := newTestFinder(t, delay, decimal.NewFromInt(1), WithPoolCap(2))

	start := time.Now()
	report, err := f.FindPricesPooled(context.Background(), "myPhone27S")
	require.NoError(t, err)
	elapsed := time.Since(start)

	// 4 shops over 2 workers: two waves of queries.
	require.Len(t, report, 4)
	assert.GreaterOrEqual(t, elapsed, 2*delay)
	assert.Less(t, elapsed, 4*delay)
}

func TestFindPricesPooled_AfterClose(t *testing.T) {
	f := newTestFinder(t, 0, decimal.NewFromInt(1))
	f.Close()

	_, err := f.FindPricesPooled(context.Background(), "myPhone27S")
	require.ErrorIs(t, err, ErrFinderClosed)
}

func TestClose_DuringConcurrentPooledCalls(t *testing.T) {
	f := newTestFinder(t, 5*time.Millisecond, decimal.NewFromInt(1))
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			report, err := f.FindPricesPooled(ctx, "myPhone27S")
			if err != nil {
				// The pool shut down mid-loop; both shapes of the
				// shutdown error are acceptable, anything else is not.
				assert.True(t,
					errors.Is(err, ErrFinderClosed) || errors.Is(err, future.ErrPoolClosed),
					"unexpected error: %v", err)
				return
			}
			assert.Len(t, report, len(catalogNames))
		}
	}()

	time.Sleep(20 * time.Millisecond)
	f.Close()
	<-done
}

func TestSequential_CancelledContext(t *testing.T) {
	f := newTestFinder(t, time.Second, decimal.NewFromInt(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.FindPricesSequential(ctx, "myPhone27S")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentAggregationCallsShareThePool(t *testing.T) {
	f := newTestFinder(t, 10*time.Millisecond, decimal.NewFromInt(1))
	ctx := context.Background()

	const calls = 8
	results := make(chan error, calls)
	for i := 0; i < calls; i++ {
		go func() {
			report, err := f.FindPricesPooled(ctx, "myPhone27S")
			if err == nil && len(report) != len(catalogNames) {
				err = errors.New("short report")
			}
			results <- err
		}()
	}
	for i := 0; i < calls; i++ {
		require.NoError(t, <-results)
	}
}
