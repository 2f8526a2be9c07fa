package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tc.com/best-prices/pkg/config"
	"tc.com/best-prices/pkg/exchange"
	"tc.com/best-prices/pkg/finder"
	"tc.com/best-prices/pkg/logging"
	"tc.com/best-prices/pkg/metrics"
	"tc.com/best-prices/pkg/shop"
	"tc.com/best-prices/pkg/version"
)

var (
	configFile = flag.String("config", "", "Path to configuration file (defaults apply when empty)")
	product    = flag.String("product", "myPhone27S", "Product to price")
	currency   = flag.String("currency", "", "Target currency for the composed strategy (e.g. USD)")
	strategy   = flag.String("strategy", "all", "Strategy to run: sequential, parallel, pooled, composed or all")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("best-prices version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting best-prices",
		"version", version.Version,
		"shops", len(cfg.Shops),
		"delay", cfg.Query.Delay.ToDuration().String())

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			if err := metrics.ServeHTTP(cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Build the shop catalog
	shops := make([]shop.Shop, 0, len(cfg.Shops))
	for _, name := range cfg.Shops {
		s, err := shop.New(name,
			shop.WithDelay(cfg.Query.Delay.ToDuration()),
			shop.WithLogger(logger))
		if err != nil {
			logger.Fatal("Failed to create shop", "shop", name, "error", err)
		}
		shops = append(shops, s)
	}

	rates := exchange.New(
		exchange.WithDelay(cfg.Query.Delay.ToDuration()),
		exchange.WithLogger(logger))

	f, err := finder.New(shops, rates,
		finder.WithPoolCap(cfg.Query.PoolCap),
		finder.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create finder", "error", err)
	}
	defer f.Close()

	ctx := context.Background()
	target := exchange.Currency(*currency)

	run := func(name string, fn func() (finder.Report, error)) {
		start := time.Now()
		report, err := fn()
		if err != nil {
			logger.Error("Aggregation failed", "strategy", name, "error", err)
			return
		}
		fmt.Printf("--- %s (%s)\n", name, time.Since(start).Round(time.Millisecond))
		for _, line := range report {
			fmt.Println(line)
		}
	}

	strategies := map[string]func() (finder.Report, error){
		finder.StrategySequential: func() (finder.Report, error) {
			return f.FindPricesSequential(ctx, *product)
		},
		finder.StrategyParallel: func() (finder.Report, error) {
			return f.FindPricesParallel(ctx, *product)
		},
		finder.StrategyPooled: func() (finder.Report, error) {
			return f.FindPricesPooled(ctx, *product)
		},
		finder.StrategyComposed: func() (finder.Report, error) {
			return f.FindPricesIn(ctx, *product, exchange.EUR, target)
		},
	}

	if *currency == "" {
		// No target currency requested; skip the composed strategy
		delete(strategies, finder.StrategyComposed)
	}

	if *strategy != "all" {
		fn, ok := strategies[*strategy]
		if !ok {
			logger.Fatal("Unknown strategy", "strategy", *strategy)
		}
		run(*strategy, fn)
		return
	}

	// Fixed order so timings are comparable run to run
	for _, name := range []string{
		finder.StrategySequential,
		finder.StrategyParallel,
		finder.StrategyPooled,
		finder.StrategyComposed,
	} {
		if fn, ok := strategies[name]; ok {
			run(name, fn)
		}
	}
}
