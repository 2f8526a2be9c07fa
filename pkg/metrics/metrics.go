// Package metrics provides Prometheus metrics for the best-prices system.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ShopQueriesTotal is a counter of the total number of shop price queries.
	ShopQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_queries_total",
			Help: "Total number of price queries issued to shops",
		},
		[]string{"shop"},
	)

	// ShopQueryDuration is a histogram of shop query duration.
	ShopQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_query_duration_seconds",
			Help:    "Duration of individual shop price queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"shop"},
	)

	// AggregationDuration is a histogram of aggregation duration per strategy.
	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "price_aggregation_duration_seconds",
			Help:    "Duration of price aggregation operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// AggregationErrorsTotal is a counter of failed aggregation calls.
	AggregationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_aggregation_errors_total",
			Help: "Total number of aggregation calls that returned an error",
		},
		[]string{"strategy"},
	)

	// RateLookupsTotal is a counter of exchange rate lookups.
	RateLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_lookups_total",
			Help: "Total number of exchange rate lookups",
		},
		[]string{"from", "to"},
	)

	// PoolTasksTotal is a counter of tasks submitted to the dedicated worker pool.
	PoolTasksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_pool_tasks_total",
			Help: "Total number of tasks submitted to the dedicated worker pool",
		},
	)

	// PoolWorkers is a gauge of the dedicated worker pool size.
	PoolWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_pool_workers",
			Help: "Number of workers in the dedicated pool",
		},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		ShopQueriesTotal,
		ShopQueryDuration,
		AggregationDuration,
		AggregationErrorsTotal,
		RateLookupsTotal,
		PoolTasksTotal,
		PoolWorkers,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordShopQuery records a completed shop price query.
func RecordShopQuery(shop string, duration time.Duration) {
	ShopQueriesTotal.WithLabelValues(shop).Inc()
	ShopQueryDuration.WithLabelValues(shop).Observe(duration.Seconds())
}

// RecordAggregation records a price aggregation operation.
func RecordAggregation(strategy string, duration time.Duration) {
	AggregationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordAggregationError records a failed aggregation call.
func RecordAggregationError(strategy string) {
	AggregationErrorsTotal.WithLabelValues(strategy).Inc()
}

// RecordRateLookup records an exchange rate lookup.
func RecordRateLookup(from, to string) {
	RateLookupsTotal.WithLabelValues(from, to).Inc()
}

// RecordPoolTask records a task submission to the dedicated pool.
func RecordPoolTask() {
	PoolTasksTotal.Inc()
}

// SetPoolWorkers records the dedicated pool size.
func SetPoolWorkers(n int) {
	PoolWorkers.Set(float64(n))
}
