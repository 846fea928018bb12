// Package metrics holds the Prometheus collectors exported on the jobs
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tool_cache_hits_total",
		Help: "Total number of tool cache hits",
	})

	ToolCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tool_cache_misses_total",
		Help: "Total number of tool cache misses",
	})

	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total CannMenus proxy requests by outcome",
	}, []string{"outcome"}) // hit | fetched | error

	CatalogRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_retries_total",
		Help: "Total CannMenus request retries",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	WebhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Total payment webhook deliveries by provider and outcome",
	}, []string{"provider", "outcome"}) // processed | duplicate | rejected

	OverageCentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_overage_cents_total",
		Help: "Accumulated overage charges in cents by metric",
	}, []string{"metric"})

	PlaybookRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playbook_runs_total",
		Help: "Total playbook executions by outcome",
	}, []string{"outcome"}) // success | failure

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of checkout operations",
		Buckets: prometheus.DefBuckets,
	})
)
