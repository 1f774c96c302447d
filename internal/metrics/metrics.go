package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

var (
	// OrdersTotal counts order settlements by outcome.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Order settlements by outcome.",
	}, []string{"outcome"})

	// SweepResolutionsTotal counts orders the auto-resolution sweep settled.
	SweepResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_resolutions_total",
		Help:      "Orders settled by the auto-resolution sweep.",
	}, []string{"outcome"})

	// PaymentsTotal counts gateway payments by provider and status.
	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Gateway payments by provider and status.",
	}, []string{"provider", "status"})

	// WebhookDuplicatesTotal counts webhook deliveries dropped as replays.
	WebhookDuplicatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_duplicates_total",
		Help:      "Webhook deliveries dropped as duplicates.",
	}, []string{"provider"})

	// HTTPRequestDuration observes handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
