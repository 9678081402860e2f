// Package metrics exposes Prometheus instrumentation for the tracker.
// Collectors register on the default registry and are served by
// promhttp.Handler on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal counts price checks by result (ok, error).
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricewatch_checks_total",
		Help: "Total number of price checks performed.",
	}, []string{"result"})

	// AlertsTriggeredTotal counts threshold and rule alerts fired.
	AlertsTriggeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_alerts_triggered_total",
		Help: "Total number of alerts triggered.",
	})

	// NotificationsTotal counts delivery attempts by channel and status.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricewatch_notifications_total",
		Help: "Total number of notification delivery attempts.",
	}, []string{"channel", "status"})

	// SweepDuration observes full-sweep wall time.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricewatch_sweep_duration_seconds",
		Help:    "Duration of full price sweeps.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// ItemsActive tracks the number of items eligible for checking.
	ItemsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricewatch_items_active",
		Help: "Number of active tracked items.",
	})
)
