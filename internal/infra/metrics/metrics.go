package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payments_total",
			Help: "Payment attempts by method and terminal status.",
		},
		[]string{"method", "status"},
	)

	demoGrantsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_demo_grants_total",
			Help: "Demo access grants issued.",
		},
	)

	demoGrantsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_demo_grants_expired_total",
			Help: "Demo grants removed by expiry sweeps.",
		},
	)

	simulatedRequestsMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_simulated_request_ms",
			Help:    "Simulated backend round-trip latency in milliseconds.",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 1500, 2000, 3000, 5000},
		},
		[]string{"endpoint", "success"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notifications_total",
			Help: "Transient notifications shown, by severity.",
		},
		[]string{"severity"},
	)

	analyticsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_analytics_events_dropped_total",
			Help: "Analytics events dropped by the capped fallback queue.",
		},
	)

	assetCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_asset_cache_requests_total",
			Help: "Static asset requests by cache outcome (hit/miss).",
		},
		[]string{"outcome"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			paymentsTotal, demoGrantsTotal, demoGrantsExpired,
			simulatedRequestsMs, notificationsTotal,
			analyticsDropped, assetCacheHits,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPayment(method, status string) {
	paymentsTotal.WithLabelValues(norm(method), norm(status)).Inc()
}

func IncDemoGrant() { demoGrantsTotal.Inc() }

func IncDemoGrantsExpired(n int) { demoGrantsExpired.Add(float64(n)) }

func ObserveSimulatedRequest(endpoint string, success bool, elapsed time.Duration) {
	simulatedRequestsMs.WithLabelValues(endpoint, strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func IncNotification(severity string) {
	notificationsTotal.WithLabelValues(norm(severity)).Inc()
}

func IncAnalyticsDropped(n int) { analyticsDropped.Add(float64(n)) }

func IncAssetCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	assetCacheHits.WithLabelValues(outcome).Inc()
}
