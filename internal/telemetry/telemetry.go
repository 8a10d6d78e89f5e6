// Package telemetry exposes Prometheus metrics for sync activity.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// refreshes tracks cloud refresh cycles by result.
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopping_sync_refreshes_total",
		Help: "Total number of cloud refresh cycles by result",
	}, []string{"result"}) // result: ok, error, skipped

	// fallbacks tracks startup fallbacks from cloud to local mode.
	fallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_sync_fallbacks_total",
		Help: "Total number of startup fallbacks to local mode",
	})

	// expiredSwept tracks bought products removed by the expiry sweep.
	expiredSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_expired_products_swept_total",
		Help: "Total number of expired bought products removed",
	})

	// cloudMode reports whether the engine is in cloud mode (1) or local (0).
	cloudMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopping_sync_cloud_mode",
		Help: "Whether the engine currently syncs to the cloud backend",
	})
)

// RecordRefresh counts a refresh cycle outcome ("ok", "error" or "skipped").
func RecordRefresh(result string) {
	refreshes.WithLabelValues(result).Inc()
}

// RecordFallback counts a startup fallback to local mode.
func RecordFallback() {
	fallbacks.Inc()
}

// RecordExpired counts products removed by the expiry sweep.
func RecordExpired(count int) {
	expiredSwept.Add(float64(count))
}

// SetCloudMode records the current sync mode.
func SetCloudMode(cloud bool) {
	if cloud {
		cloudMode.Set(1)
	} else {
		cloudMode.Set(0)
	}
}
