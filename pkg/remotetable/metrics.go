package remotetable

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeApplied = "applied"
	outcomeStale   = "stale"
	outcomeFailed  = "failed"
)

type metrics struct {
	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	inFlight     *prometheus.GaugeVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		fetchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remotetable",
			Name:      "fetch_total",
			Help:      "Total number of table fetch resolutions by outcome.",
		}, []string{"table", "outcome"}),
		fetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "remotetable",
			Name:      "fetch_latency_seconds",
			Help:      "Latency distribution for table fetches.",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"table", "outcome"}),
		inFlight: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "remotetable",
			Name:      "fetch_in_flight",
			Help:      "Current number of unresolved table fetches.",
		}, []string{"table"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func (m *metrics) observe(table, outcome string, started time.Time) {
	m.fetchTotal.WithLabelValues(table, outcome).Inc()
	m.fetchLatency.WithLabelValues(table, outcome).Observe(time.Since(started).Seconds())
}
