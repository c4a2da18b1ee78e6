package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rtsp",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Requests handled, by method and response status",
	}, []string{"method", "status"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rtsp",
		Subsystem: "server",
		Name:      "sessions_active",
		Help:      "Currently open control sessions",
	})

	negotiateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rtsp",
		Subsystem: "server",
		Name:      "negotiate_duration_seconds",
		Help:      "Time spent awaiting media-plane negotiation calls",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	mediaPlaneErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rtsp",
		Subsystem: "server",
		Name:      "mediaplane_errors_total",
		Help:      "Failed or timed-out media-plane negotiations",
	})
)
