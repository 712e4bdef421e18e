package run

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	errorRate    prometheus.Histogram
	latency      prometheus.Histogram
	hooksSent    prometheus.Counter
	hooksFailed  prometheus.Counter
	hooksDropped prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "werdiff_score_requests_total",
			Help: "Score requests by outcome",
		}, []string{"outcome"}),
		errorRate: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "werdiff_word_error_rate_percent",
			Help:    "Word error rate of scored pairs",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 30, 50, 75, 100},
		}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "werdiff_score_duration_seconds",
			Help:    "Time spent scoring one pair",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		hooksSent: f.NewCounter(prometheus.CounterOpts{
			Name: "werdiff_hooks_sent_total",
			Help: "Hooks run successfully",
		}),
		hooksFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "werdiff_hooks_failed_total",
			Help: "Hooks that exited with an error",
		}),
		hooksDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "werdiff_hooks_dropped_total",
			Help: "Hook jobs dropped because the queue was full",
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
