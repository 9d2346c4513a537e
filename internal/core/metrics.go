package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "certshowcase"

// Metrics are registered on a registry owned by the service so several
// services (tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	// WordCloudRenders counts word cloud requests by method and cache outcome.
	WordCloudRenders *prometheus.CounterVec
	// WordCloudDuration tracks render latency by method.
	WordCloudDuration *prometheus.HistogramVec
	// CertificatesConverted counts conversions by outcome.
	CertificatesConverted *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		WordCloudRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "wordcloud_requests_total",
				Help:      "Total number of word cloud requests",
			},
			[]string{"method", "cache"},
		),
		WordCloudDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "wordcloud_render_duration_seconds",
				Help:      "Duration of word cloud renders in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method"},
		),
		CertificatesConverted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "certificates_converted_total",
				Help:      "Total number of certificate PDF conversions",
			},
			[]string{"outcome"},
		),
	}
}
