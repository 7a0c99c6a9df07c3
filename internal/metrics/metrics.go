package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmzai_requests_total",
			Help: "Total number of provider requests",
		},
		[]string{"model", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llmzai_request_duration_seconds",
			Help:    "Provider request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmzai_tokens_total",
			Help: "Total number of tokens processed",
		},
		[]string{"model", "type"},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmzai_probes_total",
			Help: "Total number of diagnostic probes by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordRequest(model, status string, durationSeconds float64) {
	RequestsTotal.WithLabelValues(model, status).Inc()
	RequestDuration.WithLabelValues(model).Observe(durationSeconds)
}

func RecordTokens(model string, inputTokens, outputTokens int) {
	TokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	TokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
}

func RecordProbe(outcome string) {
	ProbesTotal.WithLabelValues(outcome).Inc()
}
