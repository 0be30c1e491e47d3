// Package metrics implements Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/tagger/internal/tagger"
)

// Metrics holds the tagging counters of one registry. A nil *Metrics
// discards every observation.
type Metrics struct {
	// PacketsTotal counts classified packets by outcome reason
	PacketsTotal *prometheus.CounterVec

	// TagsTotal counts assigned tags by family and role
	TagsTotal *prometheus.CounterVec

	// ContractViolationsTotal counts packets rejected by validation
	ContractViolationsTotal prometheus.Counter

	// ReporterErrorsTotal counts reporter failures by reporter name
	ReporterErrorsTotal *prometheus.CounterVec

	// PassDurationSeconds measures whole tagging passes
	PassDurationSeconds prometheus.Histogram
}

// New registers the tagging metrics on reg. Passing prometheus.DefaultRegisterer
// exposes them process-wide; tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PacketsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagger_packets_total",
				Help: "Total number of classified packets by outcome",
			},
			[]string{"reason"},
		),
		TagsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagger_tags_total",
				Help: "Total number of tags assigned",
			},
			[]string{"family", "role"},
		),
		ContractViolationsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "tagger_contract_violations_total",
				Help: "Total number of packets rejected as malformed input",
			},
		),
		ReporterErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagger_reporter_errors_total",
				Help: "Total number of reporter errors",
			},
			[]string{"reporter"},
		),
		PassDurationSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tagger_pass_duration_seconds",
				Help:    "Duration of tagging passes in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
		),
	}
}

// ObserveOutcome records one classification.
func (m *Metrics) ObserveOutcome(out tagger.Outcome) {
	if m == nil {
		return
	}
	m.PacketsTotal.WithLabelValues(out.Reason.String()).Inc()
	if out.Tag != nil {
		m.TagsTotal.WithLabelValues(out.Tag.Family.String(), out.Tag.Role.String()).Inc()
	}
}

// ObserveContractViolation records one rejected packet.
func (m *Metrics) ObserveContractViolation() {
	if m == nil {
		return
	}
	m.ContractViolationsTotal.Inc()
}

// ObserveReporterError records one failed Report or Flush call.
func (m *Metrics) ObserveReporterError(reporter string) {
	if m == nil {
		return
	}
	m.ReporterErrorsTotal.WithLabelValues(reporter).Inc()
}

// ObservePass records the duration of a tagging pass started at start.
func (m *Metrics) ObservePass(start time.Time) {
	if m == nil {
		return
	}
	m.PassDurationSeconds.Observe(time.Since(start).Seconds())
}
