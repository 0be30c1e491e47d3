package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/tagger"
)

func TestObserveOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	tag := core.NewTag(core.HTTPRequest{Method: "GET", Target: "/", Version: "1.1"})
	m.ObserveOutcome(tagger.Outcome{Tag: tag, Reason: tagger.ReasonTagged})
	m.ObserveOutcome(tagger.Outcome{Tag: tag, Reason: tagger.ReasonTagged})
	m.ObserveOutcome(tagger.Outcome{Reason: tagger.ReasonUnknownPort})
	m.ObserveOutcome(tagger.Outcome{Reason: tagger.ReasonNoMatch})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PacketsTotal.WithLabelValues("tagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PacketsTotal.WithLabelValues("unknown_port")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PacketsTotal.WithLabelValues("no_match")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TagsTotal.WithLabelValues("http", "request")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TagsTotal))
}

func TestObserveErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveContractViolation()
	m.ObserveReporterError("console")
	m.ObserveReporterError("console")
	m.ObservePass(time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContractViolationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReporterErrorsTotal.WithLabelValues("console")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PassDurationSeconds))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOutcome(tagger.Outcome{Reason: tagger.ReasonTagged})
		m.ObserveContractViolation()
		m.ObserveReporterError("x")
		m.ObservePass(time.Now())
	})
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
