package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tagger/internal/core"
)

type mockReporter struct {
	name     string
	reported []*core.TaggedPacket
}

func (m *mockReporter) Name() string                    { return m.name }
func (m *mockReporter) Init(cfg map[string]any) error   { return nil }
func (m *mockReporter) Start(ctx context.Context) error { return nil }
func (m *mockReporter) Stop(ctx context.Context) error  { return nil }
func (m *mockReporter) Flush(ctx context.Context) error { return nil }

func (m *mockReporter) Report(ctx context.Context, pkt *core.TaggedPacket) error {
	m.reported = append(m.reported, pkt)
	return nil
}

func TestRegisterAndGetReporter(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	RegisterReporter("test_rep", func() Reporter {
		return &mockReporter{name: "test_rep"}
	})

	factory, err := GetReporterFactory("test_rep")
	require.NoError(t, err)

	instance := factory()
	assert.Equal(t, "test_rep", instance.Name())
	assert.Equal(t, []string{"test_rep"}, ReporterNames())
}

func TestGetReporterFactoryNotFound(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	_, err := GetReporterFactory("missing")
	assert.ErrorIs(t, err, core.ErrPluginNotFound)
}

func TestRegisterReporterDuplicatePanics(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	f := func() Reporter { return &mockReporter{name: "dup"} }
	RegisterReporter("dup", f)
	assert.Panics(t, func() { RegisterReporter("dup", f) })
}

func TestReporterNamesSorted(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	for _, name := range []string{"summary", "console", "kafka"} {
		n := name
		RegisterReporter(n, func() Reporter { return &mockReporter{name: n} })
	}
	assert.Equal(t, []string{"console", "kafka", "summary"}, ReporterNames())
}
