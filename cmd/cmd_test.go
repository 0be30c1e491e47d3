package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/source/file/pcaptest"
	"firestige.xyz/tagger/plugins/reporter/summary"
)

func writeMixedTrace(t *testing.T) string {
	t.Helper()
	var pkts []core.Packet
	pkts = append(pkts, pcaptest.SMTPSession()...)
	pkts = append(pkts, pcaptest.HTTPSession()...)
	pkts = append(pkts, pcaptest.FTPSession()...)

	path := filepath.Join(t.TempDir(), "mixed.pcap")
	pcaptest.WriteTrace(t, path, pkts)
	return path
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagger.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunCount(t *testing.T) {
	trace := writeMixedTrace(t)

	tests := []struct {
		family string
		role   string
		want   string
	}{
		{"smtp", "request", "6\n"},
		{"http", "request", "19\n"},
		{"http", "response", "18\n"},
		{"ftp", "response", "2\n"},
		{"ftp", "request", "0\n"},
		{"smtp", "response", "0\n"},
		{"http", "", "37\n"},
		{"", "response", "20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.family+"/"+tt.role, func(t *testing.T) {
			var out bytes.Buffer
			err := runCount(context.Background(), config.Default(), trace,
				countOptions{family: tt.family, role: tt.role}, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunCountTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCount(context.Background(), config.Default(), writeMixedTrace(t), countOptions{}, &out))

	assert.Contains(t, out.String(), "smtp     request    6\n")
	assert.Contains(t, out.String(), "http     response   18\n")
	assert.Contains(t, out.String(), "ftp      request    0\n")
	assert.Contains(t, out.String(), "total               45\n")
}

func TestRunCountErrors(t *testing.T) {
	ctx := context.Background()
	trace := writeMixedTrace(t)

	err := runCount(ctx, config.Default(), trace, countOptions{family: "gopher"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrUnknownFamily)

	err = runCount(ctx, config.Default(), trace, countOptions{role: "both"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrUnknownRole)

	err = runCount(ctx, config.Default(), trace, countOptions{filter: "tcp"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrInvalidFilter)

	err = runCount(ctx, config.Default(), filepath.Join(t.TempDir(), "none.pcap"), countOptions{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCountExtraPorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.pcap")
	pcaptest.WriteTrace(t, path, []core.Packet{
		pcaptest.TCP(50000, 8080, "GET / HTTP/1.1\r\n"),
		pcaptest.TCP(50001, 587, "EHLO relay\r\n"),
	})

	c, err := config.Load(writeConfig(t, `
tagger:
  ports:
    - port: 8080
      family: http
    - port: 587
      family: smtp
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runCount(context.Background(), c, path, countOptions{}, &out))
	assert.Contains(t, out.String(), "total               2\n")
}

func TestRunTagSummary(t *testing.T) {
	summaryPath := filepath.Join(t.TempDir(), "summary.yml")
	c, err := config.Load(writeConfig(t, `
tagger:
  pipeline:
    workers: 3
  reporters:
    - name: summary
      config:
        output: `+summaryPath+`
`))
	require.NoError(t, err)

	var out bytes.Buffer
	err = runTag(context.Background(), c, writeMixedTrace(t), tagOptions{workers: -1, metrics: true}, &out)
	require.NoError(t, err)

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var got summary.Summary
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 45, got.Tagged)
	assert.Equal(t, 6, got.Counts["smtp"]["request"])
	assert.Equal(t, 19, got.Counts["http"]["request"])
	assert.Equal(t, 18, got.Counts["http"]["response"])
	assert.Equal(t, 2, got.Counts["ftp"]["response"])

	assert.Contains(t, out.String(), `tagger_tags_total{family="http",role="request"} 19`)
	assert.Contains(t, out.String(), `tagger_packets_total{reason="tagged"} 45`)
	assert.Contains(t, out.String(), "tagger_pass_duration_seconds_count 1")
}

func TestRunTagOnlyTaggedWithFilter(t *testing.T) {
	summaryPath := filepath.Join(t.TempDir(), "summary.yml")
	c := config.Default()
	c.Reporters = []config.ReporterConfig{{Name: "summary", Config: map[string]any{"output": summaryPath}}}

	err := runTag(context.Background(), c, writeMixedTrace(t),
		tagOptions{workers: 2, onlyTagged: true, filter: "port 21"}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var got summary.Summary
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 2, got.Packets)
	assert.Zero(t, got.Untagged)
	assert.Equal(t, map[string]map[string]int{"ftp": {"response": 2}}, got.Counts)
}

func TestRunTagUnknownReporter(t *testing.T) {
	err := runTag(context.Background(), config.Default(), writeMixedTrace(t),
		tagOptions{workers: -1, reporters: []string{"kafka"}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrPluginNotFound)
}

func TestRunPorts(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runPorts(config.Default(), &out))
	assert.Equal(t, "PORT   FAMILY\n21     ftp\n25     smtp\n80     http\n", out.String())
}

func TestRunValidate(t *testing.T) {
	valid := writeConfig(t, `
tagger:
  log:
    level: debug
  ports:
    - port: 8080
      family: http
  capture:
    filter: "port 80"
  reporters:
    - name: console
      config:
        format: json
`)
	var out bytes.Buffer
	require.NoError(t, runValidate(valid, &out))
	assert.Equal(t, "VALID: 4 port binding(s), 1 reporter(s)\n", out.String())

	tests := []struct {
		name string
		body string
		want error
	}{
		{"bad level", "tagger:\n  log:\n    level: loud\n", core.ErrConfigInvalid},
		{"bad family", "tagger:\n  ports:\n    - port: 8080\n      family: gopher\n", core.ErrConfigInvalid},
		{"rebinds default", "tagger:\n  ports:\n    - port: 25\n      family: http\n", core.ErrConfigInvalid},
		{"bad filter", "tagger:\n  capture:\n    filter: \"tcp or udp\"\n", core.ErrInvalidFilter},
		{"unknown reporter", "tagger:\n  reporters:\n    - name: kafka\n", core.ErrPluginNotFound},
		{"bad reporter config", "tagger:\n  reporters:\n    - name: console\n      config:\n        format: xml\n", core.ErrConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runValidate(writeConfig(t, tt.body), &bytes.Buffer{})
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "INVALID")
		})
	}
}

func TestRootCommand(t *testing.T) {
	trace := writeMixedTrace(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"count", trace, "--family", "smtp", "--role", "request"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		countOpts = countOptions{}
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "6\n", out.String())
	assert.NotNil(t, cfg)
}
