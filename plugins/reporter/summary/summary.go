// Package summary implements a reporter that prints per-family, per-role
// tag counts as YAML when flushed.
package summary

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
)

// Summary is the document written on Flush.
type Summary struct {
	Packets  int                       `yaml:"packets"`
	Tagged   int                       `yaml:"tagged"`
	Untagged int                       `yaml:"untagged"`
	Counts   map[string]map[string]int `yaml:"counts,omitempty"`
}

// Config represents summary reporter configuration.
type Config struct {
	Output string `mapstructure:"output"` // "stdout", "stderr" or a file path, default "stdout"
}

// SummaryReporter accumulates counts between flushes.
type SummaryReporter struct {
	name   string
	config Config
	out    io.Writer

	mu      sync.Mutex
	summary Summary
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter() plugin.Reporter {
	return &SummaryReporter{
		name:    "summary",
		config:  Config{Output: "stdout"},
		out:     os.Stdout,
		summary: newSummary(),
	}
}

func newSummary() Summary {
	return Summary{Counts: make(map[string]map[string]int)}
}

// Name returns the plugin name.
func (r *SummaryReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *SummaryReporter) Init(cfg map[string]any) error {
	if cfg == nil {
		return nil
	}
	if err := mapstructure.Decode(cfg, &r.config); err != nil {
		return fmt.Errorf("%w: summary reporter: %w", core.ErrConfigInvalid, err)
	}
	if r.config.Output == "" {
		return fmt.Errorf("%w: summary reporter: output must not be empty", core.ErrConfigInvalid)
	}
	return nil
}

// Start opens the output.
func (r *SummaryReporter) Start(ctx context.Context) error {
	switch r.config.Output {
	case "stdout":
		r.out = os.Stdout
	case "stderr":
		r.out = os.Stderr
	default:
		f, err := os.Create(r.config.Output)
		if err != nil {
			return fmt.Errorf("summary reporter: %w", err)
		}
		r.out = f
	}
	return nil
}

// Stop closes a file output.
func (r *SummaryReporter) Stop(ctx context.Context) error {
	if c, ok := r.out.(io.Closer); ok && r.out != os.Stdout && r.out != os.Stderr {
		return c.Close()
	}
	return nil
}

// Report counts one packet.
func (r *SummaryReporter) Report(ctx context.Context, pkt *core.TaggedPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Packets++
	if pkt.Tag == nil {
		r.summary.Untagged++
		return nil
	}
	r.summary.Tagged++
	family := pkt.Tag.Family.String()
	if r.summary.Counts[family] == nil {
		r.summary.Counts[family] = make(map[string]int)
	}
	r.summary.Counts[family][pkt.Tag.Role.String()]++
	return nil
}

// Snapshot returns a copy of the current counts.
func (r *SummaryReporter) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Counts = make(map[string]map[string]int, len(r.summary.Counts))
	for family, roles := range r.summary.Counts {
		s.Counts[family] = make(map[string]int, len(roles))
		for role, n := range roles {
			s.Counts[family][role] = n
		}
	}
	return s
}

// Flush writes the summary and starts counting afresh.
func (r *SummaryReporter) Flush(ctx context.Context) error {
	s := r.Snapshot()

	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("summary reporter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("summary reporter: encode: %w", err)
	}

	r.mu.Lock()
	r.summary = newSummary()
	r.mu.Unlock()
	return nil
}
