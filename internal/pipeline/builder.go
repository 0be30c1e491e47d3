package pipeline

import (
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/internal/metrics"
	"firestige.xyz/tagger/internal/tagger"
	"firestige.xyz/tagger/pkg/plugin"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithEngine sets the tagging engine.
func (b *Builder) WithEngine(e *tagger.Engine) *Builder {
	b.config.Engine = e
	return b
}

// WithSource sets the packet source.
func (b *Builder) WithSource(src plugin.Source) *Builder {
	b.config.Source = src
	return b
}

// WithReporters appends to the reporter chain.
func (b *Builder) WithReporters(reporters ...plugin.Reporter) *Builder {
	b.config.Reporters = append(b.config.Reporters, reporters...)
	return b
}

// WithWorkers sets the worker count.
func (b *Builder) WithWorkers(n int) *Builder {
	b.config.Workers = n
	return b
}

// WithOnlyTagged restricts reporting to tagged packets.
func (b *Builder) WithOnlyTagged(only bool) *Builder {
	b.config.OnlyTagged = only
	return b
}

// WithMetrics sets the metrics sink.
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.config.Metrics = m
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l log.Logger) *Builder {
	b.config.Logger = l
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	return New(b.config)
}
