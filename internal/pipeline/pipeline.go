// Package pipeline runs tagging passes over a packet source.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/internal/metrics"
	"firestige.xyz/tagger/internal/tagger"
	"firestige.xyz/tagger/pkg/plugin"
)

// Pipeline classifies every packet of a source on a pool of workers and
// hands the results to its reporters in capture order.
type Pipeline struct {
	engine     *tagger.Engine
	source     plugin.Source
	reporters  []plugin.Reporter
	workers    int
	onlyTagged bool
	metrics    *metrics.Metrics
	logger     log.Logger

	stats *counters
}

// Config contains pipeline configuration.
type Config struct {
	Engine     *tagger.Engine // defaults to tagger.New(nil)
	Source     plugin.Source
	Reporters  []plugin.Reporter
	Workers    int  // defaults to GOMAXPROCS
	OnlyTagged bool // skip untagged packets when reporting
	Metrics    *metrics.Metrics
	Logger     log.Logger
}

// New creates a new pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: pipeline needs a source", core.ErrConfigInvalid)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", core.ErrConfigInvalid, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Engine == nil {
		cfg.Engine = tagger.New(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetLogger()
	}

	return &Pipeline{
		engine:     cfg.Engine,
		source:     cfg.Source,
		reporters:  cfg.Reporters,
		workers:    cfg.Workers,
		onlyTagged: cfg.OnlyTagged,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.WithField("source", cfg.Source.Name()),
		stats:      newCounters(),
	}, nil
}

// Run tags the whole source and reports the results. The first contract
// violation cancels the pass and is returned; reporters then see nothing.
// Report errors are logged and counted, Flush errors are returned.
func (p *Pipeline) Run(ctx context.Context) (tagger.Results, error) {
	start := time.Now()
	defer p.metrics.ObservePass(start)
	p.stats.reset()

	results, err := p.classify(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.report(ctx, results); err != nil {
		return results, err
	}

	p.logger.WithFields(map[string]interface{}{
		"packets":  p.stats.packets.Load(),
		"tagged":   p.stats.tagged.Load(),
		"reported": p.stats.reported.Load(),
		"workers":  p.workers,
		"elapsed":  time.Since(start).String(),
	}).Info("tagging pass complete")
	return results, nil
}

// classify fans the source out to the workers. Each worker claims the next
// unclaimed index and writes its result into that slot, so the result set
// keeps capture order regardless of scheduling.
func (p *Pipeline) classify(ctx context.Context) (tagger.Results, error) {
	n := p.source.Len()
	results := make(tagger.Results, n)

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for range min(p.workers, max(n, 1)) {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}

				pkt := p.source.Packet(i)
				out, err := p.engine.Classify(&pkt)
				if err != nil {
					p.metrics.ObserveContractViolation()
					return err
				}
				p.metrics.ObserveOutcome(out)
				p.stats.observe(out)
				results[i] = core.TaggedPacket{Packet: pkt, Tag: out.Tag}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) report(ctx context.Context, results tagger.Results) error {
	if len(p.reporters) == 0 {
		return nil
	}

	// Only reporters whose Start succeeded are stopped.
	started := make([]plugin.Reporter, 0, len(p.reporters))
	defer func() {
		for _, r := range started {
			if err := r.Stop(context.WithoutCancel(ctx)); err != nil {
				p.logger.WithError(err).Warnf("reporter %s stop failed", r.Name())
			}
		}
	}()
	for _, r := range p.reporters {
		if err := r.Start(ctx); err != nil {
			return fmt.Errorf("start reporter %s: %w", r.Name(), err)
		}
		started = append(started, r)
	}

	for i := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		tp := &results[i]
		if p.onlyTagged && tp.Tag == nil {
			continue
		}
		for _, r := range p.reporters {
			if err := r.Report(ctx, tp); err != nil {
				p.stats.reportErrors.Add(1)
				p.metrics.ObserveReporterError(r.Name())
				p.logger.WithError(err).Errorf("reporter %s failed on frame %d", r.Name(), tp.Frame)
			}
		}
		p.stats.reported.Add(1)
	}

	var errs []error
	for _, r := range p.reporters {
		if err := r.Flush(ctx); err != nil {
			p.metrics.ObserveReporterError(r.Name())
			errs = append(errs, fmt.Errorf("flush reporter %s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Stats returns counters of the last Run.
func (p *Pipeline) Stats() Stats {
	return p.stats.snapshot()
}
