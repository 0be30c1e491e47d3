package cmd

import (
	"fmt"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/internal/tagger"
	"firestige.xyz/tagger/pkg/plugin"
)

// newPorts builds the port registry from the configured extra bindings.
func newPorts(c *config.Config) (*tagger.PortRegistry, error) {
	extra := make([]tagger.PortBinding, 0, len(c.Ports))
	for i, b := range c.Ports {
		family, err := core.ParseFamily(b.Family)
		if err != nil {
			return nil, fmt.Errorf("ports[%d]: %w", i, err)
		}
		extra = append(extra, tagger.PortBinding{Port: b.Port, Family: family})
	}
	return tagger.NewPortRegistry(extra...)
}

func newEngine(c *config.Config) (*tagger.Engine, error) {
	ports, err := newPorts(c)
	if err != nil {
		return nil, err
	}
	return tagger.New(ports, tagger.WithLogger(log.GetLogger())), nil
}

// newReporters creates and initializes the configured reporters.
func newReporters(cfgs []config.ReporterConfig) ([]plugin.Reporter, error) {
	reporters := make([]plugin.Reporter, 0, len(cfgs))
	for _, rc := range cfgs {
		factory, err := plugin.GetReporterFactory(rc.Name)
		if err != nil {
			return nil, err
		}
		r := factory()
		if err := r.Init(rc.Config); err != nil {
			return nil, fmt.Errorf("init reporter %s: %w", rc.Name, err)
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}
