// Package tagger classifies packets into application-layer protocol messages.
package tagger

import (
	"fmt"
	"sort"

	"firestige.xyz/tagger/internal/core"
)

// PortBinding binds a transport port to a protocol family.
type PortBinding struct {
	Port   int
	Family core.Family
}

// DefaultBindings is the built-in well-known port table.
var DefaultBindings = []PortBinding{
	{Port: 21, Family: core.FamilyFTP},
	{Port: 25, Family: core.FamilySMTP},
	{Port: 80, Family: core.FamilyHTTP},
}

// PortRegistry maps well-known ports to protocol families. It is immutable
// after construction and safe for concurrent use.
type PortRegistry struct {
	families map[int]core.Family
}

// NewPortRegistry builds the registry from DefaultBindings plus extra.
// A port may not be bound to two different families.
func NewPortRegistry(extra ...PortBinding) (*PortRegistry, error) {
	r := &PortRegistry{families: make(map[int]core.Family, len(DefaultBindings)+len(extra))}
	for _, b := range DefaultBindings {
		r.families[b.Port] = b.Family
	}
	for _, b := range extra {
		if b.Port < 0 || b.Port > core.MaxPort {
			return nil, fmt.Errorf("%w: port %d", core.ErrInvalidPort, b.Port)
		}
		if b.Family == core.FamilyNone {
			return nil, fmt.Errorf("%w: port %d has no family", core.ErrUnknownFamily, b.Port)
		}
		if existing, ok := r.families[b.Port]; ok && existing != b.Family {
			return nil, fmt.Errorf("%w: port %d already bound to %s, cannot bind to %s",
				core.ErrConfigInvalid, b.Port, existing, b.Family)
		}
		r.families[b.Port] = b.Family
	}
	return r, nil
}

// DefaultPortRegistry returns a registry holding only DefaultBindings.
func DefaultPortRegistry() *PortRegistry {
	r, _ := NewPortRegistry()
	return r
}

// FamilyFor returns the family bound to port.
func (r *PortRegistry) FamilyFor(port int) (core.Family, bool) {
	f, ok := r.families[port]
	return f, ok
}

// Bindings lists the table sorted by port.
func (r *PortRegistry) Bindings() []PortBinding {
	out := make([]PortBinding, 0, len(r.families))
	for port, f := range r.families {
		out = append(out, PortBinding{Port: port, Family: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}
