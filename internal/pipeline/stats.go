package pipeline

import (
	"sync/atomic"

	"firestige.xyz/tagger/internal/tagger"
)

// Stats represents pipeline statistics.
type Stats struct {
	Packets      uint64                   `json:"packets" yaml:"packets"`
	Tagged       uint64                   `json:"tagged" yaml:"tagged"`
	Reported     uint64                   `json:"reported" yaml:"reported"`
	ReportErrors uint64                   `json:"report_errors" yaml:"report_errors"`
	Reasons      map[tagger.Reason]uint64 `json:"-" yaml:"-"`
}

// counters are updated concurrently by the workers. The reasons map is
// built once and only read afterwards.
type counters struct {
	packets      atomic.Uint64
	tagged       atomic.Uint64
	reported     atomic.Uint64
	reportErrors atomic.Uint64
	reasons      map[tagger.Reason]*atomic.Uint64
}

func newCounters() *counters {
	c := &counters{reasons: make(map[tagger.Reason]*atomic.Uint64)}
	for _, r := range tagger.Reasons() {
		c.reasons[r] = new(atomic.Uint64)
	}
	return c
}

func (c *counters) observe(out tagger.Outcome) {
	c.packets.Add(1)
	if out.Tag != nil {
		c.tagged.Add(1)
	}
	if n, ok := c.reasons[out.Reason]; ok {
		n.Add(1)
	}
}

func (c *counters) reset() {
	c.packets.Store(0)
	c.tagged.Store(0)
	c.reported.Store(0)
	c.reportErrors.Store(0)
	for _, n := range c.reasons {
		n.Store(0)
	}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Packets:      c.packets.Load(),
		Tagged:       c.tagged.Load(),
		Reported:     c.reported.Load(),
		ReportErrors: c.reportErrors.Load(),
		Reasons:      make(map[tagger.Reason]uint64, len(c.reasons)),
	}
	for r, n := range c.reasons {
		if v := n.Load(); v > 0 {
			s.Reasons[r] = v
		}
	}
	return s
}
