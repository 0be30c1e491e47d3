// Package memory provides an in-memory packet source.
package memory

import (
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
)

// Source is a materialized, replayable list of packets.
type Source struct {
	name    string
	packets []core.Packet
}

// NewSource wraps packets. Frames left at zero are numbered from 1 in order.
func NewSource(name string, packets []core.Packet) *Source {
	pkts := make([]core.Packet, len(packets))
	copy(pkts, packets)
	for i := range pkts {
		if pkts[i].Frame == 0 {
			pkts[i].Frame = i + 1
		}
	}
	return &Source{name: name, packets: pkts}
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// Len returns the number of packets.
func (s *Source) Len() int {
	return len(s.packets)
}

// Packet returns the i-th packet.
func (s *Source) Packet(i int) core.Packet {
	return s.packets[i]
}

var _ plugin.Source = (*Source)(nil)
