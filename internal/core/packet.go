// Package core defines core data structures with zero external dependencies.
package core

import (
	"fmt"
	"net/netip"
	"time"
)

// MaxPort is the largest valid transport port number.
const MaxPort = 65535

// Packet is one capture record as presented by a packet source.
// It is read-only once the source has produced it.
type Packet struct {
	Frame     int       // 1-based record index in the capture
	Timestamp time.Time // Capture timestamp
	Transport Transport
	SrcIP     netip.Addr
	DstIP     netip.Addr
	SrcPort   int
	DstPort   int
	Payload   []byte // Transport payload, possibly empty
}

// Validate reports a contract violation when the packet carries port values
// that no transport header can encode.
func (p *Packet) Validate() error {
	if p.SrcPort < 0 || p.SrcPort > MaxPort {
		return fmt.Errorf("%w: frame %d: %w: src port %d", ErrContractViolation, p.Frame, ErrInvalidPort, p.SrcPort)
	}
	if p.DstPort < 0 || p.DstPort > MaxPort {
		return fmt.Errorf("%w: frame %d: %w: dst port %d", ErrContractViolation, p.Frame, ErrInvalidPort, p.DstPort)
	}
	return nil
}

// TaggedPacket is the final output sent to reporters.
type TaggedPacket struct {
	Packet
	Tag *Tag // nil when the packet is not classified
}

// Labels returns the tag labels, or an empty set for untagged packets.
func (tp *TaggedPacket) Labels() Labels {
	if tp.Tag == nil {
		return Labels{}
	}
	return tp.Tag.Labels()
}
