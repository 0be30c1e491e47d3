// Package plugin defines plugin interfaces.
package plugin

import (
	"iter"

	"firestige.xyz/tagger/internal/core"
)

// Source is a finite, ordered and replayable sequence of packets.
// Reading a packet never consumes it: callers may walk the same source
// any number of times, from any number of goroutines.
type Source interface {
	Name() string
	Len() int
	// Packet returns the i-th packet in capture order, 0 <= i < Len().
	Packet(i int) core.Packet
}

// Packets iterates a source in capture order.
func Packets(src Source) iter.Seq2[int, core.Packet] {
	return func(yield func(int, core.Packet) bool) {
		for i := range src.Len() {
			if !yield(i, src.Packet(i)) {
				return
			}
		}
	}
}
