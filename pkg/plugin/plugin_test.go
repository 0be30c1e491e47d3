package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firestige.xyz/tagger/internal/core"
)

type sliceSource []core.Packet

func (s sliceSource) Name() string             { return "slice" }
func (s sliceSource) Len() int                 { return len(s) }
func (s sliceSource) Packet(i int) core.Packet { return s[i] }

func TestPacketsIteratesInOrder(t *testing.T) {
	src := sliceSource{{Frame: 1}, {Frame: 2}, {Frame: 3}}

	var frames []int
	for i, pkt := range Packets(src) {
		assert.Equal(t, i+1, pkt.Frame)
		frames = append(frames, pkt.Frame)
	}
	assert.Equal(t, []int{1, 2, 3}, frames)
}

func TestPacketsIsReplayable(t *testing.T) {
	src := sliceSource{{Frame: 1}, {Frame: 2}}

	count := func() int {
		n := 0
		for range Packets(src) {
			n++
		}
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestPacketsStopsEarly(t *testing.T) {
	src := sliceSource{{Frame: 1}, {Frame: 2}, {Frame: 3}}

	n := 0
	for range Packets(src) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

// Interface compliance
var _ Reporter = (*mockReporter)(nil)
var _ Source = sliceSource(nil)
