package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firestige.xyz/tagger/internal/core"
)

func TestNewSourceNumbersFrames(t *testing.T) {
	src := NewSource("trace", []core.Packet{{}, {Frame: 10}, {}})

	assert.Equal(t, "trace", src.Name())
	assert.Equal(t, 3, src.Len())
	assert.Equal(t, 1, src.Packet(0).Frame)
	assert.Equal(t, 10, src.Packet(1).Frame)
	assert.Equal(t, 3, src.Packet(2).Frame)
}

func TestNewSourceCopiesInput(t *testing.T) {
	in := []core.Packet{{SrcPort: 1234, DstPort: 25}}
	src := NewSource("trace", in)

	in[0].DstPort = 80
	assert.Equal(t, 25, src.Packet(0).DstPort)
}
