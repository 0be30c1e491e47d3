// Package plugin defines plugin interfaces.
package plugin

import (
	"context"

	"firestige.xyz/tagger/internal/core"
)

// Reporter receives tagged packets in capture order.
type Reporter interface {
	Plugin
	Report(ctx context.Context, pkt *core.TaggedPacket) error
	Flush(ctx context.Context) error
}
