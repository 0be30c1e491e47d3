// Package plugin defines plugin interfaces.
package plugin

import "firestige.xyz/tagger/internal/core"

// Matcher parses a payload against one fixed application-layer grammar.
// A matcher holds no mutable state and is safe for concurrent use.
type Matcher interface {
	Name() string
	// TryParse returns the structured fields when the leading bytes of payload
	// satisfy the full grammar, and false otherwise. It never panics on
	// arbitrary input.
	TryParse(payload []byte) (core.Fields, bool)
}
