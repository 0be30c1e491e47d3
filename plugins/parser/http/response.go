package http

import (
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/parser/line"
)

// StatusLineMatcher matches "HTTP/major.minor SP 3DIGIT SP reason-phrase".
// The reason phrase may be empty but the SP before it is required. Octets
// above 0x7f are allowed in the reason (obs-text).
type StatusLineMatcher struct{}

// NewStatusLineMatcher creates the status-line matcher.
func NewStatusLineMatcher() plugin.Matcher {
	return StatusLineMatcher{}
}

// Name returns the matcher name.
func (StatusLineMatcher) Name() string {
	return "http-status-line"
}

// TryParse parses the first line of payload as a status line.
func (StatusLineMatcher) TryParse(payload []byte) (core.Fields, bool) {
	l, ok := line.First(payload)
	if !ok {
		return nil, false
	}

	proto, rest, ok := line.Cut(l)
	if !ok {
		return nil, false
	}
	version, ok := line.HTTPVersion(proto)
	if !ok {
		return nil, false
	}
	code, reason, ok := line.Cut(rest)
	if !ok {
		return nil, false
	}
	status, ok := line.Code3(code)
	if !ok || !line.IsFreeText(reason) {
		return nil, false
	}

	return core.HTTPResponse{
		Version:    version,
		StatusCode: status,
		Reason:     string(reason),
	}, true
}
