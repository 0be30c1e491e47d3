// Package http implements the HTTP/1.x request-line and status-line grammars.
package http

import (
	"bytes"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/parser/line"
)

// Methods are the standard request methods (RFC 9110 plus PATCH).
var Methods = []string{
	"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH",
}

// RequestLineMatcher matches "METHOD SP request-target SP HTTP/major.minor".
type RequestLineMatcher struct{}

// NewRequestLineMatcher creates the request-line matcher.
func NewRequestLineMatcher() plugin.Matcher {
	return RequestLineMatcher{}
}

// Name returns the matcher name.
func (RequestLineMatcher) Name() string {
	return "http-request-line"
}

// TryParse parses the first line of payload as a request line.
func (RequestLineMatcher) TryParse(payload []byte) (core.Fields, bool) {
	l, ok := line.First(payload)
	if !ok {
		return nil, false
	}

	method, rest, ok := line.Cut(l)
	if !ok || !isMethod(method) {
		return nil, false
	}
	target, proto, ok := line.Cut(rest)
	if !ok || len(target) == 0 || !line.IsText(target) || bytes.IndexByte(target, '\t') >= 0 {
		return nil, false
	}
	version, ok := line.HTTPVersion(proto)
	if !ok {
		return nil, false
	}

	return core.HTTPRequest{
		Method:  string(method),
		Target:  string(target),
		Version: version,
	}, true
}

func isMethod(b []byte) bool {
	for _, m := range Methods {
		if string(b) == m {
			return true
		}
	}
	return false
}
