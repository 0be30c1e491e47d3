// Package ftp implements the FTP control-channel reply grammar.
package ftp

import (
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/parser/line"
)

// ResponseMatcher matches "3DIGIT (SP | '-') text". A hyphen marks the first
// line of a multi-line reply. The text may carry UTF-8 pathnames (RFC 2640).
type ResponseMatcher struct{}

// NewResponseMatcher creates the FTP reply matcher.
func NewResponseMatcher() plugin.Matcher {
	return ResponseMatcher{}
}

// Name returns the matcher name.
func (ResponseMatcher) Name() string {
	return "ftp-response-line"
}

// TryParse parses the first line of payload as an FTP reply.
func (ResponseMatcher) TryParse(payload []byte) (core.Fields, bool) {
	l, ok := line.First(payload)
	if !ok || len(l) < 4 {
		return nil, false
	}

	code, ok := line.Code3(l[:3])
	if !ok {
		return nil, false
	}

	var continued bool
	switch l[3] {
	case ' ':
	case '-':
		continued = true
	default:
		return nil, false
	}

	if !line.IsFreeText(l[4:]) {
		return nil, false
	}

	return core.FTPResponse{
		Code:      code,
		Continued: continued,
		Text:      string(l[4:]),
	}, true
}
