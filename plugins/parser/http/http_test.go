package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tagger/internal/core"
)

func TestRequestLineTryParse(t *testing.T) {
	m := NewRequestLineMatcher()

	tests := []struct {
		name    string
		payload string
		want    core.HTTPRequest
		ok      bool
	}{
		{"get", "GET /index.html HTTP/1.1\r\nHost: example.org\r\n\r\n", core.HTTPRequest{Method: "GET", Target: "/index.html", Version: "1.1"}, true},
		{"post absolute uri", "POST http://example.org/form?a=1 HTTP/1.0\r\n", core.HTTPRequest{Method: "POST", Target: "http://example.org/form?a=1", Version: "1.0"}, true},
		{"options asterisk", "OPTIONS * HTTP/1.1\r\n", core.HTTPRequest{Method: "OPTIONS", Target: "*", Version: "1.1"}, true},
		{"connect authority", "CONNECT example.org:443 HTTP/1.1\r\n", core.HTTPRequest{Method: "CONNECT", Target: "example.org:443", Version: "1.1"}, true},
		{"bare lf", "HEAD / HTTP/1.1\n", core.HTTPRequest{Method: "HEAD", Target: "/", Version: "1.1"}, true},
		{"long target", "GET /" + strings.Repeat("a", 5000) + " HTTP/1.1\r\n", core.HTTPRequest{Method: "GET", Target: "/" + strings.Repeat("a", 5000), Version: "1.1"}, true},
		{"non-ascii target", "GET /caf\xc3\xa9 HTTP/1.1\r\n", core.HTTPRequest{}, false},
		{"lower case method", "get / HTTP/1.1\r\n", core.HTTPRequest{}, false},
		{"unknown method", "FETCH / HTTP/1.1\r\n", core.HTTPRequest{}, false},
		{"missing version", "GET /\r\n", core.HTTPRequest{}, false},
		{"missing target", "GET  HTTP/1.1\r\n", core.HTTPRequest{}, false},
		{"malformed version", "GET / HTTP/1\r\n", core.HTTPRequest{}, false},
		{"trailing token", "GET / HTTP/1.1 extra\r\n", core.HTTPRequest{}, false},
		{"no terminator", "GET / HTTP/1.1", core.HTTPRequest{}, false},
		{"status line", "HTTP/1.1 200 OK\r\n", core.HTTPRequest{}, false},
		{"continuation body", "<html><body>\r\n", core.HTTPRequest{}, false},
		{"binary", "\x89PNG\r\n\x1a\n", core.HTTPRequest{}, false},
		{"empty", "", core.HTTPRequest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ok := m.TryParse([]byte(tt.payload))
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, fields)
			}
		})
	}
}

func TestStatusLineTryParse(t *testing.T) {
	m := NewStatusLineMatcher()

	tests := []struct {
		name    string
		payload string
		want    core.HTTPResponse
		ok      bool
	}{
		{"ok", "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", core.HTTPResponse{Version: "1.1", StatusCode: 200, Reason: "OK"}, true},
		{"multi word reason", "HTTP/1.0 404 Not Found\r\n", core.HTTPResponse{Version: "1.0", StatusCode: 404, Reason: "Not Found"}, true},
		{"empty reason", "HTTP/1.1 204 \r\n", core.HTTPResponse{Version: "1.1", StatusCode: 204}, true},
		{"latin-1 reason", "HTTP/1.1 200 Ok\xe9\r\n", core.HTTPResponse{Version: "1.1", StatusCode: 200, Reason: "Ok\xe9"}, true},
		{"utf8 reason", "HTTP/1.1 404 Non trouv\xc3\xa9\r\n", core.HTTPResponse{Version: "1.1", StatusCode: 404, Reason: "Non trouv\xc3\xa9"}, true},
		{"missing reason separator", "HTTP/1.1 304\r\n", core.HTTPResponse{}, false},
		{"control byte in reason", "HTTP/1.1 200 O\x01K\r\n", core.HTTPResponse{}, false},
		{"two digit code", "HTTP/1.1 20 OK\r\n", core.HTTPResponse{}, false},
		{"four digit code", "HTTP/1.1 2000 OK\r\n", core.HTTPResponse{}, false},
		{"letters in code", "HTTP/1.1 2O0 OK\r\n", core.HTTPResponse{}, false},
		{"bad version", "HTTP/x 200 OK\r\n", core.HTTPResponse{}, false},
		{"sip", "SIP/2.0 200 OK\r\n", core.HTTPResponse{}, false},
		{"no terminator", "HTTP/1.1 200 OK", core.HTTPResponse{}, false},
		{"request line", "GET / HTTP/1.1\r\n", core.HTTPResponse{}, false},
		{"empty", "", core.HTTPResponse{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ok := m.TryParse([]byte(tt.payload))
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, fields)
			}
		})
	}
}

func TestRequestLineRoundTrip(t *testing.T) {
	m := NewRequestLineMatcher()
	for _, method := range Methods {
		want := core.HTTPRequest{Method: method, Target: "/a/b?c=d", Version: "1.1"}
		got, ok := m.TryParse([]byte(want.Line()))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestStatusLineRoundTrip(t *testing.T) {
	m := NewStatusLineMatcher()
	for _, want := range []core.HTTPResponse{
		{Version: "1.1", StatusCode: 200, Reason: "OK"},
		{Version: "1.0", StatusCode: 503, Reason: "Service Unavailable"},
		{Version: "1.1", StatusCode: 100},
		{Version: "2.0", StatusCode: 7, Reason: "odd"},
	} {
		got, ok := m.TryParse([]byte(want.Line()))
		require.True(t, ok, "line %q", want.Line())
		assert.Equal(t, want, got)
	}
}

func TestMatcherNames(t *testing.T) {
	assert.Equal(t, "http-request-line", NewRequestLineMatcher().Name())
	assert.Equal(t, "http-status-line", NewStatusLineMatcher().Name())
}
