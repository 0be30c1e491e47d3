package ftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tagger/internal/core"
)

func TestTryParse(t *testing.T) {
	m := NewResponseMatcher()

	tests := []struct {
		name    string
		payload string
		want    core.FTPResponse
		ok      bool
	}{
		{"welcome", "220 ProFTPD Server ready.\r\n", core.FTPResponse{Code: 220, Text: "ProFTPD Server ready."}, true},
		{"multi-line start", "230-Welcome to the archive\r\n230 Login successful.\r\n", core.FTPResponse{Code: 230, Continued: true, Text: "Welcome to the archive"}, true},
		{"empty text", "200 \r\n", core.FTPResponse{Code: 200}, true},
		{"passive", "227 Entering Passive Mode (192,168,1,2,19,137).\n", core.FTPResponse{Code: 227, Text: "Entering Passive Mode (192,168,1,2,19,137)."}, true},
		{"utf8 pathname", "257 \"/h\xc3\xa9\" created\r\n", core.FTPResponse{Code: 257, Text: "\"/h\xc3\xa9\" created"}, true},
		{"control byte in text", "220 re\x1bady\r\n", core.FTPResponse{}, false},
		{"code only", "220\r\n", core.FTPResponse{}, false},
		{"two digits", "22 ready\r\n", core.FTPResponse{}, false},
		{"four digits", "2200 ready\r\n", core.FTPResponse{}, false},
		{"letters", "abc ready\r\n", core.FTPResponse{}, false},
		{"client command", "USER anonymous\r\n", core.FTPResponse{}, false},
		{"continuation line", " more text of a multi-line reply\r\n", core.FTPResponse{}, false},
		{"no terminator", "220 ready", core.FTPResponse{}, false},
		{"binary", "\xff\xfd\x18\r\n", core.FTPResponse{}, false},
		{"empty", "", core.FTPResponse{}, false},
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

func TestRoundTrip(t *testing.T) {
	m := NewResponseMatcher()
	for _, want := range []core.FTPResponse{
		{Code: 220, Text: "ready"},
		{Code: 230, Continued: true, Text: "Welcome"},
		{Code: 150},
		{Code: 5, Text: "leading zeros"},
	} {
		got, ok := m.TryParse([]byte(want.Line()))
		require.True(t, ok, "line %q", want.Line())
		assert.Equal(t, want, got)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "ftp-response-line", NewResponseMatcher().Name())
}
