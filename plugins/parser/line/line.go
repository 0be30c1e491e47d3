// Package line extracts and validates the first text line of a payload.
// Every grammar in this repository is anchored on the first line, so the
// helpers here are the single place that decides what a "line" is.
package line

import "bytes"

// MaxLength bounds how far First scans for a terminator.
const MaxLength = 8192

// First returns the first line of payload without its terminator.
// A line ends at LF with an optional preceding CR. It fails when payload has
// no terminator within MaxLength bytes or when the line starts with anything
// but a visible ASCII character. The rest of the line is left to the grammar.
func First(payload []byte) ([]byte, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	window := payload
	if len(window) > MaxLength {
		window = window[:MaxLength]
	}
	end := bytes.IndexByte(window, '\n')
	if end < 0 {
		return nil, false
	}
	l := window[:end]
	if n := len(l); n > 0 && l[n-1] == '\r' {
		l = l[:n-1]
	}
	if len(l) > 0 && (l[0] < 0x21 || l[0] > 0x7e) {
		return nil, false
	}
	return l, true
}

// IsText reports whether b holds only printable ASCII and tabs.
func IsText(b []byte) bool {
	for _, c := range b {
		if c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// IsFreeText reports whether b may stand as trailing free text: any byte
// except ASCII control characters other than tab. Octets above 0x7f are
// accepted so UTF-8 and Latin-1 text pass through.
func IsFreeText(b []byte) bool {
	for _, c := range b {
		if c == '\t' {
			continue
		}
		if c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

// IsAlpha reports whether b is a non-empty run of ASCII letters.
func IsAlpha(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// IsDigits reports whether b is a non-empty run of ASCII digits.
func IsDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Code3 parses exactly three ASCII digits.
func Code3(b []byte) (int, bool) {
	if len(b) != 3 || !IsDigits(b) {
		return 0, false
	}
	return int(b[0]-'0')*100 + int(b[1]-'0')*10 + int(b[2]-'0'), true
}

// HTTPVersion parses "HTTP/major.minor" and returns "major.minor".
func HTTPVersion(b []byte) (string, bool) {
	rest, ok := bytes.CutPrefix(b, []byte("HTTP/"))
	if !ok {
		return "", false
	}
	major, minor, ok := bytes.Cut(rest, []byte("."))
	if !ok || !IsDigits(major) || !IsDigits(minor) {
		return "", false
	}
	return string(rest), true
}

// Cut splits at the first space. The separator must be exactly one SP.
func Cut(b []byte) (before, after []byte, found bool) {
	return bytes.Cut(b, []byte{' '})
}
