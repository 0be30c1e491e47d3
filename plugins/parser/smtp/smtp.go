// Package smtp implements the SMTP client command grammar.
package smtp

import (
	"bytes"
	"strings"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/parser/line"
)

// Verbs recognized at the start of a client command line (RFC 5321 plus the
// common service extensions). The verbs RFC 5321 retired are left out.
var Verbs = []string{
	"HELO", "EHLO", "MAIL", "RCPT", "DATA", "BDAT", "RSET", "VRFY", "EXPN",
	"HELP", "NOOP", "QUIT", "AUTH", "STARTTLS", "ETRN", "ATRN",
}

var verbSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Verbs))
	for _, v := range Verbs {
		m[v] = struct{}{}
	}
	return m
}()

// CommandMatcher matches "VERB [SP argument] CRLF".
type CommandMatcher struct{}

// NewCommandMatcher creates the SMTP command matcher.
func NewCommandMatcher() plugin.Matcher {
	return CommandMatcher{}
}

// Name returns the matcher name.
func (CommandMatcher) Name() string {
	return "smtp-command"
}

// TryParse parses the first line of payload as an SMTP command.
func (CommandMatcher) TryParse(payload []byte) (core.Fields, bool) {
	l, ok := line.First(payload)
	if !ok {
		return nil, false
	}

	verb, arg := l, []byte(nil)
	if i := bytes.IndexAny(l, " \t"); i >= 0 {
		verb, arg = l[:i], l[i+1:]
	}
	if !IsVerb(verb) || !line.IsFreeText(arg) {
		return nil, false
	}

	return core.SMTPCommand{
		Verb:     string(verb),
		Argument: string(arg),
	}, true
}

// IsVerb reports whether b is a recognized command verb. The verb must be
// written in a single case: "QUIT" and "quit" match, "Quit" does not.
func IsVerb(b []byte) bool {
	if !line.IsAlpha(b) {
		return false
	}
	s := string(b)
	upper := strings.ToUpper(s)
	if s != upper && s != strings.ToLower(s) {
		return false
	}
	_, ok := verbSet[upper]
	return ok
}
