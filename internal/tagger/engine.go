package tagger

import (
	"context"

	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/log"
	"firestige.xyz/tagger/pkg/plugin"
	"firestige.xyz/tagger/plugins/parser/ftp"
	"firestige.xyz/tagger/plugins/parser/http"
	"firestige.xyz/tagger/plugins/parser/smtp"
)

// Reason explains why a packet did or did not receive a tag.
type Reason uint8

const (
	ReasonTagged Reason = iota
	ReasonUnknownPort
	ReasonTransport
	ReasonNoDirection
	ReasonNoMatcher
	ReasonEmptyPayload
	ReasonNoMatch
)

var reasonNames = [...]string{
	ReasonTagged:       "tagged",
	ReasonUnknownPort:  "unknown_port",
	ReasonTransport:    "transport",
	ReasonNoDirection:  "no_direction",
	ReasonNoMatcher:    "no_matcher",
	ReasonEmptyPayload: "empty_payload",
	ReasonNoMatch:      "no_match",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Reasons lists every outcome reason.
func Reasons() []Reason {
	return []Reason{
		ReasonTagged, ReasonUnknownPort, ReasonTransport, ReasonNoDirection,
		ReasonNoMatcher, ReasonEmptyPayload, ReasonNoMatch,
	}
}

// Outcome is the result of classifying one packet.
type Outcome struct {
	Tag    *core.Tag // nil unless Reason is ReasonTagged
	Reason Reason
	Family core.Family // resolved family, FamilyNone for unknown ports
	Role   core.Role   // resolved role, RoleNone when unresolved
}

type matcherKey struct {
	family core.Family
	role   core.Role
}

// Engine tags packets. It holds no per-packet state: one engine may classify
// any number of packets from any number of goroutines.
type Engine struct {
	ports    *PortRegistry
	matchers map[matcherKey]plugin.Matcher
	logger   log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatcher installs or replaces the grammar for a family/role pair.
func WithMatcher(f core.Family, r core.Role, m plugin.Matcher) Option {
	return func(e *Engine) {
		e.matchers[matcherKey{f, r}] = m
	}
}

// WithoutMatcher removes the grammar for a family/role pair.
func WithoutMatcher(f core.Family, r core.Role) Option {
	return func(e *Engine) {
		delete(e.matchers, matcherKey{f, r})
	}
}

// WithLogger sets the logger used for debug traces of untagged packets.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine over ports with the SMTP command, HTTP request/status
// line and FTP reply grammars. FTP client commands have no grammar.
func New(ports *PortRegistry, opts ...Option) *Engine {
	if ports == nil {
		ports = DefaultPortRegistry()
	}
	e := &Engine{
		ports: ports,
		matchers: map[matcherKey]plugin.Matcher{
			{core.FamilySMTP, core.RoleRequest}:  smtp.NewCommandMatcher(),
			{core.FamilyHTTP, core.RoleRequest}:  http.NewRequestLineMatcher(),
			{core.FamilyHTTP, core.RoleResponse}: http.NewStatusLineMatcher(),
			{core.FamilyFTP, core.RoleResponse}:  ftp.NewResponseMatcher(),
		},
		logger: log.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ports returns the registry the engine classifies with.
func (e *Engine) Ports() *PortRegistry {
	return e.ports
}

// Tag returns the packet's tag, or nil when the packet is not a recognized
// protocol message. An error is returned only for contract violations.
func (e *Engine) Tag(pkt *core.Packet) (*core.Tag, error) {
	out, err := e.Classify(pkt)
	if err != nil {
		return nil, err
	}
	return out.Tag, nil
}

// Classify tags a packet and reports why it was or was not tagged.
func (e *Engine) Classify(pkt *core.Packet) (Outcome, error) {
	if err := pkt.Validate(); err != nil {
		return Outcome{}, err
	}

	// The destination port wins when both ends are registered.
	wellKnown := pkt.DstPort
	family, ok := e.ports.FamilyFor(pkt.DstPort)
	if !ok {
		wellKnown = pkt.SrcPort
		family, ok = e.ports.FamilyFor(pkt.SrcPort)
	}
	if !ok {
		return Outcome{Reason: ReasonUnknownPort}, nil
	}
	out := Outcome{Family: family}

	if pkt.Transport != core.TransportTCP {
		out.Reason = ReasonTransport
		return out, nil
	}

	role, ok := ResolveRole(wellKnown, pkt.SrcPort, pkt.DstPort)
	if !ok {
		out.Reason = ReasonNoDirection
		return out, nil
	}
	out.Role = role

	m, ok := e.matchers[matcherKey{family, role}]
	if !ok {
		out.Reason = ReasonNoMatcher
		return out, nil
	}

	if len(pkt.Payload) == 0 {
		out.Reason = ReasonEmptyPayload
		return out, nil
	}

	fields, ok := m.TryParse(pkt.Payload)
	if !ok || fields.Family() != family || fields.Role() != role {
		out.Reason = ReasonNoMatch
		if e.logger.IsDebugEnabled() {
			e.logger.WithFields(map[string]interface{}{
				"frame":   pkt.Frame,
				"matcher": m.Name(),
				"len":     len(pkt.Payload),
			}).Debug("payload did not match grammar")
		}
		return out, nil
	}

	out.Tag = core.NewTag(fields)
	out.Reason = ReasonTagged
	return out, nil
}

// TagAll runs one sequential tagging pass over src.
func (e *Engine) TagAll(ctx context.Context, src plugin.Source) (Results, error) {
	results := make(Results, 0, src.Len())
	for _, pkt := range plugin.Packets(src) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tag, err := e.Tag(&pkt)
		if err != nil {
			return nil, err
		}
		results = append(results, core.TaggedPacket{Packet: pkt, Tag: tag})
	}
	return results, nil
}
