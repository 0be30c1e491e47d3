package tagger

import "firestige.xyz/tagger/internal/core"

// ResolveRole decides the message role from which endpoint owns the
// well-known port. Traffic toward the service is a request, traffic from it
// is a response. It returns false when neither port is the well-known one.
func ResolveRole(wellKnown, srcPort, dstPort int) (core.Role, bool) {
	switch wellKnown {
	case dstPort:
		return core.RoleRequest, true
	case srcPort:
		return core.RoleResponse, true
	default:
		return core.RoleNone, false
	}
}
