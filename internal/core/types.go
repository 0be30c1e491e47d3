// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"strings"
)

// Transport is the IP protocol number of the packet's transport layer.
type Transport uint8

const (
	TransportUnknown Transport = 0
	TransportTCP     Transport = 6
	TransportUDP     Transport = 17
)

func (t Transport) String() string {
	switch t {
	case TransportTCP:
		return "tcp"
	case TransportUDP:
		return "udp"
	default:
		return fmt.Sprintf("proto(%d)", uint8(t))
	}
}

// Family is the application protocol family a well-known port is bound to.
type Family uint8

const (
	FamilyNone Family = iota
	FamilySMTP
	FamilyHTTP
	FamilyFTP
)

var familyNames = map[Family]string{
	FamilySMTP: "smtp",
	FamilyHTTP: "http",
	FamilyFTP:  "ftp",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "none"
}

// Families lists every classifiable family in a stable order.
func Families() []Family {
	return []Family{FamilySMTP, FamilyHTTP, FamilyFTP}
}

// ParseFamily parses a case-insensitive family name.
func ParseFamily(s string) (Family, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return FamilyNone, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// Role is the direction of a message relative to the well-known port owner.
type Role uint8

const (
	RoleNone Role = iota
	RoleRequest
	RoleResponse
)

func (r Role) String() string {
	switch r {
	case RoleRequest:
		return "request"
	case RoleResponse:
		return "response"
	default:
		return "none"
	}
}

// Roles lists both message roles.
func Roles() []Role {
	return []Role{RoleRequest, RoleResponse}
}

// ParseRole parses a case-insensitive role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "request", "req":
		return RoleRequest, nil
	case "response", "resp":
		return RoleResponse, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}
