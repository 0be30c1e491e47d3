// Package core defines the classification result attached to a packet.
package core

import (
	"strconv"
)

// Fields is the family-specific structured payload of a Tag.
// Implementations are SMTPCommand, HTTPRequest, HTTPResponse and FTPResponse.
type Fields interface {
	Family() Family
	Role() Role
	// Line serializes the fields back into a protocol line, CRLF terminated.
	Line() string
	Labels() Labels
}

// Tag is the classification result for a packet. A tag is only built from a
// fully matched grammar and is never mutated afterwards.
type Tag struct {
	Family Family
	Role   Role
	Fields Fields
}

// NewTag builds a tag whose family and role come from the fields themselves.
func NewTag(f Fields) *Tag {
	return &Tag{Family: f.Family(), Role: f.Role(), Fields: f}
}

// Is reports whether the tag belongs to the given family and role.
// A zero family or role matches anything.
func (t *Tag) Is(f Family, r Role) bool {
	if t == nil {
		return false
	}
	return (f == FamilyNone || t.Family == f) && (r == RoleNone || t.Role == r)
}

// Labels flattens the tag into labels for reporters.
func (t *Tag) Labels() Labels {
	labels := t.Fields.Labels()
	labels[LabelFamily] = t.Family.String()
	labels[LabelRole] = t.Role.String()
	return labels
}

func (t *Tag) String() string {
	return t.Family.String() + "/" + t.Role.String()
}

// SMTPCommand is a client command line such as "MAIL FROM:<a@b>".
type SMTPCommand struct {
	Verb     string
	Argument string
}

func (SMTPCommand) Family() Family { return FamilySMTP }
func (SMTPCommand) Role() Role     { return RoleRequest }

func (c SMTPCommand) Line() string {
	if c.Argument == "" {
		return c.Verb + "\r\n"
	}
	return c.Verb + " " + c.Argument + "\r\n"
}

func (c SMTPCommand) Labels() Labels {
	return Labels{
		LabelSMTPVerb:     c.Verb,
		LabelSMTPArgument: c.Argument,
	}
}

// HTTPRequest is an HTTP request line.
type HTTPRequest struct {
	Method  string
	Target  string
	Version string // "major.minor"
}

func (HTTPRequest) Family() Family { return FamilyHTTP }
func (HTTPRequest) Role() Role     { return RoleRequest }

func (r HTTPRequest) Line() string {
	return r.Method + " " + r.Target + " HTTP/" + r.Version + "\r\n"
}

func (r HTTPRequest) Labels() Labels {
	return Labels{
		LabelHTTPMethod:  r.Method,
		LabelHTTPTarget:  r.Target,
		LabelHTTPVersion: r.Version,
	}
}

// HTTPResponse is an HTTP status line.
type HTTPResponse struct {
	Version    string // "major.minor"
	StatusCode int
	Reason     string
}

func (HTTPResponse) Family() Family { return FamilyHTTP }
func (HTTPResponse) Role() Role     { return RoleResponse }

func (r HTTPResponse) Line() string {
	return "HTTP/" + r.Version + " " + pad3(r.StatusCode) + " " + r.Reason + "\r\n"
}

func (r HTTPResponse) Labels() Labels {
	return Labels{
		LabelHTTPVersion:    r.Version,
		LabelHTTPStatusCode: strconv.Itoa(r.StatusCode),
		LabelHTTPReason:     r.Reason,
	}
}

// FTPResponse is a control-channel reply line.
type FTPResponse struct {
	Code      int
	Continued bool // '-' separator, more lines of the same reply follow
	Text      string
}

func (FTPResponse) Family() Family { return FamilyFTP }
func (FTPResponse) Role() Role     { return RoleResponse }

func (r FTPResponse) Line() string {
	sep := " "
	if r.Continued {
		sep = "-"
	}
	return pad3(r.Code) + sep + r.Text + "\r\n"
}

func (r FTPResponse) Labels() Labels {
	return Labels{
		LabelFTPCode:      pad3(r.Code),
		LabelFTPText:      r.Text,
		LabelFTPContinued: strconv.FormatBool(r.Continued),
	}
}

// pad3 renders a three-digit code, keeping leading zeros.
func pad3(code int) string {
	s := strconv.Itoa(code)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
