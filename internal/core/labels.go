// Package core defines core types.
package core

// Labels represents key-value metadata derived from a tag.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelFamily = "tag.family"
	LabelRole   = "tag.role"

	LabelSMTPVerb     = "smtp.verb"
	LabelSMTPArgument = "smtp.argument"

	LabelHTTPMethod     = "http.method"
	LabelHTTPTarget     = "http.target"
	LabelHTTPVersion    = "http.version"
	LabelHTTPStatusCode = "http.status_code"
	LabelHTTPReason     = "http.reason"

	LabelFTPCode      = "ftp.code"
	LabelFTPText      = "ftp.text"
	LabelFTPContinued = "ftp.continued" // "true" when the code is followed by '-'
)
