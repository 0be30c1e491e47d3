// Package core defines sentinel errors.
package core

import "errors"

var (
	// ErrContractViolation marks input that a packet source must never produce.
	ErrContractViolation = errors.New("tagger: contract violation")
	ErrInvalidPort       = errors.New("tagger: port out of range")

	// Lookup errors
	ErrUnknownFamily = errors.New("tagger: unknown protocol family")
	ErrUnknownRole   = errors.New("tagger: unknown message role")

	// Capture source errors
	ErrUnsupportedLinkType = errors.New("tagger: unsupported link type")
	ErrInvalidFilter       = errors.New("tagger: invalid capture filter")

	// Configuration errors
	ErrConfigInvalid = errors.New("tagger: invalid configuration")

	// Plugin errors
	ErrPluginNotFound = errors.New("tagger: plugin not found")
)
