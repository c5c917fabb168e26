// Package tooling implements the external collaborators the gate depends
// on: temporary workspaces, archive unpacking, the Android inspection tool
// (aapt/aapt2), the bundle-format converter (bundletool) and the
// property-list reader. Every collaborator either returns a complete result
// or fails outright; none retries internally.
package tooling

import "github.com/cockroachdb/errors"

var (
	// ErrToolNotFound is returned when no candidate of a required external
	// tool is installed.
	ErrToolNotFound = errors.New("required external tool not found")

	// ErrUnpack is returned when an archive cannot be opened or extracted.
	ErrUnpack = errors.New("unable to unpack archive")

	// ErrPlistConversion is returned when a property list cannot be parsed
	// as a structured key-value document.
	ErrPlistConversion = errors.New("unable to convert property list")
)
