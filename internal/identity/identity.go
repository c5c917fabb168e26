// Package identity holds the owner identity of a mobile artifact and the
// permission-name normalizer built on top of it. The owner identity is the
// reverse-domain package name (Android) or bundle identifier (iOS) that owns
// the artifact; permission identifiers namespaced under it are "dynamic"
// (app-defined) and are stripped to their suffix so they compare stably
// across builds.
package identity

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidOwner is returned when a string is not a well-formed
// reverse-domain identifier.
var ErrInvalidOwner = errors.New("invalid owner identity")

// ownerPattern matches segment(.segment)+ where a segment starts with a
// letter. Rejects numeric-only and single-segment strings.
var ownerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// Owner is a validated reverse-domain identifier (e.g. "com.example.app").
// The zero value is the unknown owner, which never matches any prefix.
type Owner string

// Parse validates raw as an owner identity.
func Parse(raw string) (Owner, error) {
	if !ownerPattern.MatchString(raw) {
		return "", errors.Wrapf(ErrInvalidOwner, "%q", raw)
	}
	return Owner(raw), nil
}

// String returns the identifier string.
func (o Owner) String() string {
	return string(o)
}

// IsDynamic reports whether rawName is namespaced under the owner, i.e.
// rawName starts with owner + ".". An empty owner never matches: treating
// the empty string as a universal prefix would classify every permission
// as dynamic, so the unknown owner fails closed.
func IsDynamic(rawName string, owner Owner) bool {
	if owner == "" {
		return false
	}
	return strings.HasPrefix(rawName, string(owner)+".")
}

// Normalize canonicalizes rawName relative to the owner: the dot-prefixed
// owner identity is stripped if present, otherwise rawName is returned
// unchanged. Normalization is idempotent because a stripped name no longer
// carries the owner prefix.
func Normalize(rawName string, owner Owner) string {
	if !IsDynamic(rawName, owner) {
		return rawName
	}
	return strings.TrimPrefix(rawName, string(owner)+".")
}
