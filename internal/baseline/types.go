// Package baseline persists the last-approved permission snapshot the gate
// compares against.
package baseline

import (
	"time"

	"permgate/internal/permission"
)

// Baseline is the last-approved permission snapshot per platform. It is
// persisted as a single flat JSON document and always overwritten wholesale,
// never merged.
type Baseline struct {
	IOS         map[string]string              `json:"ios"`
	Android     []permission.AndroidPermission `json:"android"`
	LastUpdated time.Time                      `json:"lastUpdated"`
}

// Empty returns the empty-shaped baseline used on first run.
func Empty() Baseline {
	return Baseline{
		IOS:     map[string]string{},
		Android: []permission.AndroidPermission{},
	}
}

// FromProfile builds a baseline out of the current extraction profile,
// stamped with the given time. Platforms absent from the profile keep their
// empty shape.
func FromProfile(p permission.Profile, now time.Time) Baseline {
	b := Empty()
	if p.HasAndroid {
		b.Android = p.Android
	}
	if p.HasIOS {
		b.IOS = p.IOS
	}
	b.LastUpdated = now.UTC()
	return b
}
