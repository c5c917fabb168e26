// Package drift computes permission-set differences between the current
// extraction and the stored baseline and renders the gate verdict.
package drift

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"permgate/internal/baseline"
	"permgate/internal/permission"
)

// ErrDriftDetected marks the designed FAIL outcome of a validate run. It is
// reported with full added/removed detail and carries exit semantics
// distinct from infrastructure failures.
var ErrDriftDetected = errors.New("permission drift detected")

// Platform tags used in diff output.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// PlatformDiff is the per-platform drift result.
type PlatformDiff struct {
	Platform string   `json:"platform"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
}

// Empty reports whether the platform shows no drift.
func (d PlatformDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Report is the full drift analysis of one validation run.
type Report struct {
	HasDrift     bool           `json:"hasDrift"`
	BaselineTime time.Time      `json:"baselineTime"`
	Platforms    []PlatformDiff `json:"platforms"`
}

// DiffKeys computes the set difference between two key slices over the key
// space only. Both result slices are sorted lexicographically so repeated
// runs over the same inputs produce identical output.
func DiffKeys(current, base []string) (added, removed []string) {
	inCurrent := make(map[string]bool, len(current))
	for _, k := range current {
		inCurrent[k] = true
	}
	inBase := make(map[string]bool, len(base))
	for _, k := range base {
		inBase[k] = true
	}

	added = []string{}
	for k := range inCurrent {
		if !inBase[k] {
			added = append(added, k)
		}
	}
	removed = []string{}
	for k := range inBase {
		if !inCurrent[k] {
			removed = append(removed, k)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// Detect diffs the current profile against the baseline. Only platforms the
// profile actually carries are judged: a run that extracted no iOS artifact
// says nothing about iOS drift. Identifier values (descriptions, SDK
// ceilings) are not compared; the gate cares about capability surface, not
// metadata.
func Detect(current permission.Profile, base baseline.Baseline) Report {
	report := Report{
		BaselineTime: base.LastUpdated,
		Platforms:    []PlatformDiff{},
	}

	if current.HasAndroid {
		added, removed := DiffKeys(
			permission.AndroidKeys(current.Android),
			permission.AndroidKeys(base.Android))
		report.Platforms = append(report.Platforms, PlatformDiff{
			Platform: PlatformAndroid,
			Added:    added,
			Removed:  removed,
		})
	}

	if current.HasIOS {
		added, removed := DiffKeys(
			permission.IOSKeys(current.IOS),
			permission.IOSKeys(base.IOS))
		report.Platforms = append(report.Platforms, PlatformDiff{
			Platform: PlatformIOS,
			Added:    added,
			Removed:  removed,
		})
	}

	for _, p := range report.Platforms {
		if !p.Empty() {
			report.HasDrift = true
			break
		}
	}

	return report
}
