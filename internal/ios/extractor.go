// Package ios extracts declared usage-permission keys from iOS application
// containers by reading the bundle's Info.plist.
package ios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"permgate/internal/identity"
)

// ErrBundleNotFound is returned when no application bundle exists under the
// container's Payload directory.
var ErrBundleNotFound = errors.New("no application bundle found")

// PlistReader is the property-list reader collaborator.
type PlistReader func(path string) (map[string]interface{}, error)

// Extraction is the per-artifact summary emitted for an iOS container.
type Extraction struct {
	Platform    string            `json:"platform"`
	Source      string            `json:"source"`
	Artifact    string            `json:"artifact"`
	RunID       string            `json:"runId"`
	ExtractedAt time.Time         `json:"extractedAt"`
	BundleID    string            `json:"bundleId"`
	Permissions map[string]string `json:"permissions"`
	Count       int               `json:"count"`
}

// Extractor reads permission keys out of an unpacked IPA tree.
type Extractor struct {
	ReadPlist PlistReader
	Log       *zap.Logger
}

// NewExtractor builds an extractor around the given plist collaborator.
func NewExtractor(read PlistReader, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{ReadPlist: read, Log: log}
}

// Extract locates the application bundle inside the unpacked container
// rooted at rootDir, reads its manifest and returns the filtered
// permission-key mapping. artifactPath names the original artifact in the
// summary.
func (e *Extractor) Extract(rootDir, artifactPath string) (Extraction, error) {
	bundle, err := FindBundle(rootDir)
	if err != nil {
		return Extraction{}, err
	}

	doc, err := e.ReadPlist(filepath.Join(bundle, "Info.plist"))
	if err != nil {
		return Extraction{}, err
	}

	bundleID, _ := doc["CFBundleIdentifier"].(string)
	if _, err := identity.Parse(bundleID); err != nil {
		return Extraction{}, errors.Wrapf(err, "bundle %s", filepath.Base(bundle))
	}

	perms := FilterPermissionKeys(doc)

	e.Log.Debug("ios extraction complete",
		zap.String("bundle", bundleID),
		zap.Int("permissions", len(perms)))

	return Extraction{
		Platform:    "ios",
		Source:      "ipa",
		Artifact:    artifactPath,
		RunID:       uuid.NewString(),
		ExtractedAt: time.Now().UTC(),
		BundleID:    bundleID,
		Permissions: perms,
		Count:       len(perms),
	}, nil
}

// FindBundle returns the first *.app directory under rootDir/Payload in
// lexicographic order. IPA containers carry exactly one primary bundle, so
// no disambiguation is attempted when more exist.
func FindBundle(rootDir string) (string, error) {
	payload := filepath.Join(rootDir, "Payload")
	entries, err := os.ReadDir(payload)
	if err != nil {
		return "", errors.Wrapf(ErrBundleNotFound, "%s: %v", payload, err)
	}

	var bundles []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".app") {
			bundles = append(bundles, entry.Name())
		}
	}
	if len(bundles) == 0 {
		return "", errors.Wrapf(ErrBundleNotFound, "no *.app under %s", payload)
	}
	sort.Strings(bundles)

	return filepath.Join(payload, bundles[0]), nil
}

// FilterPermissionKeys selects every manifest key that looks like a
// permission declaration. The filter is intentionally over-inclusive so new
// platform key naming conventions are swept in rather than missed: a
// non-permission key in the set is preferable to a missed permission.
func FilterPermissionKeys(doc map[string]interface{}) map[string]string {
	perms := make(map[string]string)
	for key, value := range doc {
		if !isPermissionKey(key) {
			continue
		}
		if s, ok := value.(string); ok {
			perms[key] = s
		} else {
			perms[key] = fmt.Sprintf("%v", value)
		}
	}
	return perms
}

func isPermissionKey(key string) bool {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "usage"),
		strings.Contains(lower, "permission"),
		strings.Contains(lower, "privacy"):
		return true
	case strings.HasPrefix(key, "NS") && strings.Contains(lower, "usage"):
		return true
	case strings.HasSuffix(lower, "usagedescription"):
		return true
	case strings.HasPrefix(lower, "privacy"):
		return true
	}
	return false
}
