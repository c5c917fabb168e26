// Package android extracts declared runtime permissions from Android
// packages by scraping the inspection tool's badging and permissions dumps.
package android

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"permgate/internal/identity"
	"permgate/internal/permission"
)

// ErrPackageIdentity is returned when no well-formed owning package identity
// can be parsed from the badging dump. A malformed identity makes
// normalization unsound, so this aborts the whole run.
var ErrPackageIdentity = errors.New("unparseable package identity")

// Source tags where the permissions came from.
const (
	SourceAPK = "apk"
	SourceAAB = "aab"
)

// Inspector is the Android inspection collaborator (aapt/aapt2).
type Inspector interface {
	DumpPermissions(ctx context.Context, packagePath string) (string, error)
	DumpBadging(ctx context.Context, packagePath string) (string, error)
}

// PackageInfo is the owning identity block of an extraction.
type PackageInfo struct {
	Name        string `json:"name"`
	VersionCode string `json:"versionCode,omitempty"`
	VersionName string `json:"versionName,omitempty"`
}

// Extraction is the per-artifact summary emitted for an Android package.
type Extraction struct {
	Platform     string                  `json:"platform"`
	Source       string                  `json:"source"`
	Artifact     string                  `json:"artifact"`
	RunID        string                  `json:"runId"`
	ExtractedAt  time.Time               `json:"extractedAt"`
	Package      PackageInfo             `json:"package"`
	Permissions  []permission.Normalized `json:"permissions"`
	Count        int                     `json:"count"`
	DynamicCount int                     `json:"dynamicCount"`
}

// Extractor turns an inspectable Android package into an extraction summary.
type Extractor struct {
	Inspector Inspector
	Log       *zap.Logger
}

// NewExtractor builds an extractor around the given inspection collaborator.
func NewExtractor(inspector Inspector, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{Inspector: inspector, Log: log}
}

// Extract dumps and parses the package's permission declarations.
// packagePath must already be an inspectable APK (AAB conversion happens
// upstream); artifactPath and source name the original artifact in the
// summary.
func (e *Extractor) Extract(ctx context.Context, packagePath, artifactPath, source string) (Extraction, error) {
	badging, err := e.Inspector.DumpBadging(ctx, packagePath)
	if err != nil {
		return Extraction{}, errors.Wrap(err, "dump badging")
	}

	info, err := ParseBadging(badging)
	if err != nil {
		return Extraction{}, err
	}
	owner := identity.Owner(info.Name)

	dump, err := e.Inspector.DumpPermissions(ctx, packagePath)
	if err != nil {
		return Extraction{}, errors.Wrap(err, "dump permissions")
	}

	records, err := ParsePermissions(dump)
	if err != nil {
		return Extraction{}, err
	}

	normalized := make([]permission.Normalized, 0, len(records))
	dynamicCount := 0
	for _, rec := range records {
		dynamic := identity.IsDynamic(rec.RawName, owner)
		if dynamic {
			dynamicCount++
		}
		normalized = append(normalized, permission.Normalized{
			Raw:           rec.RawName,
			Name:          identity.Normalize(rec.RawName, owner),
			Dynamic:       dynamic,
			MaxSDKVersion: rec.MaxSDKVersion,
		})
	}

	e.Log.Debug("android extraction complete",
		zap.String("package", info.Name),
		zap.Int("permissions", len(normalized)),
		zap.Int("dynamic", dynamicCount))

	return Extraction{
		Platform:     "android",
		Source:       source,
		Artifact:     artifactPath,
		RunID:        uuid.NewString(),
		ExtractedAt:  time.Now().UTC(),
		Package:      info,
		Permissions:  normalized,
		Count:        len(normalized),
		DynamicCount: dynamicCount,
	}, nil
}

// Set builds the canonical Android permission set for this extraction.
func (x Extraction) Set() []permission.AndroidPermission {
	return permission.BuildAndroidSet(x.Permissions)
}
