// Package gate orchestrates extraction, baseline comparison and baseline
// updates. It is the state machine behind the extract, validate and update
// commands.
package gate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"permgate/internal/android"
	"permgate/internal/baseline"
	"permgate/internal/drift"
	"permgate/internal/fetch"
	"permgate/internal/ios"
	"permgate/internal/permission"
	"permgate/internal/tooling"
)

// ErrInput is returned for artifacts that do not exist or carry an
// unsupported extension.
var ErrInput = errors.New("invalid input artifact")

// Exit codes. Drift is a designed FAIL outcome of the policy gate;
// infrastructure failures get a distinct code so downstream tooling can
// tell "build broke" from "gate triggered".
const (
	ExitPass    = 0
	ExitDrift   = 1
	ExitFailure = 2
)

// AndroidExtractor extracts permissions from an inspectable APK.
type AndroidExtractor interface {
	Extract(ctx context.Context, packagePath, artifactPath, source string) (android.Extraction, error)
}

// IOSExtractor extracts permissions from an unpacked IPA tree.
type IOSExtractor interface {
	Extract(rootDir, artifactPath string) (ios.Extraction, error)
}

// Converter turns an Android App Bundle into an inspectable universal APK.
type Converter interface {
	BuildUniversalPackage(ctx context.Context, bundlePath, workDir string) (string, error)
}

// Fetcher retrieves remote artifacts into a local directory.
type Fetcher interface {
	Fetch(ctx context.Context, url string, creds fetch.Credentials, destDir string) (string, error)
}

// Controller wires the collaborators together. Converter may be nil when no
// AAB artifact is expected; processing an AAB without one is a
// tool-not-found failure.
type Controller struct {
	Store     *baseline.Store
	Android   AndroidExtractor
	IOS       IOSExtractor
	Converter Converter
	Fetcher   Fetcher
	Creds     fetch.Credentials
	Log       *zap.Logger
}

// Outcome is the result of a validate run.
type Outcome struct {
	Report   drift.Report
	FirstRun bool
	Profile  permission.Profile
}

// Validate extracts the given artifacts and diffs them against the stored
// baseline. On a first run (baseline file absent) the current extraction is
// persisted as the initial baseline and the verdict passes.
func (c *Controller) Validate(ctx context.Context, artifacts []string) (Outcome, error) {
	profile, err := c.extractAll(ctx, artifacts)
	if err != nil {
		return Outcome{}, err
	}

	base, exists, err := c.Store.Load()
	if err != nil {
		return Outcome{}, err
	}

	if !exists {
		c.log().Debug("baseline absent, synthesizing initial baseline",
			zap.String("path", c.Store.Path))
		initial := baseline.FromProfile(profile, time.Now())
		if err := c.Store.Save(initial); err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Report:   drift.Detect(profile, initial),
			FirstRun: true,
			Profile:  profile,
		}, nil
	}

	return Outcome{
		Report:  drift.Detect(profile, base),
		Profile: profile,
	}, nil
}

// Update extracts the given artifacts and unconditionally persists the
// result as the new baseline.
func (c *Controller) Update(ctx context.Context, artifacts []string) (baseline.Baseline, error) {
	profile, err := c.extractAll(ctx, artifacts)
	if err != nil {
		return baseline.Baseline{}, err
	}

	b := baseline.FromProfile(profile, time.Now())
	if err := c.Store.Save(b); err != nil {
		return baseline.Baseline{}, err
	}
	return b, nil
}

// ExtractAndroid extracts a single Android artifact (APK or AAB, local or
// remote) and returns its summary without touching the baseline.
func (c *Controller) ExtractAndroid(ctx context.Context, ref string) (android.Extraction, error) {
	ws, err := tooling.NewWorkspace()
	if err != nil {
		return android.Extraction{}, err
	}
	defer ws.Close()

	local, err := c.localize(ctx, ws, 0, ref)
	if err != nil {
		return android.Extraction{}, err
	}

	switch artifactKind(local) {
	case ".apk", ".aab":
		return c.extractAndroidLocal(ctx, ws, 0, local, ref)
	default:
		return android.Extraction{}, errors.Wrapf(ErrInput, "not an Android artifact: %s", ref)
	}
}

// ExtractIOS extracts a single IPA (local or remote) and returns its
// summary without touching the baseline.
func (c *Controller) ExtractIOS(ctx context.Context, ref string) (ios.Extraction, error) {
	ws, err := tooling.NewWorkspace()
	if err != nil {
		return ios.Extraction{}, err
	}
	defer ws.Close()

	local, err := c.localize(ctx, ws, 0, ref)
	if err != nil {
		return ios.Extraction{}, err
	}

	if artifactKind(local) != ".ipa" {
		return ios.Extraction{}, errors.Wrapf(ErrInput, "not an iOS artifact: %s", ref)
	}
	return c.extractIOSLocal(ws, 0, local, ref)
}

// extractAll processes artifacts strictly in the supplied order. Any
// failure aborts the whole run; there is no best-effort continuation. All
// intermediate files live in one workspace removed on every exit path.
func (c *Controller) extractAll(ctx context.Context, artifacts []string) (permission.Profile, error) {
	if len(artifacts) == 0 {
		return permission.Profile{}, errors.Wrap(ErrInput, "no artifacts given")
	}

	ws, err := tooling.NewWorkspace()
	if err != nil {
		return permission.Profile{}, err
	}
	defer ws.Close()

	var profile permission.Profile
	for i, ref := range artifacts {
		if err := c.processArtifact(ctx, ws, i, ref, &profile); err != nil {
			return permission.Profile{}, errors.Wrapf(err, "artifact %s", ref)
		}
	}

	return profile, nil
}

func (c *Controller) processArtifact(ctx context.Context, ws *tooling.Workspace, index int, ref string, profile *permission.Profile) error {
	local, err := c.localize(ctx, ws, index, ref)
	if err != nil {
		return err
	}

	switch kind := artifactKind(local); kind {
	case ".apk", ".aab":
		extraction, err := c.extractAndroidLocal(ctx, ws, index, local, ref)
		if err != nil {
			return err
		}
		profile.MergeAndroid(extraction.Set())
		return nil

	case ".ipa":
		extraction, err := c.extractIOSLocal(ws, index, local, ref)
		if err != nil {
			return err
		}
		profile.MergeIOS(extraction.Permissions)
		return nil

	default:
		return errors.Wrapf(ErrInput, "unsupported artifact extension %q", kind)
	}
}

// localize turns an artifact reference into a local file path, downloading
// remote references into the workspace.
func (c *Controller) localize(ctx context.Context, ws *tooling.Workspace, index int, ref string) (string, error) {
	local := ref
	if fetch.IsRemote(ref) {
		dir, err := ws.Subdir(fmt.Sprintf("download-%d", index))
		if err != nil {
			return "", err
		}
		local, err = c.Fetcher.Fetch(ctx, ref, c.Creds, dir)
		if err != nil {
			return "", err
		}
	}

	if _, err := os.Stat(local); err != nil {
		return "", errors.Wrapf(ErrInput, "%s: %v", local, err)
	}
	return local, nil
}

func (c *Controller) extractAndroidLocal(ctx context.Context, ws *tooling.Workspace, index int, local, ref string) (android.Extraction, error) {
	if c.Android == nil {
		return android.Extraction{}, errors.Wrap(tooling.ErrToolNotFound, "android inspection tool required for APK/AAB artifacts")
	}

	source := android.SourceAPK
	packagePath := local

	if artifactKind(local) == ".aab" {
		if c.Converter == nil {
			return android.Extraction{}, errors.Wrap(tooling.ErrToolNotFound, "bundle converter required for AAB artifacts")
		}
		workDir, err := ws.Subdir(fmt.Sprintf("bundle-%d", index))
		if err != nil {
			return android.Extraction{}, err
		}
		packagePath, err = c.Converter.BuildUniversalPackage(ctx, local, workDir)
		if err != nil {
			return android.Extraction{}, err
		}
		source = android.SourceAAB
	}

	return c.Android.Extract(ctx, packagePath, ref, source)
}

func (c *Controller) extractIOSLocal(ws *tooling.Workspace, index int, local, ref string) (ios.Extraction, error) {
	destDir, err := ws.Subdir(fmt.Sprintf("container-%d", index))
	if err != nil {
		return ios.Extraction{}, err
	}
	root, err := tooling.Unpack(local, destDir)
	if err != nil {
		return ios.Extraction{}, err
	}
	return c.IOS.Extract(root, ref)
}

func artifactKind(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func (c *Controller) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// ExitCode maps the terminal error of a run to the process exit code. It is
// the single owner of the exit-code policy; callers never re-derive it.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitPass
	case errors.Is(err, drift.ErrDriftDetected):
		return ExitDrift
	default:
		return ExitFailure
	}
}
