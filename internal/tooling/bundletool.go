package tooling

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Bundletool converts Android App Bundles into inspectable universal APKs.
type Bundletool struct {
	path   string
	runner *Runner
}

// ResolveBundletool locates the bundletool executable. The tool is required
// only when an AAB artifact is processed; absence is fatal for that run.
func ResolveBundletool(runner *Runner, override string) (*Bundletool, error) {
	candidate := "bundletool"
	if override != "" {
		candidate = override
	}

	path, err := exec.LookPath(candidate)
	if err != nil {
		return nil, errors.Wrapf(ErrToolNotFound, "bundle converter %q", candidate)
	}
	return &Bundletool{path: path, runner: runner}, nil
}

// BuildUniversalPackage converts bundlePath into a universal APK inside
// workDir and returns the APK path. bundletool emits a .apks container (a
// ZIP holding universal.apk), which is unpacked in place.
func (b *Bundletool) BuildUniversalPackage(ctx context.Context, bundlePath, workDir string) (string, error) {
	apksPath := filepath.Join(workDir, "universal.apks")

	_, err := b.runner.Run(ctx, b.path,
		"build-apks",
		"--bundle="+bundlePath,
		"--output="+apksPath,
		"--mode=universal")
	if err != nil {
		return "", errors.Wrap(err, "build universal package")
	}

	if _, err := Unpack(apksPath, workDir); err != nil {
		return "", err
	}

	return filepath.Join(workDir, "universal.apk"), nil
}
