package tooling

import (
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// aaptCandidates is the ordered capability-probe list for the Android
// inspection tool: aapt2 preferred, classic aapt as fallback.
var aaptCandidates = []string{"aapt2", "aapt"}

// AAPT is the Android inspection collaborator, resolved once at startup and
// injected into the extractor.
type AAPT struct {
	path   string
	runner *Runner
}

// ResolveAAPT probes the candidate tools in order and returns the first one
// present on PATH. An explicit override short-circuits the probe.
func ResolveAAPT(runner *Runner, override string) (*AAPT, error) {
	candidates := aaptCandidates
	if override != "" {
		candidates = []string{override}
	}

	for _, candidate := range candidates {
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		runner.Log.Debug("resolved android inspection tool",
			zap.String("candidate", candidate),
			zap.String("path", path))
		return &AAPT{path: path, runner: runner}, nil
	}

	return nil, errors.Wrapf(ErrToolNotFound,
		"android inspection tool (tried %s)", strings.Join(candidates, ", "))
}

// DumpPermissions returns the raw permissions dump for an Android package.
func (a *AAPT) DumpPermissions(ctx context.Context, packagePath string) (string, error) {
	return a.runner.Run(ctx, a.path, "dump", "permissions", packagePath)
}

// DumpBadging returns the raw badging dump for an Android package.
func (a *AAPT) DumpBadging(ctx context.Context, packagePath string) (string, error) {
	return a.runner.Run(ctx, a.path, "dump", "badging", packagePath)
}
