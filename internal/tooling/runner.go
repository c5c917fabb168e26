package tooling

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single external tool invocation when the caller's
// context carries no earlier deadline.
const DefaultTimeout = 3 * time.Minute

// Runner executes external tools, capturing stdout and logging through the
// provided logger. Shell interpolation is never used; arguments are passed
// verbatim to the executable.
type Runner struct {
	Timeout time.Duration
	Log     *zap.Logger
}

// NewRunner returns a runner with the default timeout.
func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Timeout: DefaultTimeout, Log: log}
}

// Run invokes name with args and returns its stdout. Stderr is captured
// separately and included in the error on failure.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.Log.Debug("running external tool",
		zap.String("tool", name),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.Log.Debug("external tool finished",
		zap.String("tool", name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("failed", err != nil))

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", errors.Wrapf(err, "%s: %s", name, msg)
		}
		return "", errors.Wrapf(err, "%s", name)
	}

	return stdout.String(), nil
}
