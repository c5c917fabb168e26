package tooling

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Workspace is a temporary directory owning every intermediate artifact of
// one run (unpacked archives, downloaded files, converted packages). The
// caller must Close it on every exit path; Close removes the whole tree.
type Workspace struct {
	root string
}

// NewWorkspace creates a fresh temporary workspace.
func NewWorkspace() (*Workspace, error) {
	root, err := os.MkdirTemp("", "permgate-")
	if err != nil {
		return nil, errors.Wrap(err, "create workspace")
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Subdir creates (if needed) and returns a named directory inside the
// workspace.
func (w *Workspace) Subdir(name string) (string, error) {
	dir := filepath.Join(w.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create workspace subdir")
	}
	return dir, nil
}

// Close removes the workspace and everything in it. Safe to call more than
// once.
func (w *Workspace) Close() error {
	if w.root == "" {
		return nil
	}
	err := os.RemoveAll(w.root)
	w.root = ""
	return err
}
