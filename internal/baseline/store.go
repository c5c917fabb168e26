package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// DefaultPath is the baseline file location relative to the working
// directory when no override is configured.
const DefaultPath = ".permgate/baseline.json"

// Store manages the persisted baseline document.
type Store struct {
	Path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the baseline document. An absent file is not an error: it
// signals a first run and yields the empty-shaped baseline with exists
// false.
func (s *Store) Load() (Baseline, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), false, nil
		}
		return Baseline{}, false, errors.Wrap(err, "read baseline")
	}

	b := Empty()
	if err := json.Unmarshal(data, &b); err != nil {
		return Baseline{}, false, errors.Wrapf(err, "parse baseline %s", s.Path)
	}
	if b.IOS == nil {
		b.IOS = map[string]string{}
	}

	return b, true, nil
}

// Save overwrites the baseline document atomically: the new content is
// written to a temporary file in the same directory and renamed over the
// target, so a failed write never leaves a partial baseline behind.
func (s *Store) Save(b Baseline) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create baseline directory")
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode baseline")
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".baseline-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp baseline")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write baseline")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close baseline")
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace baseline")
	}

	return nil
}
