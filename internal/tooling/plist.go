package tooling

import (
	"os"

	"github.com/cockroachdb/errors"
	"howett.net/plist"
)

// ReadPlist decodes an XML or binary property list into a structured
// key-value document.
func ReadPlist(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read property list")
	}

	var doc map[string]interface{}
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrPlistConversion, "%s: %v", path, err)
	}

	return doc, nil
}
