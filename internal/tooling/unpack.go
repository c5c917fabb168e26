package tooling

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Unpack extracts a ZIP-based archive (APK, AAB, IPA, APKS) into destDir and
// returns destDir. Entries escaping the destination directory are rejected.
func Unpack(archivePath, destDir string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errors.Wrapf(ErrUnpack, "%s: %v", archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractEntry(file, destDir); err != nil {
			return "", err
		}
	}

	return destDir, nil
}

func extractEntry(file *zip.File, destDir string) error {
	path := filepath.Join(destDir, file.Name)

	// Zip-slip guard.
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return errors.Wrapf(ErrUnpack, "entry %q escapes destination", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create entry directory")
	}

	rc, err := file.Open()
	if err != nil {
		return errors.Wrapf(ErrUnpack, "open entry %q: %v", file.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "create extracted file")
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return errors.Wrapf(ErrUnpack, "extract entry %q: %v", file.Name, err)
	}

	return nil
}
