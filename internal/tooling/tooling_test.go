package tooling

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := NewWorkspace()
	require.NoError(t, err)

	sub, err := ws.Subdir("unpacked")
	require.NoError(t, err)
	require.DirExists(t, sub)

	root := ws.Root()
	require.NoError(t, ws.Close())
	assert.NoDirExists(t, root)

	// Close is idempotent.
	assert.NoError(t, ws.Close())
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestUnpack(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "app.ipa")
	writeZip(t, archive, map[string]string{
		"Payload/Demo.app/Info.plist": "<plist/>",
		"Payload/Demo.app/Demo":       "binary",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	root, err := Unpack(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, root)
	assert.FileExists(t, filepath.Join(dest, "Payload", "Demo.app", "Info.plist"))
}

func TestUnpackRejectsNonArchive(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "not-a-zip.apk")
	require.NoError(t, os.WriteFile(bogus, []byte("plain text"), 0o644))

	_, err := Unpack(bogus, dir)
	assert.ErrorIs(t, err, ErrUnpack)
}

func TestUnpackRejectsEscapingEntry(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{
		"../escape.txt": "nope",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	_, err := Unpack(archive, dest)
	assert.ErrorIs(t, err, ErrUnpack)
}

func TestResolveAAPTNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := ResolveAAPT(NewRunner(zap.NewNop()), "")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestResolveAAPTProbeOrder(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"aapt", "aapt2"} {
		path := filepath.Join(binDir, name)
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	}
	t.Setenv("PATH", binDir)

	tool, err := ResolveAAPT(NewRunner(zap.NewNop()), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(binDir, "aapt2"), tool.path)
}

func TestResolveAAPTOverride(t *testing.T) {
	binDir := t.TempDir()
	path := filepath.Join(binDir, "custom-aapt")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", binDir)

	tool, err := ResolveAAPT(NewRunner(zap.NewNop()), "custom-aapt")
	require.NoError(t, err)
	assert.Equal(t, path, tool.path)
}

func TestRunnerCapturesStdout(t *testing.T) {
	out, err := NewRunner(zap.NewNop()).Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunnerReportsStderrOnFailure(t *testing.T) {
	_, err := NewRunner(zap.NewNop()).Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestReadPlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Info.plist")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.demo</string>
	<key>NSCameraUsageDescription</key>
	<string>Takes photos</string>
</dict>
</plist>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	parsed, err := ReadPlist(path)
	require.NoError(t, err)
	assert.Equal(t, "com.example.demo", parsed["CFBundleIdentifier"])
	assert.Equal(t, "Takes photos", parsed["NSCameraUsageDescription"])
}

func TestReadPlistRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Info.plist")
	require.NoError(t, os.WriteFile(path, []byte("not a plist at all {{"), 0o644))

	_, err := ReadPlist(path)
	assert.ErrorIs(t, err, ErrPlistConversion)
}
