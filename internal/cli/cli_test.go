package cli

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permgate/internal/baseline"
	"permgate/internal/drift"
	"permgate/internal/permission"
)

const testPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.demo</string>
	<key>NSCameraUsageDescription</key>
	<string>Takes photos</string>
	<key>NSMicrophoneUsageDescription</key>
	<string>Records audio</string>
</dict>
</plist>`

func writeIPA(t *testing.T, dir string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("Payload/Demo.app/Info.plist")
	require.NoError(t, err)
	_, err = f.Write([]byte(testPlist))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "demo.ipa")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)

	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestExtractIOSCommand(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)

	stdout, _, err := execute(t, "extract", "ios", ipa, "--baseline", filepath.Join(dir, "b.json"))
	require.NoError(t, err)

	var payload struct {
		Platform    string            `json:"platform"`
		BundleID    string            `json:"bundleId"`
		Permissions map[string]string `json:"permissions"`
		Count       int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "ios", payload.Platform)
	assert.Equal(t, "com.example.demo", payload.BundleID)
	assert.Equal(t, 2, payload.Count)
	assert.Contains(t, payload.Permissions, "NSCameraUsageDescription")
}

func TestValidateFirstRun(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	stdout, stderr, err := execute(t, "validate", ipa, "--baseline", baselinePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "PASS")
	assert.Contains(t, stderr, "initial baseline")
	assert.FileExists(t, baselinePath)
}

func TestValidateDetectsDrift(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, baseline.NewStore(baselinePath).Save(baseline.Baseline{
		IOS:     map[string]string{"NSCameraUsageDescription": "Takes photos"},
		Android: []permission.AndroidPermission{},
	}))

	stdout, _, err := execute(t, "validate", ipa, "--baseline", baselinePath)
	require.ErrorIs(t, err, drift.ErrDriftDetected)
	assert.Contains(t, stdout, "+ NSMicrophoneUsageDescription")
	assert.Contains(t, stdout, "permgate update")
}

func TestValidateJSONOutput(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, baseline.NewStore(baselinePath).Save(baseline.Baseline{
		IOS:     map[string]string{},
		Android: []permission.AndroidPermission{},
	}))

	stdout, _, err := execute(t, "validate", ipa, "--baseline", baselinePath, "--json")
	require.ErrorIs(t, err, drift.ErrDriftDetected)

	var report drift.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.HasDrift)
	require.Len(t, report.Platforms, 1)
	assert.Len(t, report.Platforms[0].Added, 2)
}

func TestValidateCIAnnotations(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, baseline.NewStore(baselinePath).Save(baseline.Baseline{
		IOS:     map[string]string{},
		Android: []permission.AndroidPermission{},
	}))

	stdout, _, err := execute(t, "validate", ipa, "--baseline", baselinePath, "--ci")
	require.ErrorIs(t, err, drift.ErrDriftDetected)
	assert.Contains(t, stdout, "::error::Permission drift (ios)")
}

func TestUpdateCommand(t *testing.T) {
	dir := t.TempDir()
	ipa := writeIPA(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	stdout, _, err := execute(t, "update", ipa, "--baseline", baselinePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "baseline updated")

	saved, exists, err := baseline.NewStore(baselinePath).Load()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Len(t, saved.IOS, 2)
}

func TestValidateMissingArtifactFails(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "validate", filepath.Join(dir, "ghost.ipa"), "--baseline", filepath.Join(dir, "b.json"))
	require.Error(t, err)
}

func TestToolNeeds(t *testing.T) {
	tests := []struct {
		name        string
		refs        []string
		wantAndroid bool
		wantBundle  bool
	}{
		{"apk only", []string{"app.apk"}, true, false},
		{"aab", []string{"app.aab"}, true, true},
		{"ipa only", []string{"app.ipa"}, false, false},
		{"mixed", []string{"app.ipa", "other.apk"}, true, false},
		{"remote apk", []string{"https://ci.example.com/builds/app.apk"}, true, false},
		{"signed remote apk", []string{"https://ci.example.com/builds/app.apk?sig=abc"}, true, false},
		{"signed remote aab", []string{"https://ci.example.com/builds/app.aab?X-Amz-Signature=def&X-Amz-Expires=300"}, true, true},
		{"remote apk with fragment", []string{"https://ci.example.com/builds/app.apk#latest"}, true, false},
		{"uppercase ext", []string{"APP.APK"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAndroid, gotBundle := toolNeeds(tt.refs)
			assert.Equal(t, tt.wantAndroid, gotAndroid)
			assert.Equal(t, tt.wantBundle, gotBundle)
		})
	}
}
