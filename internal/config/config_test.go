package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permgate/internal/baseline"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, baseline.DefaultPath, s.Baseline)
	assert.Equal(t, 60*time.Second, s.FetchTimeout)
	assert.False(t, s.Insecure)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gate.yaml")
	require.NoError(t, os.WriteFile(file, []byte("baseline: ci/perms.json\naapt: /opt/sdk/aapt2\n"), 0o644))

	s, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "ci/perms.json", s.Baseline)
	assert.Equal(t, "/opt/sdk/aapt2", s.AAPT)
	assert.Equal(t, 60*time.Second, s.FetchTimeout) // untouched default
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gate.yaml")
	require.NoError(t, os.WriteFile(file, []byte("baseline: ci/perms.json\n"), 0o644))

	t.Setenv("PERMGATE_BASELINE", "env/perms.json")
	t.Setenv("PERMGATE_FETCH_TIMEOUT", "90s")

	s, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "env/perms.json", s.Baseline)
	assert.Equal(t, 90*time.Second, s.FetchTimeout)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaultFileFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("insecure: true\n"), 0o644))
	chdir(t, dir)

	s, err := Load("")
	require.NoError(t, err)
	assert.True(t, s.Insecure)
}

func TestLoadMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gate.yaml")
	require.NoError(t, os.WriteFile(file, []byte("baseline: [unclosed"), 0o644))

	_, err := Load(file)
	assert.Error(t, err)
}
