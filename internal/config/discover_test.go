package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverRepoConfig_FindsInStartDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[profile.default]\n"), 0o644))

	found, err := DiscoverRepoConfig(dir)
	require.NoError(t, err)

	wantResolved, err := filepath.EvalSymlinks(configPath)
	require.NoError(t, err)
	assert.Equal(t, wantResolved, found)
}

func TestDiscoverRepoConfig_FindsInParentDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "engine.toml"), []byte("[profile.default]\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := DiscoverRepoConfig(nested)
	require.NoError(t, err)
	assert.NotEmpty(t, found)
}

func TestDiscoverRepoConfig_StopsAtGitBoundary(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "repo", ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "repo", "sub"), 0o755))
	// engine.toml only exists above the .git boundary; must not be found.
	require.NoError(t, os.WriteFile(filepath.Join(root, "engine.toml"), []byte("[profile.default]\n"), 0o644))

	found, err := DiscoverRepoConfig(filepath.Join(root, "repo", "sub"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverRepoConfig_NoConfigAnywhere(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	found, err := DiscoverRepoConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverGlobalConfig_RespectsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "engine")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[profile.default]\n"), 0o644))

	found, err := DiscoverGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "config.toml"), found)
}

func TestDiscoverGlobalConfig_MissingReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	found, err := DiscoverGlobalConfig()
	require.NoError(t, err)
	assert.Empty(t, found)
}
