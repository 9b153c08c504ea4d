package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCheckCommandRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "config" {
			found = true
		}
	}
	assert.True(t, found, "config must be registered on root")
}

func TestConfigCheckReportsCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[profile.default]
mode = "warn"
`), 0o644))

	code, out := runCLI(t, "config", "check", path)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "checked 1 profile(s)")
}

func TestConfigCheckFailsOnInvalidMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[profile.default]
mode = "bogus"
`), 0o644))

	code, out := runCLI(t, "config", "check", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "mode")
}

func TestConfigCheckReportsLintCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[profile.default]
mode = "warn"

[profile.default.rules]
enabled = ["owl-cycle"]
disabled = ["owl-cycle"]
`), 0o644))

	code, out := runCLI(t, "config", "check", path)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "[conflicting-rule]")
}
