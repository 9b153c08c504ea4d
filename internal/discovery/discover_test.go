package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverTemplates_FindsFilesAndSkipsDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmpl"), "hello")
	writeFile(t, filepath.Join(root, "sub", "b.tmpl"), "world")
	writeFile(t, filepath.Join(root, "node_modules", "c.tmpl"), "skip me")

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tmpl", "sub/b.tmpl"}, got)
}

func TestDiscoverTemplates_RespectsEngineignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.tmpl"), "keep")
	writeFile(t, filepath.Join(root, "scratch.tmpl"), "scratch")
	writeFile(t, filepath.Join(root, ".engineignore"), "scratch.tmpl\n")

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.tmpl"}, got)
}

func TestDiscoverTemplates_IncludeFilterNarrowsResults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmpl"), "a")
	writeFile(t, filepath.Join(root, "b.md"), "b")

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root, Include: []string{"*.tmpl"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tmpl"}, got)
}

func TestDiscoverTemplates_SkipsBinaryFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "text.tmpl"), "hello")
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.tmpl"), []byte{0x00, 0x01, 0x02}, 0o644))

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"text.tmpl"}, got)
}

func TestDiscoverTemplates_SkipsFilesOverMaxSize(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.tmpl"), "hello")
	writeFile(t, filepath.Join(root, "big.tmpl"), "0123456789")

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root, MaxFileSize: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.tmpl"}, got)
}

func TestDiscoverTemplates_NegativeMaxSizeDisablesCheck(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.tmpl"), "0123456789")

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root, MaxFileSize: -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"big.tmpl"}, got)
}

func TestDiscoverTemplates_FollowsSymlinkedDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	realDir := t.TempDir()
	writeFile(t, filepath.Join(realDir, "linked.tmpl"), "hello")

	require.NoError(t, os.Symlink(realDir, filepath.Join(root, "shared")))

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared/linked.tmpl"}, got)
}

func TestDiscoverTemplates_SkipsSymlinkLoop(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tmpl"), "a")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	got, err := DiscoverTemplates(TemplateDiscoveryConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tmpl"}, got)
}
