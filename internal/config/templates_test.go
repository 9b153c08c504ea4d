package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTemplates_ContainsBuiltins(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, tpl := range ListTemplates() {
		names[tpl.Name] = true
	}
	assert.True(t, names["base"])
	assert.True(t, names["ci"])
	assert.True(t, names["dev"])
}

func TestGetTemplate_Known(t *testing.T) {
	t.Parallel()

	content, err := GetTemplate("ci")
	require.NoError(t, err)
	assert.Contains(t, content, "mode = \"fail\"")
}

func TestGetTemplate_Unknown(t *testing.T) {
	t.Parallel()

	_, err := GetTemplate("nonexistent")
	require.Error(t, err)
}

func TestRenderTemplate_ReplacesPlaceholder(t *testing.T) {
	t.Parallel()

	content, err := RenderTemplate("base", "my-project")
	require.NoError(t, err)
	assert.True(t, strings.Contains(content, "my-project"))
	assert.False(t, strings.Contains(content, "{{project_name}}"))
}
