package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NoFrontmatter(t *testing.T) {
	t.Parallel()

	tpl, warnings, err := Parse("t.tmpl", []byte("plain body\n"), true)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "plain body\n", tpl.Body)
	assert.Equal(t, ModeWrite, tpl.Frontmatter.Mode)
}

func TestParse_BasicHeader(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nto: out/{{ name }}.txt\nmode: write\n---\nHello {{ name }}!\n")
	tpl, _, err := Parse("t.tmpl", raw, true)
	require.NoError(t, err)
	assert.Equal(t, "out/{{ name }}.txt", tpl.Frontmatter.To)
	assert.Equal(t, "Hello {{ name }}!\n", tpl.Body)
}

func TestParse_UnterminatedHeader(t *testing.T) {
	t.Parallel()

	_, _, err := Parse("t.tmpl", []byte("---\nto: x\nno closing fence\n"), true)
	require.Error(t, err)
}

func TestParse_UnknownDirectiveStrictFails(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nbogus: 1\n---\nbody\n")
	_, _, err := Parse("t.tmpl", raw, true)
	require.Error(t, err)
}

func TestParse_UnknownDirectiveLaxWarns(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nbogus: 1\n---\nbody\n")
	_, warnings, err := Parse("t.tmpl", raw, false)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus")
}

func TestValidate_InjectRequiresAnchor(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nmode: inject\n---\nbody\n")
	_, _, err := Parse("t.tmpl", raw, true)
	require.Error(t, err)
}

func TestValidate_BeforeRequiresInjectMode(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nmode: write\nbefore: ANCHOR\n---\nbody\n")
	_, _, err := Parse("t.tmpl", raw, true)
	require.Error(t, err)
}

func TestValidate_LineAtRequiresPositiveValue(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nmode: lineAt\nlineAt: 0\n---\nbody\n")
	_, _, err := Parse("t.tmpl", raw, true)
	require.Error(t, err)
}

func TestValidate_ValidInject(t *testing.T) {
	t.Parallel()

	raw := []byte("---\nmode: inject\nbefore: ANCHOR\n---\nbody\n")
	tpl, _, err := Parse("t.tmpl", raw, true)
	require.NoError(t, err)
	assert.Equal(t, ModeInject, tpl.Frontmatter.Mode)
}

func TestShouldSkip_SkipIfWinsOverUnless(t *testing.T) {
	t.Parallel()

	fm := Frontmatter{SkipIf: "flag", Unless: "flag"}
	skip, err := ShouldSkip(fm, map[string]any{"flag": true})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestShouldSkip_Negation(t *testing.T) {
	t.Parallel()

	fm := Frontmatter{SkipIf: "!enabled"}
	skip, err := ShouldSkip(fm, map[string]any{"enabled": false})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestShouldSkip_Equality(t *testing.T) {
	t.Parallel()

	fm := Frontmatter{SkipIf: `env==prod`}
	skip, err := ShouldSkip(fm, map[string]any{"env": "prod"})
	require.NoError(t, err)
	assert.True(t, skip)

	skip2, err := ShouldSkip(fm, map[string]any{"env": "dev"})
	require.NoError(t, err)
	assert.False(t, skip2)
}

func TestShouldSkip_Inequality(t *testing.T) {
	t.Parallel()

	fm := Frontmatter{SkipIf: `env!=prod`}
	skip, err := ShouldSkip(fm, map[string]any{"env": "dev"})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestShouldSkip_Unless(t *testing.T) {
	t.Parallel()

	fm := Frontmatter{Unless: "ready"}
	skip, err := ShouldSkip(fm, map[string]any{"ready": true})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestParseChmod_OctalString(t *testing.T) {
	t.Parallel()

	mode, ok, err := ParseChmod("0644")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(0o644), mode)
}

func TestParseChmod_Empty(t *testing.T) {
	t.Parallel()

	_, ok, err := ParseChmod("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoolOrDefault(t *testing.T) {
	t.Parallel()

	assert.True(t, BoolOrDefault(nil, true))
	f := false
	assert.False(t, BoolOrDefault(&f, true))
}
