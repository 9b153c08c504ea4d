package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeProfile_ScalarOverrideWins(t *testing.T) {
	t.Parallel()

	base := &Profile{Mode: "warn", Workers: 2, Deterministic: false}
	override := &Profile{Mode: "fail", Workers: 0, Deterministic: true}

	got := mergeProfile(base, override)

	assert.Equal(t, "fail", got.Mode) // non-empty string override wins
	assert.Equal(t, 2, got.Workers)   // zero int override keeps base
	assert.True(t, got.Deterministic) // bool override always wins
}

func TestMergeProfile_BoolFalseOverrideWins(t *testing.T) {
	t.Parallel()

	base := &Profile{ContentAddressed: true}
	override := &Profile{ContentAddressed: false}

	got := mergeProfile(base, override)
	assert.False(t, got.ContentAddressed)
}

func TestMergeProfile_SliceReplacementWhenNonEmpty(t *testing.T) {
	t.Parallel()

	base := &Profile{Ignore: []string{"a", "b"}}
	override := &Profile{Ignore: []string{"c"}}

	got := mergeProfile(base, override)
	assert.Equal(t, []string{"c"}, got.Ignore)
}

func TestMergeProfile_SliceFallsBackToBaseWhenOverrideEmpty(t *testing.T) {
	t.Parallel()

	base := &Profile{Ignore: []string{"a", "b"}}
	override := &Profile{}

	got := mergeProfile(base, override)
	assert.Equal(t, []string{"a", "b"}, got.Ignore)
}

func TestMergeProfile_DoesNotShareSliceBackingArray(t *testing.T) {
	t.Parallel()

	base := &Profile{Ignore: []string{"a", "b"}}
	override := &Profile{}

	got := mergeProfile(base, override)
	got.Ignore[0] = "mutated"

	assert.Equal(t, "a", base.Ignore[0])
}

func TestMergeProfile_ExtendsAlwaysCleared(t *testing.T) {
	t.Parallel()

	parent := "base"
	base := &Profile{}
	override := &Profile{Extends: &parent}

	got := mergeProfile(base, override)
	assert.Nil(t, got.Extends)
}

func TestMergeRules_FieldByField(t *testing.T) {
	t.Parallel()

	base := RulesConfig{Enabled: []string{"a"}, FailSeverity: "low"}
	override := RulesConfig{Disabled: []string{"b"}}

	got := mergeRules(base, override)
	assert.Equal(t, []string{"a"}, got.Enabled)
	assert.Equal(t, []string{"b"}, got.Disabled)
	assert.Equal(t, "low", got.FailSeverity)
}

func TestMergeProfile_NeitherInputMutated(t *testing.T) {
	t.Parallel()

	base := &Profile{Mode: "warn", Ignore: []string{"x"}}
	override := &Profile{Mode: "fail"}

	_ = mergeProfile(base, override)

	assert.Equal(t, "warn", base.Mode)
	assert.Equal(t, []string{"x"}, base.Ignore)
}
