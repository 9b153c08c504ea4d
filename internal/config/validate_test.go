package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfileForTest() *Profile {
	p := DefaultProfile()
	p.Mode = "fail"
	return p
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Validate(nil))
}

func TestValidate_CleanConfigHasNoIssues(t *testing.T) {
	t.Parallel()

	cfg := &Config{Profile: map[string]*Profile{"default": validProfileForTest()}}
	assert.Empty(t, Validate(cfg))
}

func TestValidate_InvalidMode(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Mode = "explode"
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
	assert.Equal(t, "error", errs[0].Severity)
	assert.Contains(t, errs[0].Field, "mode")
}

func TestValidate_InvalidRDFFormat(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.RDFFormat = "xml-rdf-old"
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Field == "profile.default.rdf_format" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_InvalidSeverity(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.DriftSeverityThreshold = "extreme"
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidate_NegativeWorkers(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Workers = -1
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidate_WorkersExceedsHardCap(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Workers = maxWorkersHardCap + 1
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidate_InvalidGlobPattern(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Ignore = []string{"["}
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidate_ConflictingRulesWarning(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Rules.Enabled = []string{"owl-cycle"}
	p.Rules.Disabled = []string{"owl-cycle"}
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
	assert.Equal(t, "warning", errs[0].Severity)
}

func TestValidate_CircularExtendsReported(t *testing.T) {
	t.Parallel()

	a := "a"
	b := "b"
	cfg := &Config{Profile: map[string]*Profile{
		"a": {Extends: &b, Mode: "warn"},
		"b": {Extends: &a, Mode: "warn"},
	}}

	errs := Validate(cfg)
	require.NotEmpty(t, errs)

	found := false
	for _, e := range errs {
		if e.Severity == "error" && e.Field == "profile.a.extends" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_DeepInheritanceWarning(t *testing.T) {
	t.Parallel()

	n1, n2, n3 := "l1", "l2", "l3"
	cfg := &Config{Profile: map[string]*Profile{
		"l1": {Mode: "warn"},
		"l2": {Extends: &n1, Mode: "warn"},
		"l3": {Extends: &n2, Mode: "warn"},
		"l4": {Extends: &n3, Mode: "warn"},
	}}

	errs := Validate(cfg)
	found := false
	for _, e := range errs {
		if e.Severity == "warning" && e.Field == "profile.l4.extends" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLint_ConflictingRuleGetsStableCode(t *testing.T) {
	t.Parallel()

	p := validProfileForTest()
	p.Rules.Enabled = []string{"owl-cycle"}
	p.Rules.Disabled = []string{"owl-cycle"}
	cfg := &Config{Profile: map[string]*Profile{"default": p}}

	lints := Lint(cfg)
	require.NotEmpty(t, lints)
	assert.Equal(t, "conflicting-rule", lints[0].Code)
	assert.Equal(t, "warning", lints[0].Severity)
}

func TestLint_DeepInheritanceGetsStableCode(t *testing.T) {
	t.Parallel()

	n1, n2, n3 := "l1", "l2", "l3"
	cfg := &Config{Profile: map[string]*Profile{
		"l1": {Mode: "warn"},
		"l2": {Extends: &n1, Mode: "warn"},
		"l3": {Extends: &n2, Mode: "warn"},
		"l4": {Extends: &n3, Mode: "warn"},
	}}

	lints := Lint(cfg)
	found := false
	for _, l := range lints {
		if l.Code == "deep-inheritance" && l.Field == "profile.l4.extends" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLint_NilConfig(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Lint(nil))
}

func TestValidateGlobPattern(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateGlobPattern("**/*.tmpl"))
	assert.Error(t, validateGlobPattern("["))
}
