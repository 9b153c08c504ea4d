package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEnvMap_Empty(t *testing.T) {
	assert.Empty(t, buildEnvMap())
}

func TestBuildEnvMap_StringFields(t *testing.T) {
	t.Setenv(EnvMode, "fail")
	t.Setenv(EnvTemplatesDir, "tpl")
	t.Setenv(EnvOutputDir, "out")
	t.Setenv(EnvBaselinePath, "base.json")

	m := buildEnvMap()
	assert.Equal(t, "fail", m["mode"])
	assert.Equal(t, "tpl", m["templates_dir"])
	assert.Equal(t, "out", m["output_dir"])
	assert.Equal(t, "base.json", m["baseline_path"])
}

func TestBuildEnvMap_WorkersParsed(t *testing.T) {
	t.Setenv(EnvWorkers, "8")
	m := buildEnvMap()
	assert.Equal(t, 8, m["workers"])
}

func TestBuildEnvMap_InvalidWorkersSkipped(t *testing.T) {
	t.Setenv(EnvWorkers, "not-a-number")
	m := buildEnvMap()
	_, ok := m["workers"]
	assert.False(t, ok)
}

func TestBuildEnvMap_BoolFields(t *testing.T) {
	t.Setenv(EnvDeterministic, "false")
	t.Setenv(EnvContentAddressed, "true")

	m := buildEnvMap()
	assert.Equal(t, false, m["deterministic"])
	assert.Equal(t, true, m["content_addressed"])
}

func TestBuildEnvMap_InvalidBoolSkipped(t *testing.T) {
	t.Setenv(EnvDeterministic, "not-a-bool")
	m := buildEnvMap()
	_, ok := m["deterministic"]
	assert.False(t, ok)
}
