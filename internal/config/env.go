package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for ENGINE_ prefixed overrides.
const (
	// EnvProfile selects the named profile to activate.
	EnvProfile = "ENGINE_PROFILE"
	// EnvMode overrides the orchestrator mode (fail/warn/fix).
	EnvMode = "ENGINE_MODE"
	// EnvTemplatesDir overrides the templates root directory.
	EnvTemplatesDir = "ENGINE_TEMPLATES_DIR"
	// EnvOutputDir overrides the artifact output directory.
	EnvOutputDir = "ENGINE_OUTPUT_DIR"
	// EnvBaselinePath overrides the drift-detection baseline file path.
	EnvBaselinePath = "ENGINE_BASELINE_PATH"
	// EnvWorkers overrides the worker pool size.
	EnvWorkers = "ENGINE_WORKERS"
	// EnvLogFormat overrides the log output format (not a profile field).
	EnvLogFormat = "ENGINE_LOG_FORMAT"
	// EnvDeterministic overrides the deterministic-mode flag.
	EnvDeterministic = "ENGINE_DETERMINISTIC"
	// EnvContentAddressed overrides the content-addressed store flag.
	EnvContentAddressed = "ENGINE_CONTENT_ADDRESSED"
)

// buildEnvMap reads ENGINE_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included. Invalid numeric/boolean values are
// silently skipped so that a bad env var does not block the entire
// resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvMode); v != "" {
		m["mode"] = v
	}
	if v := os.Getenv(EnvTemplatesDir); v != "" {
		m["templates_dir"] = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		m["output_dir"] = v
	}
	if v := os.Getenv(EnvBaselinePath); v != "" {
		m["baseline_path"] = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["workers"] = n
		}
	}
	if v := os.Getenv(EnvDeterministic); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["deterministic"] = b
		}
	}
	if v := os.Getenv(EnvContentAddressed); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["content_addressed"] = b
		}
	}

	return m
}
