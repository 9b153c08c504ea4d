// Package config provides configuration loading, validation, and profile
// resolution for the engine CLI. This package is a foundational
// cross-cutting concern used by the orchestrator and the CLI wrapper.
package config
