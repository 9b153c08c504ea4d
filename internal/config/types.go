package config

// Config is the top-level configuration type parsed from an engine.toml file.
// It holds a map of named generation profiles keyed by profile name. Profile
// names are case-sensitive. The special name "default" is the built-in
// fallback profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["ci"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named generation profile. Fields
// with zero values are considered unset and are filled in by the merge /
// inheritance pipeline. The Extends field enables profile inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. When set,
	// all unset fields in this profile are filled from the named parent.
	// A nil pointer means no inheritance.
	Extends *string `toml:"extends"`

	// Mode controls how the orchestrator reacts to violations and drift:
	// "fail" (non-zero exit on any violation/drift), "warn" (report but
	// exit 0), or "fix" (attempt regeneration before reporting).
	Mode string `toml:"mode"`

	// TemplatesDir is the root directory scanned for lockfile plan entries.
	// Every file under it that survives the ignore layers and Include is
	// treated as a template; no file-extension glob is applied.
	TemplatesDir string `toml:"templates_dir"`

	// OutputDir is the root directory artifacts are written beneath.
	OutputDir string `toml:"output_dir"`

	// BaselinePath is the file path of the drift-detection baseline store.
	BaselinePath string `toml:"baseline_path"`

	// Workers is a requested worker-pool size. It is validated (0..256)
	// and resolved across layers, but no operation reads it: the lockfile
	// plan driver (C6) always sizes its pool from the CPU count, capped at
	// plan.MaxWorkers.
	Workers int `toml:"workers"`

	// Deterministic is validated and resolved across layers, but no
	// operation reads it; the template engine's checks do not change with
	// this setting.
	Deterministic bool `toml:"deterministic"`

	// ContentAddressed makes generated artifacts (C5) use hash-suffixed
	// file names. Attestation sidecars are written whether or not it is
	// set.
	ContentAddressed bool `toml:"content_addressed"`

	// ShapesCacheSize bounds the LRU cache of compiled SHACL shape graphs
	// (C7). Zero uses the built-in default.
	ShapesCacheSize int `toml:"shapes_cache_size"`

	// RDFFormat names an RDF serialization. Valid values: "turtle",
	// "ntriples", "nquads", "n3", "jsonld", "rdfxml". It is validated and
	// resolved across layers, but no operation reads it; frontmatter `rdf`
	// blocks do not fall back to it.
	RDFFormat string `toml:"rdf_format"`

	// DriftSeverityThreshold is a drift severity ("low", "medium", "high",
	// "critical"). It is validated and resolved across layers, but the exit
	// code does not depend on it: under mode=fail any drift exits 3.
	DriftSeverityThreshold string `toml:"drift_severity_threshold"`

	// Ignore is the list of glob patterns for templates and paths to skip
	// during plan discovery. Patterns are evaluated with doublestar, and a
	// .engineignore file (gitignore syntax) in TemplatesDir is also honored.
	Ignore []string `toml:"ignore"`

	// Include is the list of glob patterns for templates to keep. When
	// non-empty, only matching templates are discovered; Ignore and the
	// built-in ignore layers still take precedence over it.
	Include []string `toml:"include"`

	// Rules configures the custom-rule engine (C8).
	Rules RulesConfig `toml:"rules"`
}

// RulesConfig controls which built-in custom rules are active and how
// strictly they are enforced.
type RulesConfig struct {
	// Enabled lists the rule ids to run. An empty slice means "all built-in
	// rules", matching the orchestrator's default registry.
	Enabled []string `toml:"enabled"`

	// Disabled lists rule ids to skip even if they would otherwise be
	// enabled. Disabled takes precedence over Enabled.
	Disabled []string `toml:"disabled"`

	// FailSeverity is a rule-violation severity. Valid values: "low",
	// "medium", "high", "critical". It is validated and resolved across
	// layers, but the exit code does not depend on it: any failed rule
	// exits 3.
	FailSeverity string `toml:"fail_severity"`
}
