package config

// DefaultProfile returns a new Profile populated with the built-in defaults.
// This profile is used as the base when no engine.toml is present or when a
// named profile omits fields.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultProfile() *Profile {
	return &Profile{
		Mode:                    "warn",
		TemplatesDir:            "templates",
		OutputDir:               ".",
		BaselinePath:            ".engine/baseline.json",
		Workers:                 0,
		Deterministic:           true,
		ContentAddressed:        true,
		ShapesCacheSize:         32,
		RDFFormat:               "turtle",
		DriftSeverityThreshold:  "medium",
		Ignore: []string{
			".git",
			"node_modules",
			".engine",
			"vendor",
		},
		Rules: RulesConfig{
			FailSeverity: "high",
		},
	}
}

// ciProfile returns the built-in "ci" generation profile: strict, fails on
// any drift or violation.
func ciProfile() *Profile {
	return &Profile{
		Mode:                   "fail",
		Deterministic:          true,
		ContentAddressed:       true,
		DriftSeverityThreshold: "low",
		Rules: RulesConfig{
			FailSeverity: "medium",
		},
	}
}

// devProfile returns the built-in "dev" generation profile: permissive,
// drift is reported without failing the exit code (SHACL and custom-rule
// violations still exit 3).
func devProfile() *Profile {
	return &Profile{
		Mode:                   "warn",
		Deterministic:          true,
		ContentAddressed:       true,
		DriftSeverityThreshold: "high",
		Rules: RulesConfig{
			FailSeverity: "critical",
		},
	}
}
