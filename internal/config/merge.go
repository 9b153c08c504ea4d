package config

// mergeProfile creates a new Profile by applying override on top of base.
// The merge rules are:
//   - String scalars: use override if non-empty; otherwise keep base.
//   - Int scalars: use override if non-zero; otherwise keep base.
//   - Bool scalars: always use override (false is a valid override value).
//   - Slice fields (Ignore, Include): use override slice if it is non-nil
//     and non-empty; otherwise keep base slice.
//   - RulesConfig: merged field-by-field with the same scalar/slice rules.
//
// Neither base nor override is mutated. A fresh Profile is always returned.
// The Extends field is always cleared on the returned profile.
func mergeProfile(base, override *Profile) *Profile {
	result := &Profile{
		// Scalar: string
		Mode:                   mergeString(base.Mode, override.Mode),
		TemplatesDir:           mergeString(base.TemplatesDir, override.TemplatesDir),
		OutputDir:              mergeString(base.OutputDir, override.OutputDir),
		BaselinePath:           mergeString(base.BaselinePath, override.BaselinePath),
		RDFFormat:              mergeString(base.RDFFormat, override.RDFFormat),
		DriftSeverityThreshold: mergeString(base.DriftSeverityThreshold, override.DriftSeverityThreshold),

		// Scalar: int
		Workers:         mergeInt(base.Workers, override.Workers),
		ShapesCacheSize: mergeInt(base.ShapesCacheSize, override.ShapesCacheSize),

		// Scalar: bool -- override always wins (false is meaningful)
		Deterministic:    override.Deterministic,
		ContentAddressed: override.ContentAddressed,

		// Slices: child replaces parent entirely when non-nil and non-empty
		Ignore:  mergeSlice(base.Ignore, override.Ignore),
		Include: mergeSlice(base.Include, override.Include),

		// Nested structs
		Rules: mergeRules(base.Rules, override.Rules),

		// Extends is always cleared after merge (profile is fully resolved)
		Extends: nil,
	}
	return result
}

// mergeString returns override if non-empty, otherwise base.
func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// mergeInt returns override if non-zero, otherwise base.
func mergeInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

// mergeSlice returns a copy of override if it is non-nil and non-empty,
// otherwise returns a copy of base. Copies are made at the boundary to
// prevent callers from sharing slice backing arrays.
func mergeSlice(base, override []string) []string {
	if len(override) > 0 {
		result := make([]string, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]string, len(base))
		copy(result, base)
		return result
	}
	return nil
}

// mergeRules merges two RulesConfig values field-by-field.
func mergeRules(base, override RulesConfig) RulesConfig {
	return RulesConfig{
		Enabled:      mergeSlice(base.Enabled, override.Enabled),
		Disabled:     mergeSlice(base.Disabled, override.Disabled),
		FailSeverity: mergeString(base.FailSeverity, override.FailSeverity),
	}
}
