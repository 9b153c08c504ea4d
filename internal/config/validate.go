package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// validModes lists the only accepted values for Profile.Mode.
// An empty string is valid for profiles that inherit the value from a parent.
var validModes = map[string]bool{
	"fail": true,
	"warn": true,
	"fix":  true,
	"":     true,
}

// validRDFFormats lists the only accepted values for Profile.RDFFormat.
var validRDFFormats = map[string]bool{
	"turtle":   true,
	"n3":       true,
	"ntriples": true,
	"nquads":   true,
	"jsonld":   true,
	"rdfxml":   true,
	"":         true,
}

// validSeverities lists the only accepted values for
// Profile.DriftSeverityThreshold and Profile.Rules.FailSeverity.
var validSeverities = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
	"":         true,
}

// maxWorkersHardCap is the absolute upper limit for Profile.Workers. Values
// above this are almost certainly a configuration mistake.
const maxWorkersHardCap = 256

// maxInheritanceWarningDepth is the chain length above which validation emits
// a warning about deep inheritance (mirrors the resolver constant).
const maxInheritanceWarningDepth = 3

// Validate inspects every profile in cfg and returns a slice of
// ValidationErrors describing hard errors and warnings found in the
// configuration. It does not stop at the first error; all profiles are
// checked and all findings are accumulated before returning.
//
// The returned slice is nil when no issues are found. Each element carries
// a Severity field of either "error" or "warning".
//
// Validate does not modify cfg.
func Validate(cfg *Config) []ValidationError {
	if cfg == nil {
		return nil
	}

	var results []ValidationError

	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		errs := validateProfile(name, profile, cfg.Profile)
		results = append(results, errs...)
	}

	if len(results) > 0 {
		slog.Debug("config validation complete",
			"total_issues", len(results),
		)
	}

	return results
}

// validateProfile checks a single named profile and returns all validation
// errors and warnings for that profile.
func validateProfile(name string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", name, f)
	}

	// ── Hard errors ────────────────────────────────────────────────────────

	if !validModes[p.Mode] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("mode"),
			Message:  fmt.Sprintf("mode %q is invalid", p.Mode),
			Suggest:  "Valid modes: fail, warn, fix",
		})
	}

	if !validRDFFormats[p.RDFFormat] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("rdf_format"),
			Message:  fmt.Sprintf("rdf_format %q is invalid", p.RDFFormat),
			Suggest:  "Valid formats: turtle, n3, ntriples, nquads, jsonld, rdfxml",
		})
	}

	if !validSeverities[p.DriftSeverityThreshold] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("drift_severity_threshold"),
			Message:  fmt.Sprintf("drift_severity_threshold %q is invalid", p.DriftSeverityThreshold),
			Suggest:  "Valid values: low, medium, high, critical",
		})
	}

	if !validSeverities[p.Rules.FailSeverity] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("rules.fail_severity"),
			Message:  fmt.Sprintf("rules.fail_severity %q is invalid", p.Rules.FailSeverity),
			Suggest:  "Valid values: low, medium, high, critical",
		})
	}

	// workers: negative
	if p.Workers < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("workers"),
			Message:  fmt.Sprintf("workers %d is negative", p.Workers),
			Suggest:  "Set workers to a positive integer or 0 to use the runtime default",
		})
	}

	// workers: sanity cap (hard)
	if p.Workers > maxWorkersHardCap {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("workers"),
			Message:  fmt.Sprintf("workers %d exceeds the maximum allowed value of %d", p.Workers, maxWorkersHardCap),
			Suggest:  fmt.Sprintf("Reduce workers to at most %d", maxWorkersHardCap),
		})
	}

	// shapes_cache_size: negative
	if p.ShapesCacheSize < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("shapes_cache_size"),
			Message:  fmt.Sprintf("shapes_cache_size %d is negative", p.ShapesCacheSize),
			Suggest:  "Set shapes_cache_size to a positive integer or 0 to use the default",
		})
	}

	// glob pattern validity
	results = append(results, validateGlobPatterns(name, p)...)

	// rule ids listed in both enabled and disabled
	results = append(results, warnConflictingRules(name, p)...)

	// circular inheritance
	if p.Extends != nil && *p.Extends != "" {
		if _, err := ResolveProfile(name, allProfiles); err != nil {
			if strings.Contains(err.Error(), "circular") {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  err.Error(),
					Suggest:  "Remove or restructure the extends chain to eliminate the cycle",
				})
			} else {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  fmt.Sprintf("extends %q: %s", *p.Extends, err.Error()),
					Suggest:  fmt.Sprintf("Define a profile named %q or update the extends value", *p.Extends),
				})
			}
		}
	}

	// ── Warnings ───────────────────────────────────────────────────────────

	results = append(results, warnDeepInheritance(name, p, allProfiles)...)

	if p.Workers == 0 {
		// informational only; not appended as a warning, runtime default applies
		_ = p.Workers
	}

	return results
}

// validateGlobPatterns validates all glob pattern lists in the profile and
// returns errors for any invalid patterns.
func validateGlobPatterns(profileName string, p *Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", profileName, f)
	}

	type patternList struct {
		fieldPath string
		patterns  []string
	}

	lists := []patternList{
		{field("ignore"), p.Ignore},
		{field("include"), p.Include},
	}

	for _, list := range lists {
		for i, pattern := range list.patterns {
			if err := validateGlobPattern(pattern); err != nil {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("%s[%d]", list.fieldPath, i),
					Message:  fmt.Sprintf("invalid glob pattern %q: %s", pattern, err.Error()),
					Suggest:  "Use doublestar glob syntax, e.g. \"**/*.tmpl\" or \"templates/**\"",
				})
			}
		}
	}

	return results
}

// validateGlobPattern checks whether pattern is syntactically valid according
// to the doublestar library. It uses doublestar.ValidatePattern which returns
// false for malformed patterns (e.g. unclosed character classes or
// alternations).
func validateGlobPattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("syntax error in pattern %q", pattern)
	}
	return nil
}

// warnConflictingRules returns a warning for rule ids that appear in both
// Rules.Enabled and Rules.Disabled (Disabled wins, but the overlap likely
// indicates a mistake).
func warnConflictingRules(profileName string, p *Profile) []ValidationError {
	if len(p.Rules.Enabled) == 0 || len(p.Rules.Disabled) == 0 {
		return nil
	}

	disabled := make(map[string]bool, len(p.Rules.Disabled))
	for _, id := range p.Rules.Disabled {
		disabled[id] = true
	}

	var results []ValidationError
	for _, id := range p.Rules.Enabled {
		if disabled[id] {
			results = append(results, ValidationError{
				Severity: "warning",
				Field:    fmt.Sprintf("profile.%s.rules.enabled", profileName),
				Message:  fmt.Sprintf("rule %q is listed in both enabled and disabled; disabled takes precedence", id),
				Suggest:  "Remove the rule from one of the two lists",
			})
		}
	}
	return results
}

// warnDeepInheritance returns a warning when a profile's resolved inheritance
// chain exceeds maxInheritanceWarningDepth.
func warnDeepInheritance(profileName string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	if p.Extends == nil || *p.Extends == "" {
		return nil
	}

	resolution, err := ResolveProfile(profileName, allProfiles)
	if err != nil {
		return nil
	}

	if len(resolution.Chain) > maxInheritanceWarningDepth {
		return []ValidationError{{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.extends", profileName),
			Message: fmt.Sprintf(
				"inheritance chain depth %d exceeds %d: %s",
				len(resolution.Chain), maxInheritanceWarningDepth, strings.Join(resolution.Chain, " -> "),
			),
			Suggest: "Flatten the inheritance chain for clarity",
		}}
	}
	return nil
}

// Lint inspects every profile in cfg for soft issues that Validate only
// reports as generic warnings, and returns them as LintResults carrying a
// stable Code so callers (the config check CLI verb, --ignore-lint
// filtering) can act on the class of issue rather than parsing Message.
// Hard errors are not duplicated here; use Validate for those.
func Lint(cfg *Config) []LintResult {
	if cfg == nil {
		return nil
	}

	var results []LintResult
	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		for _, e := range warnConflictingRules(name, profile) {
			results = append(results, LintResult{ValidationError: e, Code: "conflicting-rule"})
		}
		for _, e := range warnDeepInheritance(name, profile, cfg.Profile) {
			results = append(results, LintResult{ValidationError: e, Code: "deep-inheritance"})
		}
	}
	return results
}
