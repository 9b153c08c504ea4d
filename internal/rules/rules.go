// Package rules implements the custom-rule engine (C8): named rules run
// against an RDF graph and report pass/fail plus violations, warnings,
// and metadata. Registration mirrors the teacher's config validation
// style (closed vocabularies, structured ValidationError list — see
// internal/config/validate.go) adapted to rule bookkeeping instead of
// config-field checking.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/provenance-engine/engine/internal/rdf"
)

// Severity is a rule's configured severity level.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var validSeverities = map[Severity]bool{SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true}

// Category is a rule's closed classification.
type Category string

const (
	CategoryStructural  Category = "structural"
	CategoryConsistency Category = "consistency"
	CategoryNaming      Category = "naming"
	CategorySemantic    Category = "semantic"
)

var validCategories = map[Category]bool{CategoryStructural: true, CategoryConsistency: true, CategoryNaming: true, CategorySemantic: true}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Result is a single rule's execution output.
type Result struct {
	RuleID     string
	Passed     bool
	Violations []string
	Warnings   []string
	Metadata   map[string]any
}

// Rule is a named check run against a graph.
type Rule struct {
	ID       string
	Name     string
	Severity Severity
	Category Category
	Execute  func(g *rdf.Graph) Result
}

// Registry holds registered rules, keyed by ID, and notifies a callback
// (wired to the SHACL compiled-shapes cache) whenever a rule is added,
// per §4.8: "A rule registration also clears the compiled-shapes cache."
type Registry struct {
	rules      map[string]Rule
	order      []string
	onRegister func()
}

// NewRegistry returns an empty registry. onRegister, if non-nil, runs
// after every successful Register call.
func NewRegistry(onRegister func()) *Registry {
	return &Registry{rules: map[string]Rule{}, onRegister: onRegister}
}

// Register validates and adds a rule. id must match [A-Za-z0-9_-]+,
// severity and category must be in their closed sets.
func (r *Registry) Register(rule Rule) error {
	if !idPattern.MatchString(rule.ID) {
		return fmt.Errorf("rules: invalid rule id %q", rule.ID)
	}
	if !validSeverities[rule.Severity] {
		return fmt.Errorf("rules: invalid severity %q for rule %q", rule.Severity, rule.ID)
	}
	if !validCategories[rule.Category] {
		return fmt.Errorf("rules: invalid category %q for rule %q", rule.Category, rule.ID)
	}
	if rule.Execute == nil {
		return fmt.Errorf("rules: rule %q has no execute function", rule.ID)
	}

	if _, exists := r.rules[rule.ID]; !exists {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = rule

	if r.onRegister != nil {
		r.onRegister()
	}
	return nil
}

// RunAll executes every registered rule against g, in registration order,
// except those named in disabled.
func (r *Registry) RunAll(g *rdf.Graph, disabled []string) []Result {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[id] = true
	}

	results := make([]Result, 0, len(r.order))
	for _, id := range r.order {
		if skip[id] {
			continue
		}
		results = append(results, r.rules[id].Execute(g))
	}
	return results
}

// IDs returns the registered rule IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// sortedKeys is a small shared helper used by the built-in rules below to
// report deterministically ordered metadata and violations.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isHTTPIRI(iri string) bool {
	return strings.HasPrefix(iri, "http://") || strings.HasPrefix(iri, "https://")
}

func namespaceOf(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '#' {
			return iri[:i+1]
		}
	}
	if idx := strings.LastIndex(iri, "/"); idx >= 0 {
		return iri[:idx+1]
	}
	return iri
}
