package rules

import (
	"fmt"
	"sort"

	"github.com/provenance-engine/engine/internal/rdf"
)

const rdfTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
const rdfsSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

// GraphSizeRule fails when the graph's triple count exceeds max.
func GraphSizeRule(max int) Rule {
	return Rule{
		ID:       "graph-size",
		Name:     "Graph size",
		Severity: SeverityHigh,
		Category: CategoryStructural,
		Execute: func(g *rdf.Graph) Result {
			if g.Len() <= max {
				return Result{RuleID: "graph-size", Passed: true}
			}
			return Result{
				RuleID:     "graph-size",
				Passed:     false,
				Violations: []string{fmt.Sprintf("graph has %d triples, exceeding maximum of %d", g.Len(), max)},
				Metadata:   map[string]any{"tripleCount": g.Len(), "max": max},
			}
		},
	}
}

// DatatypeConsistencyRule warns when the same predicate carries literals
// of different datatypes across the graph.
func DatatypeConsistencyRule() Rule {
	return Rule{
		ID:       "datatype-consistency",
		Name:     "Datatype consistency",
		Severity: SeverityMedium,
		Category: CategoryConsistency,
		Execute: func(g *rdf.Graph) Result {
			datatypesByPred := map[string]map[string]bool{}
			for _, t := range g.Triples() {
				if t.Object.Kind != rdf.KindLiteral || t.Object.Lang != "" {
					continue
				}
				// The parser stores xsd:string literals with no datatype.
				dt := t.Object.Datatype
				if dt == "" {
					dt = "http://www.w3.org/2001/XMLSchema#string"
				}
				if datatypesByPred[t.Predicate.Value] == nil {
					datatypesByPred[t.Predicate.Value] = map[string]bool{}
				}
				datatypesByPred[t.Predicate.Value][dt] = true
			}

			var warnings []string
			for _, pred := range sortedKeys(datatypesByPred) {
				dts := datatypesByPred[pred]
				if len(dts) <= 1 {
					continue
				}
				types := sortedKeys(dts)
				warnings = append(warnings, fmt.Sprintf("predicate %s carries inconsistent datatypes: %v", pred, types))
			}

			return Result{RuleID: "datatype-consistency", Passed: len(warnings) == 0, Warnings: warnings}
		},
	}
}

// URIFormRule warns when any IRI used as subject, predicate, or object is
// not HTTP(S).
func URIFormRule() Rule {
	return Rule{
		ID:       "uri-form",
		Name:     "URI form",
		Severity: SeverityLow,
		Category: CategoryNaming,
		Execute: func(g *rdf.Graph) Result {
			seen := map[string]bool{}
			var nonHTTP []string
			check := func(t rdf.Term) {
				if t.Kind != rdf.KindIRI || seen[t.Value] || isHTTPIRI(t.Value) {
					return
				}
				seen[t.Value] = true
				nonHTTP = append(nonHTTP, t.Value)
			}
			for _, t := range g.Triples() {
				check(t.Subject)
				check(t.Predicate)
				check(t.Object)
			}
			sort.Strings(nonHTTP)

			var warnings []string
			for _, iri := range nonHTTP {
				warnings = append(warnings, fmt.Sprintf("IRI %q is not HTTP(S)", iri))
			}
			return Result{RuleID: "uri-form", Passed: len(warnings) == 0, Warnings: warnings}
		},
	}
}

// BlankNodeUsageRule warns on blank nodes that appear exactly once as an
// object and never as a subject (likely orphaned/unreferenced data).
func BlankNodeUsageRule() Rule {
	return Rule{
		ID:       "blank-node-usage",
		Name:     "Blank-node usage",
		Severity: SeverityLow,
		Category: CategoryStructural,
		Execute: func(g *rdf.Graph) Result {
			asSubject := map[string]int{}
			asObject := map[string]int{}
			for _, t := range g.Triples() {
				if t.Subject.Kind == rdf.KindBlank {
					asSubject[t.Subject.Value]++
				}
				if t.Object.Kind == rdf.KindBlank {
					asObject[t.Object.Value]++
				}
			}

			var warnings []string
			for _, label := range sortedKeys(asObject) {
				if asObject[label] == 1 && asSubject[label] == 0 {
					warnings = append(warnings, fmt.Sprintf("blank node _:%s appears exactly once as an object and never as a subject", label))
				}
			}
			return Result{RuleID: "blank-node-usage", Passed: len(warnings) == 0, Warnings: warnings}
		},
	}
}

// NamespaceConsistencyRule warns on namespaces occupied by a single term,
// a signal of a typo'd or one-off IRI.
func NamespaceConsistencyRule() Rule {
	return Rule{
		ID:       "namespace-consistency",
		Name:     "Namespace consistency",
		Severity: SeverityLow,
		Category: CategoryNaming,
		Execute: func(g *rdf.Graph) Result {
			termsByNS := map[string]map[string]bool{}
			record := func(t rdf.Term) {
				if t.Kind != rdf.KindIRI {
					return
				}
				nsKey := namespaceOf(t.Value)
				if termsByNS[nsKey] == nil {
					termsByNS[nsKey] = map[string]bool{}
				}
				termsByNS[nsKey][t.Value] = true
			}
			for _, t := range g.Triples() {
				record(t.Subject)
				record(t.Predicate)
				record(t.Object)
			}

			var warnings []string
			for _, nsKey := range sortedKeys(termsByNS) {
				if len(termsByNS[nsKey]) == 1 {
					warnings = append(warnings, fmt.Sprintf("namespace %s is occupied by a single term", nsKey))
				}
			}
			return Result{RuleID: "namespace-consistency", Passed: len(warnings) == 0, Warnings: warnings}
		},
	}
}

// OWLSubclassCycleRule detects cycles in rdfs:subClassOf via DFS with a
// recursion stack, reporting the offending class IRI.
func OWLSubclassCycleRule() Rule {
	return Rule{
		ID:       "owl-subclass-cycle",
		Name:     "OWL transitive subclass closure check",
		Severity: SeverityCritical,
		Category: CategorySemantic,
		Execute: func(g *rdf.Graph) Result {
			edges := map[string][]string{}
			for _, t := range g.Triples() {
				if t.Predicate.Value == rdfsSubClassOf && t.Subject.Kind == rdf.KindIRI && t.Object.Kind == rdf.KindIRI {
					edges[t.Subject.Value] = append(edges[t.Subject.Value], t.Object.Value)
				}
			}

			nodes := sortedKeys(edges)
			state := map[string]int{} // 0=unvisited, 1=in-stack, 2=done
			var cycles []string

			var dfs func(node string) bool
			dfs = func(node string) bool {
				state[node] = 1
				for _, next := range edges[node] {
					switch state[next] {
					case 1:
						cycles = append(cycles, next)
						return true
					case 0:
						if dfs(next) {
							return true
						}
					}
				}
				state[node] = 2
				return false
			}

			for _, n := range nodes {
				if state[n] == 0 {
					dfs(n)
				}
			}

			if len(cycles) == 0 {
				return Result{RuleID: "owl-subclass-cycle", Passed: true}
			}
			sort.Strings(cycles)
			var violations []string
			for _, c := range cycles {
				violations = append(violations, fmt.Sprintf("rdfs:subClassOf cycle detected involving %s", c))
			}
			return Result{RuleID: "owl-subclass-cycle", Passed: false, Violations: violations}
		},
	}
}

// FunctionalPropertyRule flags a subject with two distinct objects on a
// property declared functional (owl:FunctionalProperty or named
// explicitly in functionalProps).
func FunctionalPropertyRule(functionalProps []string) Rule {
	funcSet := make(map[string]bool, len(functionalProps))
	for _, p := range functionalProps {
		funcSet[p] = true
	}

	return Rule{
		ID:       "functional-property-consistency",
		Name:     "Functional-property consistency",
		Severity: SeverityHigh,
		Category: CategoryConsistency,
		Execute: func(g *rdf.Graph) Result {
			declared := make(map[string]bool, len(funcSet))
			for p := range funcSet {
				declared[p] = true
			}
			for _, t := range g.Triples() {
				if t.Predicate.Value == rdfTypeIRI && t.Object.Value == "http://www.w3.org/2002/07/owl#FunctionalProperty" {
					declared[t.Subject.Value] = true
				}
			}

			values := map[string]map[string]bool{} // "subject\x00predicate" -> set of objects
			for _, t := range g.Triples() {
				if !declared[t.Predicate.Value] {
					continue
				}
				key := t.Subject.Value + "\x00" + t.Predicate.Value
				if values[key] == nil {
					values[key] = map[string]bool{}
				}
				values[key][t.Object.NQuadString()] = true
			}

			var violations []string
			for _, key := range sortedKeys(values) {
				if len(values[key]) > 1 {
					violations = append(violations, fmt.Sprintf("subject/predicate %q has %d distinct values for a functional property", key, len(values[key])))
				}
			}
			return Result{RuleID: "functional-property-consistency", Passed: len(violations) == 0, Violations: violations}
		},
	}
}

// RegisterBuiltins registers the standard rule set described in §4.8 onto
// r, using the given graph-size limit and the IRIs configured as
// functional properties.
func RegisterBuiltins(r *Registry, maxGraphSize int, functionalProps []string) error {
	builtins := []Rule{
		GraphSizeRule(maxGraphSize),
		DatatypeConsistencyRule(),
		URIFormRule(),
		BlankNodeUsageRule(),
		NamespaceConsistencyRule(),
		OWLSubclassCycleRule(),
		FunctionalPropertyRule(functionalProps),
	}
	for _, rule := range builtins {
		if err := r.Register(rule); err != nil {
			return err
		}
	}
	return nil
}
