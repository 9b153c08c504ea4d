package drift

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/provenance-engine/engine/internal/rdf"
)

const (
	rdfTypeIRI        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsSubClassOfIRI = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	owlSameAsIRI      = "http://www.w3.org/2002/07/owl#sameAs"
	owlEquivalentIRI  = "http://www.w3.org/2002/07/owl#equivalentClass"
)

// predicateWeight returns the significance weight for a changed triple's
// predicate, per §4.9: identity/class predicates weight 1.0,
// label/comment/title weight 0.5, everything else weights 0.3.
func predicateWeight(predicateIRI string) float64 {
	switch predicateIRI {
	case rdfTypeIRI, rdfsSubClassOfIRI, owlSameAsIRI, owlEquivalentIRI:
		return 1.0
	}
	switch localName(predicateIRI) {
	case "label", "comment", "title":
		return 0.5
	default:
		return 0.3
	}
}

func localName(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// rdfSignificance computes the weighted-changed-triples-over-total score
// described in §4.9 for an RDF delta against a graph of totalTriples
// triples (the larger of the two sides being compared).
func rdfSignificance(delta rdf.Delta, totalTriples int) float64 {
	if totalTriples == 0 {
		if len(delta.Added) == 0 && len(delta.Removed) == 0 {
			return 0
		}
		return 1
	}

	var weighted float64
	for _, t := range delta.Added {
		weighted += predicateWeight(t.Predicate.Value)
	}
	for _, t := range delta.Removed {
		weighted += predicateWeight(t.Predicate.Value)
	}

	sig := weighted / float64(totalTriples)
	if sig > 1 {
		sig = 1
	}
	return sig
}

// lineChangeKind classifies a single changed line using the syntactic
// heuristics in §4.9.
type lineChangeKind int

const (
	lineStructural lineChangeKind = iota
	lineValue
	lineOther
)

var structuralKeywords = []string{"class ", "function ", "interface ", "import ", "export "}

func classifyLine(line string) lineChangeKind {
	trimmed := strings.TrimSpace(line)
	for _, kw := range structuralKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return lineStructural
		}
	}
	if strings.Contains(trimmed, "=") || strings.Contains(trimmed, ":") {
		return lineValue
	}
	return lineOther
}

func lineWeight(kind lineChangeKind) float64 {
	switch kind {
	case lineStructural:
		return 2
	case lineValue:
		return 1
	default:
		return 0.8
	}
}

// splitLines splits b into non-empty trimmed lines.
func splitLines(b []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

// nonRDFSignificance performs the line-level multiset diff and heuristic
// scoring described in §4.9 for non-RDF artifacts: structural changes to
// declarations weight 2, assignment-value changes weight 1, other content
// changes weight 0.8; significance = min(sum / (2*baselineLines), 1).
func nonRDFSignificance(expected, current []byte) float64 {
	expLines := splitLines(expected)
	curLines := splitLines(current)

	expCount := map[string]int{}
	for _, l := range expLines {
		expCount[l]++
	}
	curCount := map[string]int{}
	for _, l := range curLines {
		curCount[l]++
	}

	var sum float64
	for line, n := range curCount {
		if extra := n - expCount[line]; extra > 0 {
			for i := 0; i < extra; i++ {
				sum += lineWeight(classifyLine(line))
			}
		}
	}
	for line, n := range expCount {
		if extra := n - curCount[line]; extra > 0 {
			for i := 0; i < extra; i++ {
				sum += lineWeight(classifyLine(line))
			}
		}
	}

	baselineLines := len(expLines)
	if baselineLines == 0 {
		if sum == 0 {
			return 0
		}
		return 1
	}

	sig := sum / (2 * float64(baselineLines))
	if sig > 1 {
		sig = 1
	}
	return sig
}
