package rdf

import (
	"sort"

	"github.com/provenance-engine/engine/internal/hashing"
)

// Graph is an in-memory RDF graph: an unordered multiset of triples.
// Triples are stored in insertion order for stable iteration over
// as-parsed data; hashing and diffing sort their own working copy first.
// Serialize writes Turtle, N3, N-Triples and N-Quads in insertion order.
type Graph struct {
	triples []Triple
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends a triple to the graph.
func (g *Graph) Add(t Triple) {
	g.triples = append(g.triples, t)
}

// Triples returns the graph's triples in insertion order. The returned
// slice must not be mutated by the caller.
func (g *Graph) Triples() []Triple {
	return g.triples
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int {
	return len(g.triples)
}

// BlankNodeRatio returns the fraction of triples that reference at least
// one blank node (subject or object), used to flag graphs where the
// lexical graph hash in HashGraph is fragile (see package hashing).
func (g *Graph) BlankNodeRatio() float64 {
	if len(g.triples) == 0 {
		return 0
	}
	blank := 0
	for _, t := range g.triples {
		if t.Subject.Kind == KindBlank || t.Object.Kind == KindBlank {
			blank++
		}
	}
	return float64(blank) / float64(len(g.triples))
}

// SortedLines returns the graph's triples rendered as sorted N-Quads-style
// lines, suitable for hashing.HashGraph or direct textual comparison.
func (g *Graph) SortedLines() []hashing.GraphLine {
	lines := make([]hashing.GraphLine, len(g.triples))
	for i, t := range g.triples {
		graphTerm := ""
		if t.Graph.Kind == KindIRI && t.Graph.Value != "" {
			graphTerm = t.Graph.NQuadString()
		} else if t.Graph.Kind == KindBlank {
			graphTerm = t.Graph.NQuadString()
		}
		lines[i] = hashing.GraphLine{
			Subject:   t.Subject.NQuadString(),
			Predicate: t.Predicate.NQuadString(),
			Object:    t.Object.NQuadString(),
			Graph:     graphTerm,
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].String() < lines[j].String() })
	return lines
}

// Hash returns hashing.HashGraph over the graph's sorted lines. This is
// the canonical-but-not-blank-node-canonical graph digest described in the
// hashing package and used to key the SHACL compiled-shapes cache.
func (g *Graph) Hash() string {
	return hashing.HashGraph(g.SortedLines())
}

// tripleKey produces a stable map key for a triple, used by Diff to detect
// membership without relying on struct comparability guarantees beyond
// what Term already provides (Term is comparable, but equality by value
// is expressed explicitly here for clarity and to anchor future changes
// to Term's shape).
func tripleKey(t Triple) string {
	g := ""
	if t.Graph.Kind == KindIRI && t.Graph.Value != "" || t.Graph.Kind == KindBlank {
		g = t.Graph.NQuadString()
	}
	return t.Subject.NQuadString() + "\x00" + t.Predicate.NQuadString() + "\x00" + t.Object.NQuadString() + "\x00" + g
}

// Delta is the result of diffing two graphs: triples present only in the
// "current" graph (Added) and triples present only in the "expected"
// graph (Removed).
type Delta struct {
	Added   []Triple
	Removed []Triple
}

// Empty reports whether the delta contains no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff computes the set difference between expected and current: triples
// in current not in expected are Added, triples in expected not in
// current are Removed. Both graphs are treated as sets; duplicate triples
// collapse.
func Diff(expected, current *Graph) Delta {
	expSet := make(map[string]Triple, expected.Len())
	for _, t := range expected.triples {
		expSet[tripleKey(t)] = t
	}
	curSet := make(map[string]Triple, current.Len())
	for _, t := range current.triples {
		curSet[tripleKey(t)] = t
	}

	var d Delta
	for k, t := range curSet {
		if _, ok := expSet[k]; !ok {
			d.Added = append(d.Added, t)
		}
	}
	for k, t := range expSet {
		if _, ok := curSet[k]; !ok {
			d.Removed = append(d.Removed, t)
		}
	}

	sort.Slice(d.Added, func(i, j int) bool { return tripleKey(d.Added[i]) < tripleKey(d.Added[j]) })
	sort.Slice(d.Removed, func(i, j int) bool { return tripleKey(d.Removed[i]) < tripleKey(d.Removed[j]) })
	return d
}
