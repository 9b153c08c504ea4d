// Package shacl implements the SHACL validator (C7): it loads a shapes
// graph into compiled, typed shape structures and validates a data graph
// against them, producing a structured conformance report.
//
// There is no SHACL engine anywhere in the example corpus to ground this
// on directly; the shape of the component (compile once, cache by graph
// hash, evaluate targets -> properties -> node constraints in a fixed
// order) follows the teacher's own cache-then-evaluate pattern in
// internal/config/profile.go (resolve once, memoize by name), adapted to
// this domain. The parser and regexp-based sh:pattern evaluator are
// stdlib (the pack has no SHACL-aware or general RDF-shapes library) —
// see DESIGN.md.
package shacl

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/provenance-engine/engine/internal/rdf"
)

const ns = "http://www.w3.org/ns/shacl#"

const (
	shNodeShape          = ns + "NodeShape"
	shTargetClass        = ns + "targetClass"
	shTargetNode         = ns + "targetNode"
	shTargetSubjectsOf   = ns + "targetSubjectsOf"
	shTargetObjectsOf    = ns + "targetObjectsOf"
	shProperty           = ns + "property"
	shPath               = ns + "path"
	shClass              = ns + "class"
	shDatatype           = ns + "datatype"
	shNodeKind           = ns + "nodeKind"
	shMinCount           = ns + "minCount"
	shMaxCount           = ns + "maxCount"
	shMinInclusive       = ns + "minInclusive"
	shMaxInclusive       = ns + "maxInclusive"
	shMinLength          = ns + "minLength"
	shMaxLength          = ns + "maxLength"
	shPattern            = ns + "pattern"
	shIn                 = ns + "in"
	shHasValue           = ns + "hasValue"
	shNode               = ns + "node"
	shSeverityProp       = ns + "severity"
	shViolationSeverity  = ns + "Violation"
	shWarningSeverity    = ns + "Warning"
	shInfoSeverity       = ns + "Info"
	rdfTypeIRI           = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfFirst             = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rdfRest              = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	rdfNil               = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
)

// PropertyShape is a compiled sh:property constraint.
type PropertyShape struct {
	IRI          string // the property shape's own node, for stable ordering
	Path         string
	Class        string
	Datatype     string
	NodeKind     string
	MinCount     *int
	MaxCount     *int
	MinInclusive *float64
	MaxInclusive *float64
	MinLength    *int
	MaxLength    *int
	Pattern      *regexp.Regexp
	In           []string
	HasValue     string
	Node         string // nested shape IRI, if any
}

// NodeShape is a compiled sh:NodeShape.
type NodeShape struct {
	IRI              string
	TargetClass      []string
	TargetNode       []string
	TargetSubjectsOf []string
	TargetObjectsOf  []string
	Properties       []PropertyShape
}

// CompiledShapes is the output of compiling a shapes graph: every node
// shape, keyed by IRI for sh:node nested-shape lookups, plus the graph
// hash it was compiled from.
type CompiledShapes struct {
	Hash   string
	Shapes []NodeShape
	byIRI  map[string]NodeShape
}

// Compile parses shapes, a graph of SHACL shape declarations, into
// CompiledShapes. Blank-node shapes are supported as property shapes
// nested directly under sh:property; top-level node shapes are expected
// to be named (IRI) subjects of rdf:type sh:NodeShape.
func Compile(shapes *rdf.Graph) (*CompiledShapes, error) {
	bySubject := indexBySubject(shapes)

	var nodeShapeIRIs []string
	for _, triples := range bySubject {
		for _, t := range triples {
			if t.Predicate.Value == rdfTypeIRI && t.Object.Value == shNodeShape {
				nodeShapeIRIs = append(nodeShapeIRIs, t.Subject.Value)
				break
			}
		}
	}
	sort.Strings(nodeShapeIRIs)

	byIRI := make(map[string]NodeShape, len(nodeShapeIRIs))
	result := make([]NodeShape, 0, len(nodeShapeIRIs))
	for _, iri := range nodeShapeIRIs {
		ns, err := compileNodeShape(iri, bySubject)
		if err != nil {
			return nil, err
		}
		byIRI[iri] = ns
		result = append(result, ns)
	}

	return &CompiledShapes{Hash: shapes.Hash(), Shapes: result, byIRI: byIRI}, nil
}

func indexBySubject(g *rdf.Graph) map[string][]rdf.Triple {
	idx := make(map[string][]rdf.Triple)
	for _, t := range g.Triples() {
		key := t.Subject.NQuadString()
		idx[key] = append(idx[key], t)
	}
	return idx
}

func compileNodeShape(iri string, bySubject map[string][]rdf.Triple) (NodeShape, error) {
	shape := NodeShape{IRI: iri}
	subjKey := "<" + iri + ">"

	var propRefs []string
	for _, t := range bySubject[subjKey] {
		switch t.Predicate.Value {
		case shTargetClass:
			shape.TargetClass = append(shape.TargetClass, t.Object.Value)
		case shTargetNode:
			shape.TargetNode = append(shape.TargetNode, t.Object.Value)
		case shTargetSubjectsOf:
			shape.TargetSubjectsOf = append(shape.TargetSubjectsOf, t.Object.Value)
		case shTargetObjectsOf:
			shape.TargetObjectsOf = append(shape.TargetObjectsOf, t.Object.Value)
		case shProperty:
			propRefs = append(propRefs, t.Object.NQuadString())
		}
	}
	sort.Strings(propRefs)

	for _, ref := range propRefs {
		ps, err := compilePropertyShape(ref, bySubject)
		if err != nil {
			return shape, err
		}
		shape.Properties = append(shape.Properties, ps)
	}
	return shape, nil
}

func compilePropertyShape(nodeKey string, bySubject map[string][]rdf.Triple) (PropertyShape, error) {
	ps := PropertyShape{IRI: nodeKey}
	for _, t := range bySubject[nodeKey] {
		switch t.Predicate.Value {
		case shPath:
			ps.Path = t.Object.Value
		case shClass:
			ps.Class = t.Object.Value
		case shDatatype:
			ps.Datatype = t.Object.Value
		case shNodeKind:
			ps.NodeKind = t.Object.Value
		case shMinCount:
			v, err := parseIntLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MinCount = &v
		case shMaxCount:
			v, err := parseIntLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MaxCount = &v
		case shMinInclusive:
			v, err := parseFloatLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MinInclusive = &v
		case shMaxInclusive:
			v, err := parseFloatLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MaxInclusive = &v
		case shMinLength:
			v, err := parseIntLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MinLength = &v
		case shMaxLength:
			v, err := parseIntLiteral(t.Object.Value)
			if err != nil {
				return ps, err
			}
			ps.MaxLength = &v
		case shPattern:
			re, err := regexp.Compile(t.Object.Value)
			if err != nil {
				return ps, fmt.Errorf("shacl: invalid sh:pattern %q: %w", t.Object.Value, err)
			}
			ps.Pattern = re
		case shIn:
			ps.In = append(ps.In, collectRDFList(t.Object.NQuadString(), bySubject)...)
		case shHasValue:
			ps.HasValue = t.Object.Value
		case shNode:
			ps.Node = t.Object.Value
		}
	}
	return ps, nil
}

// collectRDFList walks an rdf:List (rdf:first/rdf:rest chain starting at
// headKey) and returns its element lexical values in order.
func collectRDFList(headKey string, bySubject map[string][]rdf.Triple) []string {
	var out []string
	cur := headKey
	seen := map[string]bool{}
	for cur != "" && cur != "<"+rdfNil+">" && !seen[cur] {
		seen[cur] = true
		var first, rest string
		for _, t := range bySubject[cur] {
			switch t.Predicate.Value {
			case rdfFirst:
				first = t.Object.Value
			case rdfRest:
				rest = t.Object.NQuadString()
			}
		}
		if first != "" {
			out = append(out, first)
		}
		cur = rest
	}
	return out
}

func parseIntLiteral(s string) (int, error) {
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	if err != nil {
		return 0, fmt.Errorf("shacl: invalid integer literal %q: %w", s, err)
	}
	return v, nil
}

func parseFloatLiteral(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	if err != nil {
		return 0, fmt.Errorf("shacl: invalid numeric literal %q: %w", s, err)
	}
	return v, nil
}
