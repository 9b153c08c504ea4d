package shacl

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/provenance-engine/engine/internal/rdf"
)

// Severity is a violation's reported severity level.
type Severity string

const (
	SeverityViolation Severity = "Violation"
	SeverityWarning   Severity = "Warning"
	SeverityInfo      Severity = "Info"
)

// Violation is a single constraint failure.
type Violation struct {
	FocusNode          string
	PropertyPath       string
	Value              string
	Messages           []string
	Severity           Severity
	ConstraintComponent string
	SourceShape        string
}

// ConformanceReport is the SHACL validator's output (§4.7).
type ConformanceReport struct {
	Conforms       bool
	Results        []Violation
	TotalViolations int
}

// Validate checks data against the compiled shapes: for each node shape
// it resolves the focus nodes from its targets, then evaluates its
// property shapes in the lexical order of their node identifiers, for
// stable violation ordering. Node shapes carry no node-level constraints
// of their own; sh:node is followed only from property values.
func Validate(data *rdf.Graph, shapes *CompiledShapes) ConformanceReport {
	index := newDataIndex(data)

	var violations []Violation
	for _, shape := range shapes.Shapes {
		focusNodes := resolveTargets(shape, index)
		for _, focus := range focusNodes {
			for _, prop := range shape.Properties {
				violations = append(violations, evaluateProperty(focus, prop, index, shapes)...)
			}
		}
	}

	return ConformanceReport{
		Conforms:        len(violations) == 0,
		Results:         violations,
		TotalViolations: len(violations),
	}
}

// dataIndex provides the lookups shape evaluation needs: triples by
// subject, by predicate, by object, and rdf:type membership.
type dataIndex struct {
	bySubject   map[string][]rdf.Triple
	byPredicate map[string][]rdf.Triple
	typesOf     map[string]map[string]bool // subject IRI -> set of class IRIs
}

func newDataIndex(g *rdf.Graph) *dataIndex {
	idx := &dataIndex{
		bySubject:   map[string][]rdf.Triple{},
		byPredicate: map[string][]rdf.Triple{},
		typesOf:     map[string]map[string]bool{},
	}
	for _, t := range g.Triples() {
		idx.bySubject[t.Subject.Value] = append(idx.bySubject[t.Subject.Value], t)
		idx.byPredicate[t.Predicate.Value] = append(idx.byPredicate[t.Predicate.Value], t)
		if t.Predicate.Value == rdfTypeIRI {
			if idx.typesOf[t.Subject.Value] == nil {
				idx.typesOf[t.Subject.Value] = map[string]bool{}
			}
			idx.typesOf[t.Subject.Value][t.Object.Value] = true
		}
	}
	return idx
}

func resolveTargets(shape NodeShape, idx *dataIndex) []string {
	set := map[string]bool{}
	for _, cls := range shape.TargetClass {
		for subj, types := range idx.typesOf {
			if types[cls] {
				set[subj] = true
			}
		}
	}
	for _, n := range shape.TargetNode {
		set[n] = true
	}
	for _, pred := range shape.TargetSubjectsOf {
		for _, t := range idx.byPredicate[pred] {
			set[t.Subject.Value] = true
		}
	}
	for _, pred := range shape.TargetObjectsOf {
		for _, t := range idx.byPredicate[pred] {
			if t.Object.Kind == rdf.KindIRI {
				set[t.Object.Value] = true
			}
		}
	}

	nodes := make([]string, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

func evaluateProperty(focus string, prop PropertyShape, idx *dataIndex, shapes *CompiledShapes) []Violation {
	var values []rdf.Term
	for _, t := range idx.bySubject[focus] {
		if t.Predicate.Value == prop.Path {
			values = append(values, t.Object)
		}
	}

	var violations []Violation
	add := func(val string, component, msg string) {
		violations = append(violations, Violation{
			FocusNode:           focus,
			PropertyPath:        prop.Path,
			Value:               val,
			Messages:            []string{msg},
			Severity:            SeverityViolation,
			ConstraintComponent: ns + component,
			SourceShape:         prop.IRI,
		})
	}

	if prop.MinCount != nil && len(values) < *prop.MinCount {
		add("", "MinCountConstraintComponent", fmt.Sprintf("property %s has %d values, expected at least %d", prop.Path, len(values), *prop.MinCount))
	}
	if prop.MaxCount != nil && len(values) > *prop.MaxCount {
		add("", "MaxCountConstraintComponent", fmt.Sprintf("property %s has %d values, expected at most %d", prop.Path, len(values), *prop.MaxCount))
	}
	if prop.HasValue != "" {
		found := false
		for _, v := range values {
			if v.Value == prop.HasValue {
				found = true
				break
			}
		}
		if !found {
			add(prop.HasValue, "HasValueConstraintComponent", fmt.Sprintf("property %s must have value %q", prop.Path, prop.HasValue))
		}
	}

	for _, v := range values {
		violations = append(violations, evaluateValueConstraints(focus, prop, v, idx, shapes)...)
	}
	return violations
}

func evaluateValueConstraints(focus string, prop PropertyShape, v rdf.Term, idx *dataIndex, shapes *CompiledShapes) []Violation {
	var out []Violation
	fail := func(component, msg string) {
		out = append(out, Violation{
			FocusNode:           focus,
			PropertyPath:        prop.Path,
			Value:               v.Value,
			Messages:            []string{msg},
			Severity:            SeverityViolation,
			ConstraintComponent: ns + component,
			SourceShape:         prop.IRI,
		})
	}

	if prop.Class != "" {
		if v.Kind != rdf.KindIRI || !idx.typesOf[v.Value][prop.Class] {
			fail("ClassConstraintComponent", fmt.Sprintf("value %s is not of class %s", v.Value, prop.Class))
		}
	}
	if prop.Datatype != "" {
		if v.Kind != rdf.KindLiteral || v.Datatype != prop.Datatype {
			fail("DatatypeConstraintComponent", fmt.Sprintf("value %s does not have datatype %s", v.Value, prop.Datatype))
		}
	}
	if prop.NodeKind != "" {
		if !matchesNodeKind(v, prop.NodeKind) {
			fail("NodeKindConstraintComponent", fmt.Sprintf("value %s does not match node kind %s", v.Value, prop.NodeKind))
		}
	}
	if prop.MinLength != nil && len(v.Value) < *prop.MinLength {
		fail("MinLengthConstraintComponent", fmt.Sprintf("value %q is shorter than minLength %d", v.Value, *prop.MinLength))
	}
	if prop.MaxLength != nil && len(v.Value) > *prop.MaxLength {
		fail("MaxLengthConstraintComponent", fmt.Sprintf("value %q is longer than maxLength %d", v.Value, *prop.MaxLength))
	}
	if prop.Pattern != nil && !prop.Pattern.MatchString(v.Value) {
		fail("PatternConstraintComponent", fmt.Sprintf("value %q does not match pattern %q", v.Value, prop.Pattern.String()))
	}
	if len(prop.In) > 0 && !contains(prop.In, v.Value) {
		fail("InConstraintComponent", fmt.Sprintf("value %q is not in the permitted set", v.Value))
	}
	if prop.MinInclusive != nil || prop.MaxInclusive != nil {
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			if prop.MinInclusive != nil && f < *prop.MinInclusive {
				fail("MinInclusiveConstraintComponent", fmt.Sprintf("value %v is less than minInclusive %v", f, *prop.MinInclusive))
			}
			if prop.MaxInclusive != nil && f > *prop.MaxInclusive {
				fail("MaxInclusiveConstraintComponent", fmt.Sprintf("value %v is greater than maxInclusive %v", f, *prop.MaxInclusive))
			}
		}
	}
	if prop.Node != "" {
		if nested, ok := shapes.byIRI[prop.Node]; ok && v.Kind == rdf.KindIRI {
			for _, nestedProp := range nested.Properties {
				out = append(out, evaluateProperty(v.Value, nestedProp, idx, shapes)...)
			}
		}
	}
	return out
}

func matchesNodeKind(v rdf.Term, kind string) bool {
	switch kind {
	case ns + "IRI":
		return v.Kind == rdf.KindIRI
	case ns + "Literal":
		return v.Kind == rdf.KindLiteral
	case ns + "BlankNode":
		return v.Kind == rdf.KindBlank
	default:
		return true
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
