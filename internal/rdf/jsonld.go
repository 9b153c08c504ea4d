package rdf

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// JSON-LD support is intentionally restricted to a compacted-document
// subset: a single JSON object (or array of objects) using "@id",
// "@type", and plain or "@value"/"@language"/"@type"-object property
// values, all IRIs already fully expanded (no "@context" term expansion).
// No library in the example corpus implements JSON-LD expansion, and
// pulling in a general-purpose JSON-LD processor was judged out of scope
// for what the generator actually needs: templates that emit or consume
// JSON-LD in this engine always emit already-expanded IRIs, since the
// deterministic template engine has no context-expansion step of its own.
// See DESIGN.md for the stdlib-justification entry.

type jsonldNode struct {
	ID         string                     `json:"@id,omitempty"`
	Type       jsonldTypeList             `json:"@type,omitempty"`
	Properties map[string]json.RawMessage `json:"-"`
}

// jsonldTypeList accepts either a single "@type" string or an array.
type jsonldTypeList []string

func (l *jsonldTypeList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

func parseJSONLD(r io.Reader) (*Graph, error) {
	var raw any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("rdf: parse jsonld: %w", err)
	}

	g := NewGraph()
	switch v := raw.(type) {
	case map[string]any:
		if err := addJSONLDNode(g, v); err != nil {
			return nil, err
		}
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("rdf: parse jsonld: expected object in top-level array")
			}
			if err := addJSONLDNode(g, obj); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("rdf: parse jsonld: expected object or array at document root")
	}
	return g, nil
}

func addJSONLDNode(g *Graph, obj map[string]any) error {
	idVal, ok := obj["@id"].(string)
	if !ok || idVal == "" {
		return fmt.Errorf("rdf: parse jsonld: node missing \"@id\"")
	}
	subj := NewIRI(idVal)

	if t, ok := obj["@type"]; ok {
		for _, typeIRI := range asStringList(t) {
			g.Add(Triple{Subject: subj, Predicate: NewIRI(rdfType), Object: NewIRI(typeIRI)})
		}
	}

	for key, val := range obj {
		if strings.HasPrefix(key, "@") {
			continue
		}
		for _, obj := range jsonldValueTerms(val) {
			g.Add(Triple{Subject: subj, Predicate: NewIRI(key), Object: obj})
		}
	}
	return nil
}

func asStringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func jsonldValueTerms(v any) []Term {
	switch t := v.(type) {
	case []any:
		var out []Term
		for _, item := range t {
			out = append(out, jsonldValueTerms(item)...)
		}
		return out
	case map[string]any:
		if id, ok := t["@id"].(string); ok {
			return []Term{NewIRI(id)}
		}
		lexVal, _ := t["@value"].(string)
		if lang, ok := t["@language"].(string); ok {
			return []Term{NewLangLiteral(lexVal, lang)}
		}
		if dt, ok := t["@type"].(string); ok {
			return []Term{NewTypedLiteral(lexVal, dt)}
		}
		return []Term{NewLiteral(lexVal)}
	case string:
		return []Term{NewLiteral(t)}
	case bool:
		return []Term{NewTypedLiteral(fmt.Sprintf("%v", t), "http://www.w3.org/2001/XMLSchema#boolean")}
	case float64:
		return []Term{NewTypedLiteral(trimFloat(t), "http://www.w3.org/2001/XMLSchema#double")}
	default:
		return nil
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

// nodeValue renders a Term as the JSON-LD value shape used on output:
// an IRI object reference, or a plain/typed/lang-tagged literal value.
func nodeValue(t Term) any {
	switch t.Kind {
	case KindIRI:
		return map[string]any{"@id": t.Value}
	case KindBlank:
		return map[string]any{"@id": "_:" + t.Value}
	case KindLiteral:
		switch {
		case t.Lang != "":
			return map[string]any{"@value": t.Value, "@language": t.Lang}
		case t.Datatype != "":
			return map[string]any{"@value": t.Value, "@type": t.Datatype}
		default:
			return t.Value
		}
	default:
		return nil
	}
}

// serializeJSONLD emits one flattened JSON-LD node object per distinct
// subject IRI, each carrying its rdf:type values under "@type" and every
// other predicate as a property key mapped to an array of value objects.
// Output is grouped by subject and the subjects are written in sorted
// order, so the byte output is stable across invocations for a fixed
// input graph.
func serializeJSONLD(w io.Writer, g *Graph) error {
	type nodeAcc struct {
		id    string
		types []string
		props map[string][]any
		order []string
	}
	nodes := make(map[string]*nodeAcc)
	var order []string

	for _, t := range g.Triples() {
		if t.Subject.Kind != KindIRI {
			continue // blank-node subjects are out of scope for this restricted codec
		}
		n, ok := nodes[t.Subject.Value]
		if !ok {
			n = &nodeAcc{id: t.Subject.Value, props: map[string][]any{}}
			nodes[t.Subject.Value] = n
			order = append(order, t.Subject.Value)
		}
		if t.Predicate.Kind == KindIRI && t.Predicate.Value == rdfType && t.Object.Kind == KindIRI {
			n.types = append(n.types, t.Object.Value)
			continue
		}
		if _, seen := n.props[t.Predicate.Value]; !seen {
			n.order = append(n.order, t.Predicate.Value)
		}
		n.props[t.Predicate.Value] = append(n.props[t.Predicate.Value], nodeValue(t.Object))
	}

	sortStrings(order)

	docs := make([]map[string]any, 0, len(order))
	for _, id := range order {
		n := nodes[id]
		doc := map[string]any{"@id": n.id}
		if len(n.types) > 0 {
			sortStrings(n.types)
			doc["@type"] = n.types
		}
		sortStrings(n.order)
		for _, pred := range n.order {
			doc[pred] = n.props[pred]
		}
		docs = append(docs, doc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func sortStrings(s []string) {
	sort.Strings(s)
}
