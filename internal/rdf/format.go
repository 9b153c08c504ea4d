package rdf

import (
	"fmt"
	"io"

	knakk "github.com/knakk/rdf"
)

// Format identifies a concrete RDF serialization syntax.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatN3       Format = "n3"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
	FormatRDFXML   Format = "rdfxml"
)

// ParseFormat maps a lowercase format name (as used in engine.toml and
// frontmatter directives) to a Format, reporting an error for anything
// outside the supported set.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTurtle, FormatN3, FormatNTriples, FormatNQuads, FormatJSONLD, FormatRDFXML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("rdf: unsupported format %q", s)
	}
}

// toKnakkFormat maps a Format onto the knakk/rdf decoder/encoder it should
// use. N3 has no dedicated codec in knakk/rdf; it is parsed/serialized as
// Turtle, which is a valid subset of N3 and covers every construct this
// engine's templates actually emit (no N3 rules or formulas).
func toKnakkFormat(f Format) (knakk.Format, error) {
	switch f {
	case FormatTurtle, FormatN3:
		return knakk.Turtle, nil
	case FormatNTriples:
		return knakk.NTriples, nil
	case FormatNQuads:
		return knakk.NQuads, nil
	default:
		return 0, fmt.Errorf("rdf: format %q is not handled by the knakk/rdf codec", f)
	}
}

func fromKnakkTerm(t knakk.Term) Term {
	switch v := t.(type) {
	case knakk.IRI:
		return NewIRI(v.String())
	case knakk.Blank:
		return NewBlank(v.String())
	case knakk.Literal:
		dt := v.DataType.String()
		lang := v.Lang()
		switch {
		case lang != "":
			return NewLangLiteral(v.String(), lang)
		case dt != "" && dt != xsdString:
			return NewTypedLiteral(v.String(), dt)
		default:
			return NewLiteral(v.String())
		}
	default:
		return NewLiteral(t.String())
	}
}

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

func toKnakkTerm(t Term) (knakk.Term, error) {
	switch t.Kind {
	case KindIRI:
		return knakk.NewIRI(t.Value)
	case KindBlank:
		return knakk.NewBlank(t.Value)
	case KindLiteral:
		switch {
		case t.Lang != "":
			return knakk.NewLangLiteral(t.Value, t.Lang), nil
		case t.Datatype != "":
			dt, err := knakk.NewIRI(t.Datatype)
			if err != nil {
				return nil, err
			}
			return knakk.NewTypedLiteral(t.Value, dt), nil
		default:
			return knakk.NewLiteral(t.Value)
		}
	default:
		return nil, fmt.Errorf("rdf: unknown term kind %d", t.Kind)
	}
}

// Parse decodes r as format into a Graph. Turtle, N-Triples, and N-Quads
// are decoded via knakk/rdf; JSON-LD and RDF/XML use the restricted
// codecs in jsonld.go and rdfxml.go.
func Parse(r io.Reader, format Format) (*Graph, error) {
	switch format {
	case FormatJSONLD:
		return parseJSONLD(r)
	case FormatRDFXML:
		return parseRDFXML(r)
	}

	kf, err := toKnakkFormat(format)
	if err != nil {
		return nil, err
	}

	dec := knakk.NewTripleDecoder(r, kf)
	g := NewGraph()
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rdf: parse %s: %w", format, err)
		}
		g.Add(Triple{
			Subject:   fromKnakkTerm(tr.Subj),
			Predicate: fromKnakkTerm(tr.Pred),
			Object:    fromKnakkTerm(tr.Obj),
		})
	}
	return g, nil
}

// Serialize writes g to w in the given format. Turtle, N3, N-Triples and
// N-Quads output lists triples in the graph's stored order; the JSON-LD
// and RDF/XML codecs group triples by subject and write the subjects in
// sorted order. Callers that need a canonical byte-stable
// serialization should sort via Graph.SortedLines and hash instead of
// comparing serialized bytes directly.
func Serialize(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatJSONLD:
		return serializeJSONLD(w, g)
	case FormatRDFXML:
		return serializeRDFXML(w, g)
	}

	kf, err := toKnakkFormat(format)
	if err != nil {
		return err
	}

	enc := knakk.NewTripleEncoder(w, kf)
	for _, t := range g.Triples() {
		subj, err := toKnakkTerm(t.Subject)
		if err != nil {
			return err
		}
		pred, err := toKnakkTerm(t.Predicate)
		if err != nil {
			return err
		}
		obj, err := toKnakkTerm(t.Object)
		if err != nil {
			return err
		}
		if err := enc.Encode(knakk.Triple{Subj: subj, Pred: pred, Obj: obj}); err != nil {
			return fmt.Errorf("rdf: serialize %s: %w", format, err)
		}
	}
	return enc.Close()
}
