package rdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

// RDF/XML support is restricted to the common "striped" document shape:
// an rdf:RDF root containing rdf:Description elements, each with an
// rdf:about IRI and child property elements that are either a literal
// text value or an rdf:resource reference. Nested anonymous resources,
// rdf:parseType="Collection", and reification are out of scope — no
// example repo in the corpus parses RDF/XML, so this codec is a minimal
// stdlib encoding/xml implementation covering the shapes the engine's own
// templates are expected to emit. See DESIGN.md for the stdlib
// justification.

type rdfXMLDoc struct {
	XMLName      xml.Name            `xml:"RDF"`
	Descriptions []rdfXMLDescription `xml:"Description"`
}

type rdfXMLDescription struct {
	About      string           `xml:"about,attr"`
	Type       *rdfXMLResource  `xml:"type"`
	Properties []rdfXMLProperty `xml:",any"`
}

type rdfXMLResource struct {
	Resource string `xml:"resource,attr"`
}

type rdfXMLProperty struct {
	XMLName  xml.Name
	Resource string `xml:"resource,attr"`
	Lang     string `xml:"lang,attr"`
	Datatype string `xml:"datatype,attr"`
	Value    string `xml:",chardata"`
}

func parseRDFXML(r io.Reader) (*Graph, error) {
	var doc rdfXMLDoc
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("rdf: parse rdfxml: %w", err)
	}

	g := NewGraph()
	for _, d := range doc.Descriptions {
		if d.About == "" {
			continue // anonymous/blank-node descriptions are out of scope
		}
		subj := NewIRI(d.About)

		if d.Type != nil && d.Type.Resource != "" {
			g.Add(Triple{Subject: subj, Predicate: NewIRI(rdfType), Object: NewIRI(d.Type.Resource)})
		}

		for _, p := range d.Properties {
			pred := NewIRI(p.XMLName.Space + p.XMLName.Local)
			switch {
			case p.Resource != "":
				g.Add(Triple{Subject: subj, Predicate: pred, Object: NewIRI(p.Resource)})
			case p.Datatype != "":
				g.Add(Triple{Subject: subj, Predicate: pred, Object: NewTypedLiteral(p.Value, p.Datatype)})
			case p.Lang != "":
				g.Add(Triple{Subject: subj, Predicate: pred, Object: NewLangLiteral(p.Value, p.Lang)})
			default:
				g.Add(Triple{Subject: subj, Predicate: pred, Object: NewLiteral(p.Value)})
			}
		}
	}
	return g, nil
}

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

func serializeRDFXML(w io.Writer, g *Graph) error {
	type propOut struct {
		pred Term
		obj  Term
	}
	bySubject := map[string][]propOut{}
	var subjects []string

	for _, t := range g.Triples() {
		if t.Subject.Kind != KindIRI {
			continue
		}
		if _, ok := bySubject[t.Subject.Value]; !ok {
			subjects = append(subjects, t.Subject.Value)
		}
		bySubject[t.Subject.Value] = append(bySubject[t.Subject.Value], propOut{pred: t.Predicate, obj: t.Object})
	}
	sort.Strings(subjects)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<rdf:RDF xmlns:rdf="`+rdfNS+"\">\n"); err != nil {
		return err
	}

	for _, subj := range subjects {
		props := bySubject[subj]
		sort.Slice(props, func(i, j int) bool {
			return props[i].pred.Value+props[i].obj.NQuadString() < props[j].pred.Value+props[j].obj.NQuadString()
		})

		if _, err := fmt.Fprintf(w, "  <rdf:Description rdf:about=%q>\n", subj); err != nil {
			return err
		}
		for _, p := range props {
			if err := writeRDFXMLProperty(w, p.pred, p.obj); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "  </rdf:Description>\n"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</rdf:RDF>\n")
	return err
}

func writeRDFXMLProperty(w io.Writer, pred, obj Term) error {
	tag := xmlLocalName(pred.Value)
	switch obj.Kind {
	case KindIRI:
		_, err := fmt.Fprintf(w, "    <%s rdf:resource=%q/>\n", tag, obj.Value)
		return err
	case KindLiteral:
		escaped := escapeXMLText(obj.Value)
		switch {
		case obj.Lang != "":
			_, err := fmt.Fprintf(w, "    <%s xml:lang=%q>%s</%s>\n", tag, obj.Lang, escaped, tag)
			return err
		case obj.Datatype != "":
			_, err := fmt.Fprintf(w, "    <%s rdf:datatype=%q>%s</%s>\n", tag, obj.Datatype, escaped, tag)
			return err
		default:
			_, err := fmt.Fprintf(w, "    <%s>%s</%s>\n", tag, escaped, tag)
			return err
		}
	default:
		return fmt.Errorf("rdf: serialize rdfxml: blank-node objects unsupported")
	}
}

func escapeXMLText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// xmlLocalName returns the last path/fragment segment of an IRI for use
// as an XML element tag, e.g. "http://xmlns.com/foaf/0.1/name" -> "name".
func xmlLocalName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		switch iri[i] {
		case '#', '/':
			return iri[i+1:]
		}
	}
	return iri
}
