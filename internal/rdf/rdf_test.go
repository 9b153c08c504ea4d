package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat_Known(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"turtle", "n3", "ntriples", "nquads", "jsonld", "rdfxml"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestParseSerializeN3_RoutesThroughTurtle(t *testing.T) {
	t.Parallel()

	input := `<http://ex/john> <http://ex/name> "John" .` + "\n"
	g, err := Parse(strings.NewReader(input), FormatN3)
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, g, FormatN3))
	assert.Contains(t, buf.String(), "John")
}

func TestParseSerializeNTriples_RoundTrip(t *testing.T) {
	t.Parallel()

	input := `<http://ex/john> <http://ex/name> "John" .` + "\n"
	g, err := Parse(strings.NewReader(input), FormatNTriples)
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())

	tr := g.Triples()[0]
	assert.Equal(t, "http://ex/john", tr.Subject.Value)
	assert.Equal(t, KindIRI, tr.Subject.Kind)
	assert.Equal(t, "John", tr.Object.Value)
	assert.Equal(t, KindLiteral, tr.Object.Kind)

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, g, FormatNTriples))
	assert.Contains(t, buf.String(), "John")
}

func TestGraph_HashIsOrderIndependent(t *testing.T) {
	t.Parallel()

	g1 := NewGraph()
	g1.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})
	g1.Add(Triple{Subject: NewIRI("http://ex/b"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("2")})

	g2 := NewGraph()
	g2.Add(Triple{Subject: NewIRI("http://ex/b"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("2")})
	g2.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})

	assert.Equal(t, g1.Hash(), g2.Hash())
}

func TestGraph_BlankNodeRatio(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Add(Triple{Subject: NewBlank("b0"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})
	g.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("2")})

	assert.InDelta(t, 0.5, g.BlankNodeRatio(), 0.0001)
}

func TestDiff_CosmeticWhenEqual(t *testing.T) {
	t.Parallel()

	a := NewGraph()
	a.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})
	b := NewGraph()
	b.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})

	d := Diff(a, b)
	assert.True(t, d.Empty())
}

func TestDiff_DetectsAddedAndRemoved(t *testing.T) {
	t.Parallel()

	expected := NewGraph()
	expected.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("1")})

	current := NewGraph()
	current.Add(Triple{Subject: NewIRI("http://ex/a"), Predicate: NewIRI("http://ex/p"), Object: NewLiteral("2")})

	d := Diff(expected, current)
	require.Len(t, d.Removed, 1)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "1", d.Removed[0].Object.Value)
	assert.Equal(t, "2", d.Added[0].Object.Value)
}

func TestJSONLD_ParseAndSerialize(t *testing.T) {
	t.Parallel()

	input := `{"@id":"http://ex/john","@type":"http://ex/Person","http://ex/name":"John"}`
	g, err := Parse(strings.NewReader(input), FormatJSONLD)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, g, FormatJSONLD))
	assert.Contains(t, buf.String(), "http://ex/john")
}

func TestRDFXML_ParseBasic(t *testing.T) {
	t.Parallel()

	input := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:foaf="http://xmlns.com/foaf/0.1/">
  <rdf:Description rdf:about="http://ex/john">
    <foaf:name>John</foaf:name>
  </rdf:Description>
</rdf:RDF>`

	g, err := Parse(strings.NewReader(input), FormatRDFXML)
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, "John", g.Triples()[0].Object.Value)
}
