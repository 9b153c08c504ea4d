package shacl

import (
	"strings"
	"testing"

	"github.com/provenance-engine/engine/internal/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesTTL = `
@prefix sh: <http://www.w3.org/ns/shacl#> .
@prefix ex: <http://ex/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .

ex:PersonShape a sh:NodeShape ;
	sh:targetClass foaf:Person ;
	sh:property ex:emailShape .

ex:emailShape sh:path foaf:email ;
	sh:minCount 1 .
`

func mustParseTurtle(t *testing.T, s string) *rdf.Graph {
	t.Helper()
	g, err := rdf.Parse(strings.NewReader(s), rdf.FormatTurtle)
	require.NoError(t, err)
	return g
}

func TestCompile_ParsesNodeShapeAndProperty(t *testing.T) {
	t.Parallel()

	shapes := mustParseTurtle(t, shapesTTL)
	compiled, err := Compile(shapes)
	require.NoError(t, err)
	require.Len(t, compiled.Shapes, 1)

	shape := compiled.Shapes[0]
	assert.Equal(t, []string{"http://xmlns.com/foaf/0.1/Person"}, shape.TargetClass)
	require.Len(t, shape.Properties, 1)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/email", shape.Properties[0].Path)
	require.NotNil(t, shape.Properties[0].MinCount)
	assert.Equal(t, 1, *shape.Properties[0].MinCount)
}

func TestValidate_MinCountViolation(t *testing.T) {
	t.Parallel()

	shapes := mustParseTurtle(t, shapesTTL)
	compiled, err := Compile(shapes)
	require.NoError(t, err)

	data := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:john a foaf:Person ;
	foaf:name "John" .
`)

	report := Validate(data, compiled)
	assert.False(t, report.Conforms)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/email", report.Results[0].PropertyPath)
	assert.Equal(t, "http://ex/john", report.Results[0].FocusNode)
}

func TestValidate_Conforms(t *testing.T) {
	t.Parallel()

	shapes := mustParseTurtle(t, shapesTTL)
	compiled, err := Compile(shapes)
	require.NoError(t, err)

	data := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:john a foaf:Person ;
	foaf:name "John" ;
	foaf:email "john@example.com" .
`)

	report := Validate(data, compiled)
	assert.True(t, report.Conforms)
	assert.Zero(t, report.TotalViolations)
}

func TestCache_GetOrCompileHitsOnSecondCall(t *testing.T) {
	t.Parallel()

	shapes := mustParseTurtle(t, shapesTTL)
	cache := NewCache(4)

	c1, err := cache.GetOrCompile(shapes)
	require.NoError(t, err)
	c2, err := cache.GetOrCompile(shapes)
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_EvictsLRUBeyondCapacity(t *testing.T) {
	t.Parallel()

	cache := NewCache(1)

	s1 := mustParseTurtle(t, shapesTTL)
	s2 := mustParseTurtle(t, strings.Replace(shapesTTL, "PersonShape", "OtherShape", 1))

	_, err := cache.GetOrCompile(s1)
	require.NoError(t, err)
	_, err = cache.GetOrCompile(s2)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
}

func TestCache_ClearEmptiesCache(t *testing.T) {
	t.Parallel()

	cache := NewCache(4)
	shapes := mustParseTurtle(t, shapesTTL)
	_, err := cache.GetOrCompile(shapes)
	require.NoError(t, err)

	cache.Clear()
	assert.Zero(t, cache.Len())
}
