package engine

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Options{
		BaselinePath:    filepath.Join(t.TempDir(), ".drift-baseline.json"),
		ShapesCacheSize: 4,
		MaxGraphSize:    1000,
	})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(context.Background()))
	return e
}

func TestEngine_InitializeAndShutdown(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	assert.Equal(t, StateReady, e.State())

	require.NoError(t, e.Shutdown(context.Background()))
	assert.Equal(t, StateShutdown, e.State())
}

func TestEngine_OperationsRejectedAfterShutdown(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	require.NoError(t, e.Shutdown(context.Background()))

	_, err := e.Verify(context.Background(), filepath.Join(t.TempDir(), "x.txt"))
	assert.Error(t, err)
}

func TestEngine_DoubleInitializeFails(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	err := e.Initialize(context.Background())
	assert.Error(t, err)
}

func TestEngine_GenerateAndVerify(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	art, err := e.Generate(context.Background(), GenerateRequest{
		ID:               "1",
		TemplateHash:     "th1",
		TemplateBody:     "Hello {{ .name }}!",
		OutputPath:       outPath,
		WriteAttestation: true,
		Context:          map[string]any{"name": "World"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, art.ContentHash)

	result, err := e.Verify(context.Background(), art.OutputPath)
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestEngine_Validate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	shapes, err := rdf.Parse(strings.NewReader(`
@prefix sh: <http://www.w3.org/ns/shacl#> .
@prefix ex: <http://ex/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:PersonShape a sh:NodeShape ;
	sh:targetClass foaf:Person ;
	sh:property ex:emailShape .
ex:emailShape sh:path foaf:email ;
	sh:minCount 1 .
`), rdf.FormatTurtle)
	require.NoError(t, err)

	data, err := rdf.Parse(strings.NewReader(`
@prefix ex: <http://ex/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:john a foaf:Person ;
	foaf:name "John" .
`), rdf.FormatTurtle)
	require.NoError(t, err)

	result, err := e.Validate(context.Background(), ValidateRequest{Data: data, Shapes: shapes})
	require.NoError(t, err)
	assert.False(t, result.Shacl.Conforms)
	assert.NotEmpty(t, result.RuleResults)
}

func TestEngine_DriftUsesOwnBaselineWhenNoneGiven(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "missing.txt")

	result, err := e.Drift(context.Background(), drift.Input{Path: path, ExpectedHash: "x"})
	require.NoError(t, err)
	assert.Equal(t, drift.TypeDeleted, result.Type)
}

func TestEngine_MetricsIncrementOnOperations(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_, _ = e.Verify(context.Background(), filepath.Join(t.TempDir(), "x.txt"))

	assert.Equal(t, int64(1), e.Metrics().VerifyCalls)
}
