package rules

import (
	"strings"
	"testing"

	"github.com/provenance-engine/engine/internal/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTurtle(t *testing.T, s string) *rdf.Graph {
	t.Helper()
	g, err := rdf.Parse(strings.NewReader(s), rdf.FormatTurtle)
	require.NoError(t, err)
	return g
}

func TestRegistry_RegisterValidatesID(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	err := r.Register(Rule{ID: "bad id", Severity: SeverityLow, Category: CategoryNaming, Execute: func(*rdf.Graph) Result { return Result{} }})
	assert.Error(t, err)
}

func TestRegistry_RegisterValidatesSeverityAndCategory(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	exec := func(*rdf.Graph) Result { return Result{} }

	assert.Error(t, r.Register(Rule{ID: "x", Severity: "Nope", Category: CategoryNaming, Execute: exec}))
	assert.Error(t, r.Register(Rule{ID: "x", Severity: SeverityLow, Category: "nope", Execute: exec}))
	assert.Error(t, r.Register(Rule{ID: "x", Severity: SeverityLow, Category: CategoryNaming, Execute: nil}))
}

func TestRegistry_RegisterCallsOnRegisterEachTime(t *testing.T) {
	t.Parallel()

	calls := 0
	r := NewRegistry(func() { calls++ })
	exec := func(*rdf.Graph) Result { return Result{} }

	require.NoError(t, r.Register(Rule{ID: "a", Severity: SeverityLow, Category: CategoryNaming, Execute: exec}))
	require.NoError(t, r.Register(Rule{ID: "b", Severity: SeverityLow, Category: CategoryNaming, Execute: exec}))

	assert.Equal(t, 2, calls)
}

func TestRegistry_RunAllRespectsOrderAndDisabled(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	var order []string
	mk := func(id string) Rule {
		return Rule{ID: id, Severity: SeverityLow, Category: CategoryNaming, Execute: func(*rdf.Graph) Result {
			order = append(order, id)
			return Result{RuleID: id, Passed: true}
		}}
	}
	require.NoError(t, r.Register(mk("b")))
	require.NoError(t, r.Register(mk("a")))
	require.NoError(t, r.Register(mk("c")))

	results := r.RunAll(&rdf.Graph{}, []string{"a"})
	require.Len(t, results, 2)
	assert.Equal(t, []string{"b", "c"}, order)
	assert.Equal(t, []string{"b", "c", "a"}, r.IDs())
}

func TestGraphSizeRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `@prefix ex: <http://ex/> . ex:a ex:b ex:c .`)

	ok := GraphSizeRule(10).Execute(g)
	assert.True(t, ok.Passed)

	tooSmall := GraphSizeRule(0).Execute(g)
	assert.False(t, tooSmall.Passed)
	require.Len(t, tooSmall.Violations, 1)
}

func TestDatatypeConsistencyRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
ex:a ex:age "30"^^xsd:integer .
ex:b ex:age "thirty"^^xsd:string .
`)
	result := DatatypeConsistencyRule().Execute(g)
	assert.False(t, result.Passed)
	require.Len(t, result.Warnings, 1)
}

func TestDatatypeConsistencyRule_Consistent(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
ex:a ex:age "30"^^xsd:integer .
ex:b ex:age "40"^^xsd:integer .
`)
	result := DatatypeConsistencyRule().Execute(g)
	assert.True(t, result.Passed)
}

func TestURIFormRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <urn:ex:> .
ex:a ex:b ex:c .
`)
	result := URIFormRule().Execute(g)
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Warnings)
}

func TestBlankNodeUsageRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
ex:a ex:knows _:b1 .
`)
	result := BlankNodeUsageRule().Execute(g)
	assert.False(t, result.Passed)
	require.Len(t, result.Warnings, 1)
}

func TestBlankNodeUsageRule_ReferencedAsSubjectOK(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
ex:a ex:knows _:b1 .
_:b1 ex:name "Anon" .
`)
	result := BlankNodeUsageRule().Execute(g)
	assert.True(t, result.Passed)
}

func TestNamespaceConsistencyRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix only: <http://only-once/> .
ex:a ex:b only:Thing .
ex:c ex:b ex:d .
`)
	result := NamespaceConsistencyRule().Execute(g)
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Warnings)
}

func TestOWLSubclassCycleRule_DetectsCycle(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
ex:A rdfs:subClassOf ex:B .
ex:B rdfs:subClassOf ex:C .
ex:C rdfs:subClassOf ex:A .
`)
	result := OWLSubclassCycleRule().Execute(g)
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Violations)
}

func TestOWLSubclassCycleRule_NoCycle(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
ex:A rdfs:subClassOf ex:B .
ex:B rdfs:subClassOf ex:C .
`)
	result := OWLSubclassCycleRule().Execute(g)
	assert.True(t, result.Passed)
}

func TestFunctionalPropertyRule(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
ex:a ex:ssn "111" .
ex:a ex:ssn "222" .
`)
	result := FunctionalPropertyRule([]string{"http://ex/ssn"}).Execute(g)
	assert.False(t, result.Passed)
	require.Len(t, result.Violations, 1)
}

func TestFunctionalPropertyRule_SingleValueOK(t *testing.T) {
	t.Parallel()

	g := mustParseTurtle(t, `
@prefix ex: <http://ex/> .
ex:a ex:ssn "111" .
`)
	result := FunctionalPropertyRule([]string{"http://ex/ssn"}).Execute(g)
	assert.True(t, result.Passed)
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, RegisterBuiltins(r, 1000, []string{"http://ex/ssn"}))
	assert.Len(t, r.IDs(), 7)
}
