package drift

import (
	"bytes"
	"fmt"
	"os"

	"github.com/provenance-engine/engine/internal/artifact"
	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/provenance-engine/engine/internal/rdf"
)

// Provenance is the subset of an attestation's provenance fields needed
// to decide whether regeneration is worth attempting.
type Provenance struct {
	TemplatePath    string
	TemplateHash    string
	SourceGraphHash string
	VariablesHash   string
}

func (p *Provenance) sufficient() bool {
	return p != nil && p.TemplatePath != "" && p.SourceGraphHash != "" && p.VariablesHash != ""
}

// RegenerateFunc re-renders the artifact from its recorded provenance,
// returning the regenerated bytes. The caller supplies this (wiring C3's
// render engine and C5's artifact generator); this package stays
// agnostic of how regeneration actually happens.
type RegenerateFunc func() ([]byte, error)

// Input bundles everything Detect needs for a single path.
type Input struct {
	Path string

	// ExpectedHash/ExpectedContent take priority over an adjacent
	// attestation or the baseline store, per §4.9 step 3.
	ExpectedHash    string
	ExpectedContent []byte

	// HasFormat/Format declare that path is RDF data in this format; when
	// false, the non-RDF syntactic heuristic is used instead.
	HasFormat bool
	Format    rdf.Format

	Baseline   *BaselineStore
	Regenerate RegenerateFunc
}

// Detect implements detect(path, expected?) -> DriftResult (§4.9).
func Detect(in Input) (DriftResult, error) {
	current, err := os.ReadFile(in.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return DriftResult{Path: in.Path, Type: TypeDeleted, Severity: SeverityCritical}, nil
		}
		return DriftResult{}, engineerr.New(engineerr.KindFileNotFound, in.Path, err)
	}
	currentHash := hashing.HashBytes(current)

	expectedHash, expectedContent, prov, source := resolveExpected(in)
	if expectedHash == "" {
		return DriftResult{}, engineerr.New(engineerr.KindBaselineCorrupt, fmt.Sprintf("no expected state available for %s", in.Path), nil)
	}

	if currentHash == expectedHash {
		return DriftResult{Path: in.Path, Type: TypeUnchanged, ExpectedHash: expectedHash, CurrentHash: currentHash, Source: source}, nil
	}

	result, err := classify(in, current, expectedContent)
	if err != nil {
		return DriftResult{}, err
	}
	result.Path = in.Path
	result.ExpectedHash = expectedHash
	result.CurrentHash = currentHash
	result.Source = source

	if prov.sufficient() && in.Regenerate != nil {
		if regenerated, err := in.Regenerate(); err == nil {
			if hashing.HashBytes(regenerated) == expectedHash {
				result.Type = TypeRegenerated
				result.Severity = SeverityLow
				result.Message = "regeneration from recorded provenance reproduced the expected hash"
			}
		}
	}

	return result, nil
}

// resolveExpected applies §4.9 step 3's priority: explicit parameter,
// then an adjacent attestation, then the persisted baseline.
func resolveExpected(in Input) (hash string, content []byte, prov *Provenance, source string) {
	if in.ExpectedHash != "" {
		return in.ExpectedHash, in.ExpectedContent, nil, "expected-hash"
	}

	if att, err := artifact.LoadAttestation(in.Path); err == nil {
		p := &Provenance{
			TemplatePath:    att.Provenance.TemplatePath,
			TemplateHash:    att.Provenance.TemplateHash,
			SourceGraphHash: att.Provenance.SourceGraphHash,
			VariablesHash:   att.Provenance.VariablesHash,
		}
		return att.Artifact.Hash, nil, p, "attestation"
	}

	if in.Baseline != nil {
		if entry, ok := in.Baseline.Get(Key(in.Path)); ok {
			return entry.Hash, entry.Content, nil, "baseline"
		}
	}

	return "", nil, nil, ""
}

// classify determines cosmetic vs. semantic and its significance/severity.
// When expectedContent is unavailable (an attestation only records a
// hash, never raw bytes) no diff can be performed; the result is
// conservatively classified as semantic with maximal significance.
func classify(in Input, current, expectedContent []byte) (DriftResult, error) {
	if len(expectedContent) == 0 {
		return DriftResult{
			Type:         TypeSemantic,
			Significance: 1,
			Severity:     SeverityCritical,
			Message:      "no baseline content available to diff; treating as maximal drift",
		}, nil
	}

	if in.HasFormat {
		return classifyRDF(in.Format, expectedContent, current)
	}
	return classifyNonRDF(expectedContent, current), nil
}

func classifyRDF(format rdf.Format, expectedContent, current []byte) (DriftResult, error) {
	expectedGraph, err := rdf.Parse(bytes.NewReader(expectedContent), format)
	if err != nil {
		return classifyNonRDF(expectedContent, current), nil
	}
	currentGraph, err := rdf.Parse(bytes.NewReader(current), format)
	if err != nil {
		return classifyNonRDF(expectedContent, current), nil
	}

	delta := rdf.Diff(expectedGraph, currentGraph)
	if delta.Empty() {
		return DriftResult{Type: TypeCosmetic, Significance: 0, Severity: SeverityLow}, nil
	}

	total := expectedGraph.Len()
	if currentGraph.Len() > total {
		total = currentGraph.Len()
	}
	sig := rdfSignificance(delta, total)
	return DriftResult{
		Type:         TypeSemantic,
		Significance: sig,
		Severity:     severityForSignificance(sig),
		Message:      fmt.Sprintf("%d triples added, %d removed", len(delta.Added), len(delta.Removed)),
	}, nil
}

func classifyNonRDF(expectedContent, current []byte) DriftResult {
	sig := nonRDFSignificance(expectedContent, current)
	return DriftResult{
		Type:         TypeSemantic,
		Significance: sig,
		Severity:     severityForSignificance(sig),
	}
}

// Mode is the drift-handling mode a caller configures a run with.
type Mode string

const (
	ModeFail Mode = "fail"
	ModeWarn Mode = "warn"
	ModeFix  Mode = "fix"
)

// CountsAsFailure reports whether, under mode, this result should cause
// the overall run to fail (§4.9 mode handling, §4.10 exit-code table).
func CountsAsFailure(mode Mode, r DriftResult) bool {
	if mode != ModeFail {
		return false
	}
	return r.IsDrift()
}

// FixInput bundles the data needed to repair a drifted file in fix mode.
type FixInput struct {
	Path            string
	Regenerated     []byte // preferred: a fresh render matching the expected hash
	BaselineContent []byte // fallback: the attestation/baseline's retained content
	Backup          bool
}

// Fix replaces Path's current content with the regenerated bytes if
// available, falling back to baseline content, per §4.9's fix mode.
// It optionally backs up the original file first.
func Fix(in FixInput) error {
	data := in.Regenerated
	if len(data) == 0 {
		data = in.BaselineContent
	}
	if len(data) == 0 {
		return engineerr.New(engineerr.KindRegenerationUnavailable, fmt.Sprintf("no regenerated or baseline content available for %s", in.Path), nil)
	}

	if in.Backup {
		if original, err := os.ReadFile(in.Path); err == nil {
			if err := artifact.WriteAtomic(in.Path+".bak", original, 0o644); err != nil {
				return engineerr.New(engineerr.KindWriteFailed, "backup "+in.Path, err)
			}
		}
	}

	if err := artifact.WriteAtomic(in.Path, data, 0o644); err != nil {
		return engineerr.New(engineerr.KindWriteFailed, "fix "+in.Path, err)
	}
	return nil
}
