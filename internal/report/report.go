// Package report implements the report generator (C10): it aggregates
// SHACL conformance, custom-rule output, drift results, and regeneration
// counts into a single JSON document (§6) and a human text rendering,
// and computes the process exit code from the fixed table in §4.10.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/rules"
	"github.com/provenance-engine/engine/internal/shacl"
)

// ConformanceError is one entry in the conformance report's "errors" list.
type ConformanceError struct {
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
	Constraint string `json:"constraint"`
	Value      string `json:"value,omitempty"`
}

// GraphSummary reports the validated graph's basic shape.
type GraphSummary struct {
	TripleCount int  `json:"tripleCount"`
	Valid       bool `json:"valid"`
}

// ValidationSummary reports the validation run's own metadata.
type ValidationSummary struct {
	DurationMS  int64 `json:"duration"`
	ShapesCount int   `json:"shapesCount"`
}

// Conformance is the §6 "Conformance report" schema.
type Conformance struct {
	OK         bool               `json:"ok"`
	Errors     []ConformanceError `json:"errors"`
	Graph      GraphSummary       `json:"graph"`
	Validation ValidationSummary  `json:"validation"`
}

// DriftChange is one entry in the drift report's "changes" list.
type DriftChange struct {
	Path         string  `json:"path"`
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	Significance float64 `json:"significance"`
}

// DriftSummary is the drift report's headline figures.
type DriftSummary struct {
	DriftScore       float64 `json:"driftScore"` // 0..100
	RiskLevel        string  `json:"riskLevel"`
	ComplianceStatus string  `json:"complianceStatus"`
	ActionRequired   bool    `json:"actionRequired"`
}

// Drift is the §6 "Drift report" schema.
type Drift struct {
	Success         bool          `json:"success"`
	Summary         DriftSummary  `json:"summary"`
	Changes         []DriftChange `json:"changes"`
	Recommendations []string      `json:"recommendations"`
}

// Document is the combined report the orchestrator emits: conformance,
// drift, and regeneration bookkeeping in one object.
type Document struct {
	Conformance       Conformance `json:"conformance"`
	Drift             Drift       `json:"drift"`
	RegenerationCount int         `json:"regenerationCount"`
}

// Input bundles everything Build needs to assemble a Document.
type Input struct {
	Shacl             shacl.ConformanceReport
	Rules             []rules.Result
	DriftResults      []drift.DriftResult
	RegenerationCount int
	TripleCount       int
	ShapesCount       int
	DurationMS        int64
	Mode              drift.Mode
	ValidationError   bool // set when validation itself could not complete
}

// constraintName derives the short constraint name (e.g. "minCount") from
// a SHACL constraint component IRI (e.g. ".../MinCountConstraintComponent").
func constraintName(iri string) string {
	local := iri
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		local = iri[i+1:]
	}
	local = strings.TrimSuffix(local, "ConstraintComponent")
	if local == "" {
		return local
	}
	return strings.ToLower(local[:1]) + local[1:]
}

// Build assembles a Document from the outputs of C7 (SHACL), C8 (custom
// rules), and C9 (drift), plus regeneration bookkeeping from C5.
func Build(in Input) Document {
	var errs []ConformanceError
	for _, v := range in.Shacl.Results {
		msg := ""
		if len(v.Messages) > 0 {
			msg = v.Messages[0]
		}
		errs = append(errs, ConformanceError{
			Path:       v.PropertyPath,
			Message:    msg,
			Constraint: constraintName(v.ConstraintComponent),
			Value:      v.Value,
		})
	}

	var anyRuleViolation bool
	for _, r := range in.Rules {
		if r.Passed {
			continue
		}
		anyRuleViolation = true
		for _, v := range r.Violations {
			errs = append(errs, ConformanceError{Message: v, Constraint: r.RuleID})
		}
	}

	conformance := Conformance{
		OK: in.Shacl.Conforms && !anyRuleViolation,
		Errors: errs,
		Graph: GraphSummary{
			TripleCount: in.TripleCount,
			Valid:       in.Shacl.Conforms,
		},
		Validation: ValidationSummary{
			DurationMS:  in.DurationMS,
			ShapesCount: in.ShapesCount,
		},
	}

	driftReport := buildDrift(in.DriftResults, in.Mode)

	return Document{
		Conformance:       conformance,
		Drift:             driftReport,
		RegenerationCount: in.RegenerationCount,
	}
}

func buildDrift(results []drift.DriftResult, mode drift.Mode) Drift {
	var changes []DriftChange
	var maxSig float64
	var maxSeverity drift.Severity = drift.SeverityLow
	anyDrift := false

	for _, r := range results {
		if !r.IsDrift() {
			continue
		}
		anyDrift = true
		changes = append(changes, DriftChange{
			Path:         r.Path,
			Type:         string(r.Type),
			Severity:     string(r.Severity),
			Significance: r.Significance,
		})
		if r.Significance > maxSig {
			maxSig = r.Significance
		}
		if severityRank(r.Severity) > severityRank(maxSeverity) {
			maxSeverity = r.Severity
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	riskLevel := string(drift.SeverityLow)
	if anyDrift {
		riskLevel = string(maxSeverity)
	}

	complianceStatus := "COMPLIANT"
	if anyDrift {
		complianceStatus = "VIOLATIONS"
	}

	actionRequired := anyDrift && mode == drift.ModeFail

	var recs []string
	for _, c := range changes {
		if c.Severity == string(drift.SeverityHigh) || c.Severity == string(drift.SeverityCritical) {
			recs = append(recs, fmt.Sprintf("review %s: %s drift (severity %s)", c.Path, c.Type, c.Severity))
		}
	}

	return Drift{
		Success: !anyDrift,
		Summary: DriftSummary{
			DriftScore:       maxSig * 100,
			RiskLevel:        riskLevel,
			ComplianceStatus: complianceStatus,
			ActionRequired:   actionRequired,
		},
		Changes:         changes,
		Recommendations: recs,
	}
}

func severityRank(s drift.Severity) int {
	switch s {
	case drift.SeverityLow:
		return 0
	case drift.SeverityMedium:
		return 1
	case drift.SeverityHigh:
		return 2
	case drift.SeverityCritical:
		return 3
	default:
		return 0
	}
}

// ExitCode computes the process exit code from the fixed table in §4.10:
// a validation error always exits 1; any SHACL/custom-rule violation
// always exits 3 (violations are data, never mode-gated); drift exits 3
// only under mode=fail (mode=warn/fix absorb it); otherwise the run is
// clean or only carries warnings, exit 0.
func ExitCode(in Input) int {
	if in.ValidationError {
		return 1
	}

	anyViolation := !in.Shacl.Conforms
	for _, r := range in.Rules {
		if !r.Passed {
			anyViolation = true
			break
		}
	}

	driftDetected := false
	for _, r := range in.DriftResults {
		if r.IsDrift() {
			driftDetected = true
			break
		}
	}

	if anyViolation || (driftDetected && in.Mode == drift.ModeFail) {
		return 3
	}
	return 0
}

// RenderText produces a short human-readable rendering of doc, in the
// same spirit as the teacher's plain-text CLI summaries.
func RenderText(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "conformance: ok=%v errors=%d triples=%d shapes=%d duration=%dms\n",
		doc.Conformance.OK, len(doc.Conformance.Errors), doc.Conformance.Graph.TripleCount,
		doc.Conformance.Validation.ShapesCount, doc.Conformance.Validation.DurationMS)
	for _, e := range doc.Conformance.Errors {
		fmt.Fprintf(&b, "  - [%s] %s", e.Constraint, e.Message)
		if e.Path != "" {
			fmt.Fprintf(&b, " (path=%s)", e.Path)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "drift: success=%v score=%.1f risk=%s compliance=%s actionRequired=%v\n",
		doc.Drift.Success, doc.Drift.Summary.DriftScore, doc.Drift.Summary.RiskLevel,
		doc.Drift.Summary.ComplianceStatus, doc.Drift.Summary.ActionRequired)
	for _, c := range doc.Drift.Changes {
		fmt.Fprintf(&b, "  - %s: %s (severity=%s, significance=%.3f)\n", c.Path, c.Type, c.Severity, c.Significance)
	}
	for _, r := range doc.Drift.Recommendations {
		fmt.Fprintf(&b, "  ! %s\n", r)
	}

	fmt.Fprintf(&b, "regenerations: %d\n", doc.RegenerationCount)
	return b.String()
}
