package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/provenance-engine/engine/internal/artifact"
	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/provenance-engine/engine/internal/rdf"
	"github.com/provenance-engine/engine/internal/report"
	"github.com/provenance-engine/engine/internal/rules"
	"github.com/provenance-engine/engine/internal/shacl"
)

// GenerateRequest is a single generate() call's input.
type GenerateRequest struct {
	ID               string // operation id, used for cancellation and at-most-once tracking
	TemplateHash     string
	TemplateBody     string
	TemplatePath     string
	Context          map[string]any
	OutputPath       string
	ContentAddressed bool
	WriteAttestation bool
	SourceGraphHash  string
	ChainIndex       int
	PreviousHash     string
}

// Generate renders a template and writes the resulting artifact (and its
// attestation sidecar, if requested), per C3 + C5.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (artifact.Artifact, error) {
	opCtx, release, err := e.beginOp(ctx, "generate:"+req.ID)
	if err != nil {
		return artifact.Artifact{}, err
	}
	defer release()

	if err := opCtx.Err(); err != nil {
		return artifact.Artifact{}, engineerr.New(engineerr.KindCancelled, "generate cancelled", err)
	}

	atomic.AddInt64(&e.metrics.GenerateCalls, 1)

	rendered, err := e.renderer.Render(req.TemplateHash, req.TemplateBody, req.Context)
	if err != nil {
		return artifact.Artifact{}, err
	}

	variablesHash, err := hashing.HashJSON(req.Context)
	if err != nil {
		return artifact.Artifact{}, engineerr.New(engineerr.KindCycleInContext, "hashing render context", err)
	}

	art, err := artifact.Generate(artifact.GenerateInput{
		TemplatePath:      req.TemplatePath,
		TemplateHash:      req.TemplateHash,
		OutputPath:        req.OutputPath,
		ContentAddressed:  req.ContentAddressed,
		WriteAttestations: req.WriteAttestation,
		SourceGraphHash:   req.SourceGraphHash,
		VariablesHash:     variablesHash,
		ChainIndex:        req.ChainIndex,
		PreviousHash:      req.PreviousHash,
	}, rendered)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return art, nil
}

// Verify re-checks a previously generated artifact against its
// attestation sidecar, per C5.
func (e *Engine) Verify(ctx context.Context, outputPath string) (artifact.VerifyResult, error) {
	opCtx, release, err := e.beginOp(ctx, "verify:"+outputPath)
	if err != nil {
		return artifact.VerifyResult{}, err
	}
	defer release()

	if err := opCtx.Err(); err != nil {
		return artifact.VerifyResult{}, engineerr.New(engineerr.KindCancelled, "verify cancelled", err)
	}

	atomic.AddInt64(&e.metrics.VerifyCalls, 1)
	return artifact.Verify(outputPath)
}

// ValidateRequest bundles a graph and the shapes to validate it against.
type ValidateRequest struct {
	Data          *rdf.Graph
	Shapes        *rdf.Graph
	DisabledRules []string
	Deadline      time.Duration // 0 means no deadline
}

// ValidateResult combines SHACL conformance and custom-rule output.
type ValidateResult struct {
	Shacl       shacl.ConformanceReport
	RuleResults []RuleExecResult
	ShapesCount int
}

// RuleExecResult names which custom rule produced which result, so
// callers can build a report.Input without re-running rules themselves.
type RuleExecResult struct {
	RuleID     string
	Passed     bool
	Violations []string
	Warnings   []string
}

// Validate runs SHACL validation and the custom-rule engine against a
// graph, per C7 + C8. It accepts a per-call deadline (§5): exceeding it
// returns timeout without partial writes, since validation never writes.
func (e *Engine) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	opCtx, release, err := e.beginOp(ctx, "validate")
	if err != nil {
		return ValidateResult{}, err
	}
	defer release()

	if req.Deadline > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(opCtx, req.Deadline)
		defer cancel()
	}

	if err := opCtx.Err(); err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return ValidateResult{}, engineerr.New(engineerr.KindTimeout, "validate deadline exceeded", err)
		}
		return ValidateResult{}, engineerr.New(engineerr.KindCancelled, "validate cancelled", err)
	}

	atomic.AddInt64(&e.metrics.ValidateCalls, 1)

	compiled, err := e.shapesCache.GetOrCompile(req.Shapes)
	if err != nil {
		return ValidateResult{}, engineerr.New(engineerr.KindParseError, "compiling shapes", err)
	}

	shaclReport := shacl.Validate(req.Data, compiled)

	ruleResults := e.ruleReg.RunAll(req.Data, req.DisabledRules)
	execResults := make([]RuleExecResult, len(ruleResults))
	for i, r := range ruleResults {
		execResults[i] = RuleExecResult{RuleID: r.RuleID, Passed: r.Passed, Violations: r.Violations, Warnings: r.Warnings}
	}

	if err := opCtx.Err(); err == context.DeadlineExceeded {
		return ValidateResult{}, engineerr.New(engineerr.KindTimeout, "validate deadline exceeded", err)
	}

	return ValidateResult{
		Shacl:       shaclReport,
		RuleResults: execResults,
		ShapesCount: len(compiled.Shapes),
	}, nil
}

// ReportInputFrom adapts a ValidateResult (plus drift results and
// regeneration bookkeeping a caller already has) into a report.Input,
// sparing CLI/orchestrator callers from re-deriving the rule-result
// shape report.Build expects.
func ReportInputFrom(vr ValidateResult, driftResults []drift.DriftResult, regenerationCount int, tripleCount int, durationMS int64, mode drift.Mode) report.Input {
	return report.Input{
		Shacl:             vr.Shacl,
		Rules:             toRuleResults(vr.RuleResults),
		DriftResults:      driftResults,
		RegenerationCount: regenerationCount,
		TripleCount:       tripleCount,
		ShapesCount:       vr.ShapesCount,
		DurationMS:        durationMS,
		Mode:              mode,
	}
}

func toRuleResults(execResults []RuleExecResult) []rules.Result {
	out := make([]rules.Result, len(execResults))
	for i, r := range execResults {
		out[i] = rules.Result{RuleID: r.RuleID, Passed: r.Passed, Violations: r.Violations, Warnings: r.Warnings}
	}
	return out
}

// Drift runs drift detection for a single path, per C9, using the
// engine's own baseline store when the request does not supply one.
func (e *Engine) Drift(ctx context.Context, in drift.Input) (drift.DriftResult, error) {
	opCtx, release, err := e.beginOp(ctx, "drift:"+in.Path)
	if err != nil {
		return drift.DriftResult{}, err
	}
	defer release()

	if err := opCtx.Err(); err != nil {
		return drift.DriftResult{}, engineerr.New(engineerr.KindCancelled, "drift cancelled", err)
	}

	atomic.AddInt64(&e.metrics.DriftCalls, 1)

	if in.Baseline == nil {
		in.Baseline = e.baseline
	}
	return drift.Detect(in)
}
