package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/provenance-engine/engine/internal/config"
	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/engine"
	"github.com/provenance-engine/engine/internal/report"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	data       string
	shapes     string
	dataFmt    string
	shapesFmt  string
	jsonOutput bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Validate a graph and check the generated outputs for drift, in one document",
	Long: `report runs the same conformance check as validate, then walks
the profile's output directory checking every previously generated
artifact for drift against its attestation or the baseline store,
combining both into a single report document.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.data, "data", "", "path to the RDF graph to validate (required)")
	reportCmd.Flags().StringVar(&reportFlags.shapes, "shapes", "", "path to the SHACL shapes graph (required)")
	reportCmd.Flags().StringVar(&reportFlags.dataFmt, "data-format", "", "RDF format of --data (inferred from extension when unset)")
	reportCmd.Flags().StringVar(&reportFlags.shapesFmt, "shapes-format", "", "RDF format of --shapes (inferred from extension when unset)")
	reportCmd.Flags().BoolVar(&reportFlags.jsonOutput, "json", false, "print the document as JSON instead of text")
	reportCmd.MarkFlagRequired("data")
	reportCmd.MarkFlagRequired("shapes")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	resolved, err := resolveConfig()
	if err != nil {
		return err
	}
	p := resolved.Profile

	data, err := loadGraph(reportFlags.data, reportFlags.dataFmt)
	if err != nil {
		return newExitCodeErr(1)
	}
	shapes, err := loadGraph(reportFlags.shapes, reportFlags.shapesFmt)
	if err != nil {
		return newExitCodeErr(1)
	}

	e, err := newEngine(cmd.Context(), p)
	if err != nil {
		return newExitCodeErr(1)
	}
	defer e.Shutdown(cmd.Context())

	start := time.Now()
	result, err := e.Validate(cmd.Context(), engine.ValidateRequest{
		Data:          data,
		Shapes:        shapes,
		DisabledRules: effectiveDisabledRules(e, p.Rules),
	})
	if err != nil {
		return newExitCodeErr(1)
	}

	driftResults, err := driftOverOutputs(cmd, e, p)
	if err != nil {
		return newExitCodeErr(1)
	}
	duration := time.Since(start)

	in := engine.ReportInputFrom(result, driftResults, 0, data.Len(), duration.Milliseconds(), driftModeFromProfile(p))
	doc := report.Build(in)

	if reportFlags.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return newExitCodeErr(1)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), stylize(report.RenderText(doc)))
	}

	return newExitCodeErr(report.ExitCode(in))
}

// driftOverOutputs walks the profile's output directory and runs drift
// detection on every regular file found there, against whatever
// attestation or baseline entry already exists for it. A missing output
// directory is not an error: a repo that has never run generate simply
// reports no drift.
func driftOverOutputs(cmd *cobra.Command, e *engine.Engine, p *config.Profile) ([]drift.DriftResult, error) {
	if p.OutputDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(p.OutputDir); os.IsNotExist(err) {
		return nil, nil
	}

	var results []drift.DriftResult
	err := filepath.WalkDir(p.OutputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		result, err := e.Drift(cmd.Context(), drift.Input{Path: path})
		if err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
