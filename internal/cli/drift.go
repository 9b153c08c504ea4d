package cli

import (
	"encoding/json"
	"fmt"

	"github.com/provenance-engine/engine/internal/drift"
	"github.com/spf13/cobra"
)

var driftFlags struct {
	expectedHash string
	jsonOutput   bool
	explain      bool
}

var driftCmd = &cobra.Command{
	Use:   "drift <path>",
	Short: "Check a generated artifact for drift against its expected state",
	Long: `drift resolves the expected content for path (an explicit
--expected-hash, then its attestation sidecar, then the profile's
baseline store, in that priority order) and classifies any difference
as cosmetic, semantic, deleted, or regenerated.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrift,
}

func init() {
	driftCmd.Flags().StringVar(&driftFlags.expectedHash, "expected-hash", "", "expected content hash, overriding attestation/baseline lookup")
	driftCmd.Flags().BoolVar(&driftFlags.jsonOutput, "json", false, "print the drift result as JSON instead of text")
	driftCmd.Flags().BoolVar(&driftFlags.explain, "explain", false, "also print which priority source (expected-hash/attestation/baseline) resolved the expected state")
	rootCmd.AddCommand(driftCmd)
}

func runDrift(cmd *cobra.Command, args []string) error {
	resolved, err := resolveConfig()
	if err != nil {
		return err
	}
	p := resolved.Profile

	e, err := newEngine(cmd.Context(), p)
	if err != nil {
		return newExitCodeErr(1)
	}
	defer e.Shutdown(cmd.Context())

	result, err := e.Drift(cmd.Context(), drift.Input{
		Path:         args[0],
		ExpectedHash: driftFlags.expectedHash,
	})
	if err != nil {
		return newExitCodeErr(1)
	}

	if driftFlags.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return newExitCodeErr(1)
		}
	} else {
		line := fmt.Sprintf("%s: %s (severity=%s, significance=%.3f)\n",
			result.Path, result.Type, result.Severity, result.Significance)
		if result.Message != "" {
			line += fmt.Sprintf("  %s\n", result.Message)
		}
		if driftFlags.explain && result.Source != "" {
			line += fmt.Sprintf("  explain: expected state resolved from %s\n", result.Source)
		}
		fmt.Fprint(cmd.OutOrStdout(), stylize(line))
	}

	mode := driftModeFromProfile(p)
	if drift.CountsAsFailure(mode, result) {
		return newExitCodeErr(3)
	}
	return nil
}
