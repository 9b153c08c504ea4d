package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/provenance-engine/engine/internal/plan"
	"github.com/provenance-engine/engine/internal/render"
	"github.com/spf13/cobra"
)

var lockfileVerifyFlags struct {
	contextFile string
}

var lockfileCmd = &cobra.Command{
	Use:   "lockfile",
	Short: "Inspect and verify generate-run lockfiles",
}

var lockfileVerifyCmd = &cobra.Command{
	Use:   "verify <lockfile>",
	Short: "Re-render every entry in a lockfile and assert reproducibility",
	Long: `verify re-renders every entry recorded in a lockfile (the file
generate writes alongside its output) and asserts that each rendering
still hashes to its recorded expectedContentHash. Any mismatch is a
fatal reproducibility failure naming the offending entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runLockfileVerify,
}

func init() {
	lockfileVerifyCmd.Flags().StringVar(&lockfileVerifyFlags.contextFile, "context-file", "", "JSON file of variables shared across every entry (must match the generate run's context)")
	lockfileCmd.AddCommand(lockfileVerifyCmd)
	rootCmd.AddCommand(lockfileCmd)
}

func runLockfileVerify(cmd *cobra.Command, args []string) error {
	resolved, err := resolveConfig()
	if err != nil {
		return err
	}
	p := resolved.Profile

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading lockfile %s: %w", args[0], err)
	}
	var lockfile plan.Lockfile
	if err := json.Unmarshal(raw, &lockfile); err != nil {
		return fmt.Errorf("parsing lockfile %s: %w", args[0], err)
	}

	vars, err := loadContext(lockfileVerifyFlags.contextFile)
	if err != nil {
		return err
	}
	contextByID := make(map[string]map[string]any, len(lockfile.Templates))
	for id := range lockfile.Templates {
		contextByID[id] = vars
	}

	loader := fsLoader{root: p.TemplatesDir}
	results, err := plan.RunLockfile(cmd.Context(), loader, render.New(), lockfile, contextByID)
	for _, r := range results {
		status := "ok"
		if !r.Reproduced {
			status = "MISMATCH"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", r.ID, status, r.GotHash[:16])
	}
	if err != nil {
		return newExitCodeErr(3)
	}
	return nil
}
