package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/spf13/cobra"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the drift baseline store",
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Record path's current content hash in the baseline store",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineSave,
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the entries currently recorded in the baseline store",
	Args:  cobra.NoArgs,
	RunE:  runBaselineShow,
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd, baselineShowCmd)
	rootCmd.AddCommand(baselineCmd)
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
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

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	e.Baseline().Put(drift.Key(path), drift.BaselineEntry{
		Path:      path,
		Hash:      hashing.HashBytes(content),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err := e.SaveBaseline(); err != nil {
		return newExitCodeErr(1)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "recorded baseline for %s\n", path)
	return nil
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
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

	store := e.Baseline()
	keys := store.Keys()
	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "baseline store is empty")
		return nil
	}
	for _, key := range keys {
		entry, _ := store.Get(key)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", entry.Timestamp, entry.Hash[:16], entry.Path)
	}
	return nil
}
