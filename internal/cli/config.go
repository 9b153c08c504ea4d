package cli

import (
	"fmt"
	"sort"

	"github.com/provenance-engine/engine/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate engine.toml configuration files",
}

var configCheckCmd = &cobra.Command{
	Use:   "check <engine.toml>",
	Short: "Load every profile in a config file and report errors and lint warnings",
	Long: `check parses the given TOML file as a full multi-profile config
document (every [profile.*] table, not just the one resolved for a
run), then runs the same hard-error validation generate/validate use
plus the lint checks (conflicting rule ids, overly deep extends
chains) that only ever surface as warnings during normal resolution.
Exit status is nonzero when any hard error is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigCheck,
}

func init() {
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return newExitCodeErr(1)
	}

	errs := config.Validate(cfg)
	lints := config.Lint(cfg)

	names := make([]string, 0, len(cfg.Profile))
	for name := range cfg.Profile {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(cmd.OutOrStdout(), "checked %d profile(s): %v\n", len(names), names)

	hardErrors := 0
	for _, e := range errs {
		if e.Severity == "error" {
			hardErrors++
		}
		fmt.Fprintln(cmd.OutOrStdout(), e.Error())
	}
	for _, l := range lints {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", l.Code, l.Error())
	}

	if hardErrors > 0 {
		return newExitCodeErr(1)
	}
	return nil
}
