// Package cli implements the Cobra command hierarchy for the engine CLI.
// The root command defined here is the entry point for all subcommands and
// handles cross-cutting concerns like config resolution, logging
// initialization, and error handling. Per the orchestrator's design, this
// package is a thin wrapper: it parses flags, resolves configuration,
// drives internal/engine, and renders the result -- no domain logic lives
// here.
package cli

import (
	"errors"
	"log/slog"

	"github.com/provenance-engine/engine/internal/config"
	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/obs"
	"github.com/spf13/cobra"
)

// globals holds the parsed global flag values, bound in init and read
// by PersistentPreRunE and every subcommand.
type globals struct {
	profile    string
	targetDir  string
	configFile string
	verbose    bool
	quiet      bool
}

var flagValues globals

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Render and validate knowledge-graph-driven artifacts.",
	Long: `engine renders templates against RDF/JSON-LD context into
content-addressed artifacts, validates them against SHACL shapes and
custom rules, and detects drift against a recorded baseline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := obs.ResolveLevel(flagValues.verbose, flagValues.quiet)
		format := obs.ResolveFormat()
		obs.Setup(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagValues.profile, "profile", "", "generation profile to use (default: ENGINE_PROFILE env var, then \"default\")")
	rootCmd.PersistentFlags().StringVar(&flagValues.targetDir, "dir", ".", "directory to search for engine.toml and templates")
	rootCmd.PersistentFlags().StringVar(&flagValues.configFile, "profile-file", "", "standalone profile TOML file, bypassing engine.toml")
	rootCmd.PersistentFlags().BoolVarP(&flagValues.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagValues.quiet, "quiet", "q", false, "only log errors")
}

// resolveConfig runs the standard 5-layer config resolution for the
// current invocation's global flags.
func resolveConfig() (*config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ProfileName: flagValues.profile,
		ProfileFile: flagValues.configFile,
		TargetDir:   flagValues.targetDir,
	})
}

// exitCodeErr carries a process exit code computed by report.ExitCode
// (validate/drift/report verbs), whose {0,1,3} table is richer than what
// an error Kind alone can express. A verb returns this instead of a bare
// error so Execute can still extract a code while leaving the error
// interface satisfied for cobra.
type exitCodeErr struct {
	code int
	err  error
}

func (e *exitCodeErr) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e *exitCodeErr) Unwrap() error { return e.err }

// newExitCodeErr wraps code as an error when code != 0, so RunE can
// return it through cobra's normal error path; it returns nil for code
// 0, since cobra's Execute must see nil to avoid printing anything.
func newExitCodeErr(code int) error {
	if code == 0 {
		return nil
	}
	return &exitCodeErr{code: code}
}

// Execute runs the root command and returns the process exit code. A
// verb that computed an explicit report-driven exit code (validate,
// drift, report) returns it via exitCodeErr; anything else falls back to
// engineerr.ExitCode's Kind-based mapping.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ece *exitCodeErr
		if errors.As(err, &ece) {
			return ece.code
		}
		slog.Error(err.Error())
		return engineerr.ExitCode(err)
	}
	return 0
}

// RootCmd returns the root cobra.Command for use in testing and
// subcommand registration.
func RootCmd() *cobra.Command {
	return rootCmd
}
