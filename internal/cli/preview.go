package cli

import (
	"fmt"
	"os"

	"github.com/provenance-engine/engine/internal/frontmatter"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/provenance-engine/engine/internal/render"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <template>",
	Short: "Render a single template to stdout without writing an artifact",
	Long: `preview renders one template against the given context and
prints the result to stdout. It never touches the content-addressed
store or writes an attestation -- useful for template authors
iterating on a single file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&generateFlags.contextFile, "context-file", "", "JSON file of variables to render the template against")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	templatePath := args[0]

	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", templatePath, err)
	}
	tpl, warnings, err := frontmatter.Parse(templatePath, raw, false)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	vars, err := loadContext(generateFlags.contextFile)
	if err != nil {
		return err
	}

	templateHash := hashing.HashBytes([]byte(tpl.Body))
	rendered, err := render.New().Render(templateHash, tpl.Body, vars)
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(rendered)
	return err
}
