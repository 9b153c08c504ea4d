package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/provenance-engine/engine/internal/artifact"
	"github.com/provenance-engine/engine/internal/discovery"
	"github.com/provenance-engine/engine/internal/engine"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/provenance-engine/engine/internal/plan"
	"github.com/provenance-engine/engine/internal/render"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	contextFile string
	lockfile    string
}

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Render every discovered template into the content-addressed store",
	Long: `generate walks the profile's templates directory, builds a
lockfile recording the expected hash of every entry (internal/plan),
then renders each template against the shared variable context and
writes the result through the content-addressed artifact store, with
an attestation sidecar beside every artifact.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.contextFile, "context-file", "", "JSON file of variables shared across every rendered template")
	generateCmd.Flags().StringVar(&generateFlags.lockfile, "lockfile", "", "path to write the run's lockfile (default: <output-dir>/generate.lock)")
	rootCmd.AddCommand(generateCmd)
}

func loadContext(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file %s: %w", path, err)
	}
	var ctx map[string]any
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", path, err)
	}
	return ctx, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	resolved, err := resolveConfig()
	if err != nil {
		return err
	}
	p := resolved.Profile

	e, err := newEngine(cmd.Context(), p)
	if err != nil {
		return err
	}
	defer e.Shutdown(cmd.Context())

	vars, err := loadContext(generateFlags.contextFile)
	if err != nil {
		return err
	}

	paths, err := discovery.DiscoverTemplates(discovery.TemplateDiscoveryConfig{
		Root:    p.TemplatesDir,
		Include: p.Include,
		Ignore:  p.Ignore,
	})
	if err != nil {
		return err
	}

	loader := fsLoader{root: p.TemplatesDir}

	entries := make([]plan.Entry, len(paths))
	for i, rel := range paths {
		templatePath := filepath.Join(p.TemplatesDir, rel)
		tpl, err := loader.Load(templatePath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", rel, err)
		}
		outputPath := tpl.Frontmatter.To
		if outputPath == "" {
			outputPath = filepath.Join(p.OutputDir, rel)
		}
		entries[i] = plan.Entry{
			ID:           rel,
			TemplatePath: templatePath,
			Context:      vars,
			OutputPath:   outputPath,
		}
	}

	// buildLockfile (C6): render every entry once, record its expected
	// hash, and fix the commit order before any artifact is written.
	lockfile, err := plan.BuildLockfile(cmd.Context(), loader, render.New(), entries)
	if err != nil {
		return fmt.Errorf("building lockfile: %w", err)
	}

	lockfilePath := generateFlags.lockfile
	if lockfilePath == "" {
		lockfilePath = filepath.Join(p.OutputDir, "generate.lock")
	}
	lockfileJSON, err := json.MarshalIndent(lockfile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	if err := artifact.WriteAtomic(lockfilePath, lockfileJSON, 0o644); err != nil {
		return fmt.Errorf("writing lockfile %s: %w", lockfilePath, err)
	}

	var lastHash string
	for i, id := range lockfile.SortedEntryIDs() {
		locked := lockfile.Templates[id]
		tpl, err := loader.Load(locked.TemplatePath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", id, err)
		}

		art, err := e.Generate(cmd.Context(), engine.GenerateRequest{
			ID:               id,
			TemplatePath:     locked.TemplatePath,
			TemplateHash:     hashing.HashBytes([]byte(tpl.Body)),
			TemplateBody:     tpl.Body,
			Context:          vars,
			OutputPath:       locked.OutputPath,
			ContentAddressed: p.ContentAddressed,
			WriteAttestation: true,
			ChainIndex:       i,
			PreviousHash:     lastHash,
		})
		if err != nil {
			return fmt.Errorf("generating %s: %w", id, err)
		}
		lastHash = art.ContentHash

		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", id, art.OutputPath, art.ContentHash[:16])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "lockfile -> %s\n", lockfilePath)
	return nil
}
