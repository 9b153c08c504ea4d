// Package plan implements the lockfile / plan driver (C6): it renders a
// list of {template, context, output} entries, records their expected
// hashes in a lockfile, and later re-renders to verify reproducibility.
//
// Rendering fans out across a bounded worker pool the way the teacher's
// tokenizer.TokenCounter.CountFiles does (errgroup.WithContext +
// SetLimit(runtime.NumCPU()), internal/tokenizer/counter.go), but commits
// results in a deterministic order afterward: entries are collected into
// a slice indexed by their position, not a channel, so on-disk write
// order never depends on goroutine scheduling.
package plan

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/provenance-engine/engine/internal/artifact"
	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/frontmatter"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/provenance-engine/engine/internal/render"
)

// MaxWorkers bounds the render worker pool regardless of GOMAXPROCS.
const MaxWorkers = 8

// Entry is a single planned generation: render templatePath against
// context and write the result to outputPath.
type Entry struct {
	ID           string
	TemplatePath string
	Context      map[string]any
	OutputPath   string
}

// LockEntry is a single entry's recorded result in a Lockfile.
type LockEntry struct {
	TemplatePath        string `json:"templatePath"`
	TemplateHash        string `json:"templateHash"`
	ContextHash         string `json:"contextHash"`
	OutputPath          string `json:"outputPath"`
	ExpectedContentHash string `json:"expectedContentHash"`
}

// Lockfile is the persisted, ordered record of a generation run.
type Lockfile struct {
	EngineVersion string               `json:"engineVersion"`
	ContextHash   string               `json:"contextHash"`
	Templates     map[string]LockEntry `json:"templates"`
}

// Loader loads an entry's template, parsing its frontmatter and body into
// a frontmatter.Template; skip evaluation and rendering are done by the
// plan driver itself. The plan driver depends only on this
// interface so it can be tested without file I/O; the orchestrator wires
// a real filesystem-backed loader.
type Loader interface {
	Load(templatePath string) (*frontmatter.Template, error)
}

func workerLimit() int {
	if n := runtime.NumCPU(); n < MaxWorkers {
		return n
	}
	return MaxWorkers
}

type renderedEntry struct {
	entry        Entry
	templateHash string
	contextHash  string
	rendered     []byte
	skipped      bool
}

// BuildLockfile renders each entry once and records its hashes. Entries
// are rendered concurrently (bounded by workerLimit) but the Lockfile's
// Templates map is populated only after all renders complete, and
// iteration order when deriving stable output (e.g. JSON marshaling of
// the map) is the caller's responsibility via sorted key order.
func BuildLockfile(ctx context.Context, loader Loader, engine *render.Engine, entries []Entry) (Lockfile, error) {
	results := make([]renderedEntry, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit())

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return engineerr.New(engineerr.KindCancelled, "lockfile build cancelled", err)
			}

			tpl, err := loader.Load(e.TemplatePath)
			if err != nil {
				return err
			}

			skip, err := frontmatter.ShouldSkip(tpl.Frontmatter, e.Context)
			if err != nil {
				return err
			}
			if skip {
				results[i] = renderedEntry{entry: e, skipped: true}
				return nil
			}

			templateHash := hashing.HashBytes([]byte(tpl.Body))
			rendered, err := engine.Render(templateHash, tpl.Body, e.Context)
			if err != nil {
				return err
			}
			contextHash, err := hashing.HashJSON(e.Context)
			if err != nil {
				return err
			}

			results[i] = renderedEntry{
				entry:        e,
				templateHash: templateHash,
				contextHash:  contextHash,
				rendered:     rendered,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Lockfile{}, err
	}

	templates := make(map[string]LockEntry, len(results))
	for _, r := range results {
		if r.skipped {
			continue
		}
		templates[r.entry.ID] = LockEntry{
			TemplatePath:        r.entry.TemplatePath,
			TemplateHash:        r.templateHash,
			ContextHash:         r.contextHash,
			OutputPath:          r.entry.OutputPath,
			ExpectedContentHash: hashing.HashBytes(r.rendered),
		}
	}

	mergedContext := make(map[string]any, len(entries))
	for _, e := range entries {
		for k, v := range e.Context {
			mergedContext[k] = v
		}
	}
	contextHash, err := hashing.HashJSON(mergedContext)
	if err != nil {
		return Lockfile{}, err
	}

	return Lockfile{
		EngineVersion: artifact.EngineVersion,
		ContextHash:   contextHash,
		Templates:     templates,
	}, nil
}

// SortedEntryIDs returns the lockfile's entry IDs in lexicographic order,
// the commit order the driver and any serializer must use for stability.
func (l Lockfile) SortedEntryIDs() []string {
	ids := make([]string, 0, len(l.Templates))
	for id := range l.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RunResult is the outcome of re-running one lockfile entry.
type RunResult struct {
	ID         string
	Reproduced bool
	GotHash    string
}

// RunLockfile re-renders every entry in lockfile order and asserts that
// each produced hash equals its recorded ExpectedContentHash. The first
// mismatch is returned as a fatal reproducibility error naming the
// offending entry; remaining entries are still rendered and reported.
func RunLockfile(ctx context.Context, loader Loader, engine *render.Engine, lockfile Lockfile, contextByID map[string]map[string]any) ([]RunResult, error) {
	ids := lockfile.SortedEntryIDs()
	results := make([]RunResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit())

	for i, id := range ids {
		i, id := i, id
		entry := lockfile.Templates[id]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return engineerr.New(engineerr.KindCancelled, "lockfile run cancelled", err)
			}

			tpl, err := loader.Load(entry.TemplatePath)
			if err != nil {
				return err
			}
			templateHash := hashing.HashBytes([]byte(tpl.Body))
			rendered, err := engine.Render(templateHash, tpl.Body, contextByID[id])
			if err != nil {
				return err
			}

			gotHash := hashing.HashBytes(rendered)
			results[i] = RunResult{ID: id, Reproduced: gotHash == entry.ExpectedContentHash, GotHash: gotHash}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var mismatch *RunResult
	for i := range results {
		if !results[i].Reproduced && mismatch == nil {
			mismatch = &results[i]
		}
	}
	if mismatch != nil {
		return results, engineerr.New(engineerr.KindWriteFailed,
			fmt.Sprintf("entry %q did not reproduce: expected %s, got %s", mismatch.ID, lockfile.Templates[mismatch.ID].ExpectedContentHash, mismatch.GotHash), nil)
	}
	return results, nil
}
