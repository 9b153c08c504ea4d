// Package discovery walks a directory tree and applies layered ignore
// rules (built-in defaults, .gitignore, .engineignore) plus doublestar
// include/exclude globs to find the template files a generation run
// should render. The walk shape -- filepath.WalkDir collecting a sorted
// slice of paths -- mirrors the teacher's own discovery walker; the
// concurrency for actually rendering those paths lives in
// internal/plan, whose bounded worker pool is grounded on the same
// teacher pattern this package's original walker used.
package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/provenance-engine/engine/internal/engineerr"
)

// TemplateDiscoveryConfig configures a template-tree scan.
type TemplateDiscoveryConfig struct {
	// Root is the directory to search (typically Profile.TemplatesDir).
	Root string

	// Include is a set of doublestar glob patterns; when non-empty, only
	// matching paths are kept (extension-less, per PatternFilter.Matches).
	Include []string

	// Ignore is a set of doublestar glob patterns excluded regardless of
	// Include, layered on top of the built-in defaults and .gitignore/
	// .engineignore files found under Root.
	Ignore []string

	// MaxFileSize skips any template file larger than this many bytes.
	// Zero means DefaultMaxFileSize; a negative value disables the check.
	MaxFileSize int64
}

// templateWalker holds the state shared across a single DiscoverTemplates
// call: the ignore/include layers, the symlink-loop resolver (symlinked
// template directories are followed once each, never re-entered), and the
// accumulated result.
type templateWalker struct {
	logger      *slog.Logger
	composite   *CompositeIgnorer
	filter      *PatternFilter
	resolver    *SymlinkResolver
	maxFileSize int64
	found       []string
}

// DiscoverTemplates walks cfg.Root and returns the relative paths (slash-
// separated, sorted) of every file that survives the ignore/include
// layering. Binary files and files over the size threshold are skipped: a
// template engine has no use for them and they would fail frontmatter
// parsing (or blow the render cache) anyway. Symlinked directories are
// followed, with loop detection so a cyclic symlink can't run the walk
// forever.
func DiscoverTemplates(cfg TemplateDiscoveryConfig) ([]string, error) {
	logger := slog.Default().With("component", "discovery")

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", cfg.Root, err)
	}

	gitignoreMatcher, err := NewGitignoreMatcher(root)
	if err != nil {
		logger.Debug("no .gitignore layer available", "error", err)
		gitignoreMatcher = nil
	}
	engineignoreMatcher, err := NewEngineignoreMatcher(root)
	if err != nil {
		logger.Debug("no .engineignore layer available", "error", err)
		engineignoreMatcher = nil
	}

	maxFileSize := cfg.MaxFileSize
	if maxFileSize == 0 {
		maxFileSize = DefaultMaxFileSize
	}

	w := &templateWalker{
		logger:      logger,
		composite:   NewCompositeIgnorer(NewDefaultIgnoreMatcher(), gitignoreMatcher, engineignoreMatcher),
		filter:      NewPatternFilter(PatternFilterOptions{Includes: cfg.Include, Excludes: cfg.Ignore}),
		resolver:    NewSymlinkResolver(),
		maxFileSize: maxFileSize,
	}

	if err := w.walk(root, ""); err != nil {
		return nil, engineerr.New(engineerr.KindFileNotFound, "walking template root "+root, err)
	}

	sort.Strings(w.found)
	return w.found, nil
}

// walk scans physicalRoot (a real directory: cfg.Root itself, or a
// symlinked directory's resolved target) and records matches under
// logicalPrefix, the slash-separated path the ignore/include layers and
// the caller should see (the original, pre-resolution path).
func (w *templateWalker) walk(physicalRoot, logicalPrefix string) error {
	return filepath.WalkDir(physicalRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("walk error", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(physicalRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		relPath := filepath.ToSlash(filepath.Join(logicalPrefix, rel))

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			return w.handleSymlink(path, relPath)
		}

		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}
		if w.composite.IsIgnored(relPath, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}

		w.considerFile(path, relPath)
		return nil
	})
}

// handleSymlink decides whether a symlink entry should be followed. A
// symlink to a directory recurses (once per distinct real path, to break
// loops); a symlink to a file is considered like any other file. Dangling
// or unresolvable symlinks are skipped with a debug log, matching the
// walk's general "skip and continue" error handling.
func (w *templateWalker) handleSymlink(path, relPath string) error {
	realPath, loop, err := w.resolver.Resolve(path)
	if err != nil {
		w.logger.Debug("skipping dangling symlink", "path", relPath, "error", err)
		return nil
	}
	if loop {
		w.logger.Debug("skipping symlink loop", "path", relPath, "real_path", realPath)
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Debug("skipping unreadable symlink target", "path", relPath, "error", err)
		return nil
	}

	if info.IsDir() {
		if filepath.Base(path) == ".git" {
			return nil
		}
		if w.composite.IsIgnored(relPath, true) {
			return nil
		}
		w.resolver.MarkVisited(realPath)
		return w.walk(path, relPath)
	}

	if w.composite.IsIgnored(relPath, false) {
		return nil
	}
	w.considerFile(path, relPath)
	return nil
}

// considerFile applies the include/exclude filter, the size cap, and
// binary detection to a candidate file, appending it to w.found if it
// survives all three.
func (w *templateWalker) considerFile(path, relPath string) {
	if !w.filter.Matches(relPath) {
		return
	}

	if w.maxFileSize >= 0 {
		large, size, err := IsLargeFile(path, w.maxFileSize)
		if err != nil {
			w.logger.Debug("skipping unreadable file", "path", relPath, "error", err)
			return
		}
		if large {
			w.logger.Debug("skipping large file", "path", relPath, "size", size, "max", w.maxFileSize)
			return
		}
	}

	binary, err := IsBinary(path)
	if err != nil {
		w.logger.Debug("skipping unreadable file", "path", relPath, "error", err)
		return
	}
	if binary {
		return
	}

	w.found = append(w.found, relPath)
}
