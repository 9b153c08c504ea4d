// Package render implements the engine's deterministic template engine
// (C3). It builds on text/template the way the example corpus's own code
// generators do (theRebelliousNerd-codenerd's autopoiesis.ToolGenerator
// renders Go source through text/template with a restricted FuncMap), but
// layers a fixed, host-independent function set on top and rejects any
// template source that references a forbidden, non-deterministic filter
// before it ever executes.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/provenance-engine/engine/internal/engineerr"
	"github.com/provenance-engine/engine/internal/hashing"
	"github.com/zeebo/xxh3"
)

// forbiddenFilters is the fixed denylist of host-dependent functions. Any
// template source referencing one of these identifiers as a function or
// pipeline stage is rejected at parse time, before any data is bound.
var forbiddenFilters = map[string]bool{
	"random": true, "rand": true, "now": true, "uuid": true,
	"shuffle": true, "timestamp": true, "env": true, "getenv": true,
	"hostname": true, "pid": true,
}

// forbiddenRefPattern matches a forbidden identifier used as a function
// call or pipeline stage: "name(" or "| name" or "|name".
var forbiddenRefPattern = regexp.MustCompile(`\b(` + forbiddenAlternation() + `)\s*\(|\|\s*(` + forbiddenAlternation() + `)\b`)

func forbiddenAlternation() string {
	names := make([]string, 0, len(forbiddenFilters))
	for name := range forbiddenFilters {
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// Engine renders templates against a variable context with caching keyed
// by xxh3(templateHash, hashJson(context)). xxh3 is a non-cryptographic
// hash, used here only to compress the cache key -- the content-
// addressing hash attached to every generated artifact is still the
// cryptographic one computed by the hashing package.
type Engine struct {
	mu    sync.Mutex
	cache map[uint64][]byte
	hits  int
	total int
}

// New returns a ready-to-use Engine with an empty render cache.
func New() *Engine {
	return &Engine{cache: make(map[uint64][]byte)}
}

// CacheStats returns the number of cache hits and total render calls,
// reported by the orchestrator's metrics.
func (e *Engine) CacheStats() (hits, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.total
}

// Render renders templateBody against context, returning the rendered
// bytes. templateHash identifies the template source for cache-keying
// (callers pass hashing.HashBytes(templateBody) or an equivalent stable
// id); a cache hit never changes the output, only whether it is recorded
// as a hit in metrics.
func (e *Engine) Render(templateHash string, templateBody string, context map[string]any) ([]byte, error) {
	if m := forbiddenRefPattern.FindString(templateBody); m != "" {
		return nil, engineerr.New(engineerr.KindForbiddenFilter, fmt.Sprintf("forbidden non-deterministic reference: %s", strings.TrimSpace(m)), nil)
	}

	ctxHash, err := hashing.HashJSON(context)
	if err != nil {
		return nil, engineerr.New(engineerr.KindParseError, "context is not hashable", err)
	}
	cacheKey := xxh3.HashString(templateHash + ":" + ctxHash)

	e.mu.Lock()
	e.total++
	if cached, ok := e.cache[cacheKey]; ok {
		e.hits++
		e.mu.Unlock()
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}
	e.mu.Unlock()

	out, err := e.renderUncached(templateBody, context)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[cacheKey] = out
	e.mu.Unlock()
	return out, nil
}

func (e *Engine) renderUncached(templateBody string, context map[string]any) ([]byte, error) {
	tmpl := template.New("entry").
		Option("missingkey=error").
		Funcs(builtinFuncs())

	tmpl, err := tmpl.Parse(templateBody)
	if err != nil {
		return nil, engineerr.New(engineerr.KindParseError, "template parse failed", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, sortedContext(context)); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return nil, engineerr.New(engineerr.KindUndefinedVariable, "undefined variable referenced in template", err)
		}
		return nil, engineerr.New(engineerr.KindParseError, "template render failed", err)
	}
	return buf.Bytes(), nil
}

// builtinFuncs is the fixed, enumerated global function set available to
// every template: hash, contentId, sortKeys and dump, plus the string
// helpers upper, lower, trim, join and default. No function in the set
// exposes build-environment values; templates see only their context.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"hash":      func(v any) (string, error) { return hashing.HashJSON(v) },
		"contentId": contentID,
		"sortKeys":  sortKeys,
		"dump":      dump,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"join":      joinStrings,
		"default":   defaultValue,
	}
}

func contentID(v any) (string, error) {
	b, err := hashing.CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return hashing.ContentID(b), nil
}

// sortKeys returns the keys of a map[string]any in sorted order, so
// `{{ range sortKeys .obj }}` iterates deterministically.
func sortKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dump(v any) (string, error) {
	b, err := hashing.CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func joinStrings(sep string, items []string) string {
	return strings.Join(items, sep)
}

func defaultValue(fallback, v any) any {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok && s == "" {
		return fallback
	}
	return v
}

// sortedContext wraps a context map so that text/template's own range-
// over-map iteration (which already sorts map keys for basic types) is
// unaffected; its only purpose is documenting the invariant at the call
// site. text/template sorts map[string]T keys during range by default,
// which already satisfies the determinism contract's iteration-order
// clause for maps.
func sortedContext(context map[string]any) map[string]any {
	return context
}
