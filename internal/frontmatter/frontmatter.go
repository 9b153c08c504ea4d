// Package frontmatter splits a template file into its header directives
// and body, and validates/evaluates those directives. The header block is
// a YAML-subset document between two "---" lines at the start of the
// file, parsed with gopkg.in/yaml.v3 (the corpus's own YAML library,
// already required for config templates) restricted to scalars,
// sequences, and nested mappings — no anchors or aliases, mirroring the
// lax/strict unknown-key handling the teacher's TOML loader applies via
// toml.MetaData.Undecoded() (internal/config/loader.go).
package frontmatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/provenance-engine/engine/internal/engineerr"
	"gopkg.in/yaml.v3"
)

// Mode is the write policy an entry applies to its output path.
type Mode string

const (
	ModeWrite   Mode = "write"
	ModeInject  Mode = "inject"
	ModeAppend  Mode = "append"
	ModePrepend Mode = "prepend"
	ModeLineAt  Mode = "lineAt"
)

// RDFBinding describes an optional source RDF graph a template renders
// against, as declared by the "rdf" frontmatter directive.
type RDFBinding struct {
	Source string `yaml:"source"`
	Type   string `yaml:"type"` // file | string | inline
	Format string `yaml:"format"`
}

// Frontmatter is the parsed, typed form of a template's header block.
type Frontmatter struct {
	To               string      `yaml:"to"`
	Mode             Mode        `yaml:"mode"`
	Before           string      `yaml:"before"`
	After            string      `yaml:"after"`
	LineAt           int         `yaml:"lineAt"`
	SkipIf           string      `yaml:"skipIf"`
	Unless           string      `yaml:"unless"`
	Chmod            string      `yaml:"chmod"`
	Deterministic    *bool       `yaml:"deterministic"`
	ContentAddressed *bool       `yaml:"contentAddressed"`
	Attestations     *bool       `yaml:"attestations"`
	RDF              *RDFBinding `yaml:"rdf"`

	raw map[string]any
}

// knownDirectives is the closed vocabulary; any other header key is a
// warning in lax mode and a frontmatter-error in strict mode.
var knownDirectives = map[string]bool{
	"to": true, "mode": true, "before": true, "after": true, "lineAt": true,
	"skipIf": true, "unless": true, "chmod": true, "deterministic": true,
	"contentAddressed": true, "attestations": true, "rdf": true,
}

// Template is a parsed template file: its directives and body text.
type Template struct {
	Path          string
	Frontmatter   Frontmatter
	Body          string
	EngineVersion string
}

// Parse splits raw template bytes into frontmatter and body and validates
// the header. strict controls whether an unknown directive is a hard
// error (true) or a warning collected in Warnings (false).
func Parse(path string, raw []byte, strict bool) (*Template, []string, error) {
	header, body, err := splitHeader(raw)
	if err != nil {
		return nil, nil, err
	}

	fm, warnings, err := parseHeader(header, strict)
	if err != nil {
		return nil, nil, err
	}

	if err := validate(fm); err != nil {
		return nil, nil, err
	}

	return &Template{Path: path, Frontmatter: fm, Body: body}, warnings, nil
}

// splitHeader extracts the YAML block between the first two "---" lines.
// A file with no leading "---" line has no frontmatter; its entire
// content is the body.
func splitHeader(raw []byte) (header, body string, err error) {
	text := string(raw)
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", text, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			header = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			body = strings.TrimPrefix(body, "\n")
			return header, body, nil
		}
	}
	return "", "", engineerr.New(engineerr.KindFrontmatterError, "unterminated frontmatter block: missing closing \"---\"", nil)
}

func parseHeader(header string, strict bool) (Frontmatter, []string, error) {
	var fm Frontmatter
	if strings.TrimSpace(header) == "" {
		return fm, nil, nil
	}

	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, nil, engineerr.New(engineerr.KindFrontmatterError, "invalid frontmatter yaml", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal([]byte(header), &generic); err != nil {
		return fm, nil, engineerr.New(engineerr.KindFrontmatterError, "invalid frontmatter yaml", err)
	}
	fm.raw = generic

	var warnings []string
	for key := range generic {
		if knownDirectives[key] {
			continue
		}
		msg := fmt.Sprintf("unknown frontmatter directive %q", key)
		if strict {
			return fm, nil, engineerr.New(engineerr.KindFrontmatterError, msg, nil)
		}
		warnings = append(warnings, msg)
	}

	if fm.Mode == "" {
		fm.Mode = ModeWrite
	}
	return fm, warnings, nil
}

// validate enforces the invariants in §4.4: at most one non-write mode,
// before/after require inject, lineAt requires mode lineAt and is >= 1.
func validate(fm Frontmatter) error {
	switch fm.Mode {
	case ModeWrite, ModeInject, ModeAppend, ModePrepend, ModeLineAt:
	default:
		return engineerr.New(engineerr.KindConflictingDirectives, fmt.Sprintf("unknown mode %q", fm.Mode), nil)
	}

	if (fm.Before != "" || fm.After != "") && fm.Mode != ModeInject {
		return engineerr.New(engineerr.KindConflictingDirectives, "before/after require mode=inject", nil)
	}
	if fm.Mode == ModeInject && fm.Before == "" && fm.After == "" {
		return engineerr.New(engineerr.KindConflictingDirectives, "mode=inject requires before or after", nil)
	}
	if fm.Mode == ModeLineAt && fm.LineAt < 1 {
		return engineerr.New(engineerr.KindConflictingDirectives, "mode=lineAt requires lineAt >= 1", nil)
	}
	if fm.Mode != ModeLineAt && fm.LineAt != 0 {
		return engineerr.New(engineerr.KindConflictingDirectives, "lineAt requires mode=lineAt", nil)
	}
	return nil
}

// OperationMode returns the entry's write mode, defaulting to ModeWrite.
func OperationMode(fm Frontmatter) Mode {
	if fm.Mode == "" {
		return ModeWrite
	}
	return fm.Mode
}

// BoolOrDefault returns the directive's value or def when the directive
// was not set in the header (nil pointer).
func BoolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ParseChmod parses the chmod directive (decimal or octal-string form,
// e.g. "0644" or "644") into a Unix file mode. Returns 0, false if unset.
func ParseChmod(s string) (uint32, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		// Fall back to base-10 in case the value was written without
		// octal intent (e.g. yaml parsed "644" as decimal already).
		v, err = strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, false, engineerr.New(engineerr.KindFrontmatterError, fmt.Sprintf("invalid chmod value %q", s), err)
		}
	}
	return uint32(v), true, nil
}

// ShouldSkip evaluates skipIf first, then unless, against the rendered
// variable context. skipIf wins: if it evaluates true the entry is
// skipped regardless of unless.
func ShouldSkip(fm Frontmatter, vars map[string]any) (bool, error) {
	if fm.SkipIf != "" {
		v, err := evalExpr(fm.SkipIf, vars)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	if fm.Unless != "" {
		v, err := evalExpr(fm.Unless, vars)
		if err != nil {
			return false, err
		}
		return v, nil
	}
	return false, nil
}

// evalExpr evaluates the restricted expression grammar: `name`, `!name`,
// `k==v`, `k!=v`. name truthiness follows Go's zero-value convention for
// the variable's type (false/0/""/nil/empty collection is falsy).
func evalExpr(expr string, vars map[string]any) (bool, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "!") {
		v, err := evalExpr(strings.TrimSpace(expr[1:]), vars)
		return !v, err
	}

	if idx := strings.Index(expr, "!="); idx >= 0 {
		return compareExpr(expr[:idx], expr[idx+2:], vars, false)
	}
	if idx := strings.Index(expr, "=="); idx >= 0 {
		return compareExpr(expr[:idx], expr[idx+2:], vars, true)
	}

	return isTruthy(vars[expr]), nil
}

func compareExpr(lhs, rhs string, vars map[string]any, wantEqual bool) (bool, error) {
	lhs = strings.TrimSpace(lhs)
	rhs = strings.TrimSpace(strings.Trim(strings.TrimSpace(rhs), `"'`))

	val, ok := vars[lhs]
	var str string
	if ok {
		str = fmt.Sprintf("%v", val)
	}
	eq := str == rhs
	return eq == wantEqual, nil
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
