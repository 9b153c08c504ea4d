package cli

import (
	"context"
	"os"

	"github.com/provenance-engine/engine/internal/config"
	"github.com/provenance-engine/engine/internal/drift"
	"github.com/provenance-engine/engine/internal/engine"
	"github.com/provenance-engine/engine/internal/frontmatter"
)

// newEngine constructs and initializes an *engine.Engine from a resolved
// profile, the one place every verb goes through so the engine-level
// engine.toml settings (shapes cache bound, baseline path) are honored
// uniformly. The rules.enabled/rules.disabled lists are not passed here;
// verbs apply them per run through effectiveDisabledRules.
func newEngine(ctx context.Context, p *config.Profile) (*engine.Engine, error) {
	e, err := engine.New(engine.Options{
		ShapesCacheSize: p.ShapesCacheSize,
		BaselinePath:    p.BaselinePath,
	})
	if err != nil {
		return nil, err
	}
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// effectiveDisabledRules computes the rule ids RunAll should skip: every
// id in cfg.Rules.Disabled, plus -- when cfg.Rules.Enabled is a non-empty
// allow-list -- every registered id not named in it.
func effectiveDisabledRules(e *engine.Engine, cfg config.RulesConfig) []string {
	disabled := append([]string{}, cfg.Disabled...)
	if len(cfg.Enabled) == 0 {
		return disabled
	}
	allowed := make(map[string]bool, len(cfg.Enabled))
	for _, id := range cfg.Enabled {
		allowed[id] = true
	}
	for _, id := range e.RuleIDs() {
		if !allowed[id] {
			disabled = append(disabled, id)
		}
	}
	return disabled
}

func driftModeFromProfile(p *config.Profile) drift.Mode {
	switch p.Mode {
	case "warn":
		return drift.ModeWarn
	case "fix":
		return drift.ModeFix
	default:
		return drift.ModeFail
	}
}

// fsLoader implements plan.Loader by reading the template file at the
// path it is given (callers join it with the templates root; Load does
// not consult root) and parsing its frontmatter. Unknown frontmatter directives are a
// warning, not an error: strict enforcement is a profile-level choice
// left for a future --strict flag, matching the teacher's own
// lax-by-default config loader.
type fsLoader struct {
	root string
}

func (l fsLoader) Load(templatePath string) (*frontmatter.Template, error) {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, err
	}
	tpl, _, err := frontmatter.Parse(templatePath, raw, false)
	return tpl, err
}
