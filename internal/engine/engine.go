// Package engine implements the deterministic email hygiene core: one
// raw address in, a normalized value, an action, a confidence score,
// and a canonical deduplication key out. No network calls; "valid"
// means syntactically and structurally plausible only, never
// deliverable.
package engine

import (
	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

// Options holds the policy knobs for one engine instance.
type Options struct {
	ExcludeRoleAccounts bool
	ProviderAware       bool
	FuzzyProvider       string
	FuzzyMinScore       int
}

// OptionsFromConfig maps the engine section of the application config.
func OptionsFromConfig(cfg config.EngineConfig) Options {
	return Options{
		ExcludeRoleAccounts: cfg.ExcludeRoleAccounts,
		ProviderAware:       cfg.ProviderAwareDedup,
		FuzzyProvider:       cfg.Fuzzy.Provider,
		FuzzyMinScore:       cfg.Fuzzy.MinScore,
	}
}

// Engine evaluates addresses against a fixed configuration. It holds
// no mutable state: identical input always yields identical output,
// and instances are safe for concurrent use.
type Engine struct {
	refs    *config.RefSets
	opts    Options
	matcher DomainMatcher
}

// New builds an engine over the given reference sets and options.
func New(refs *config.RefSets, opts Options) *Engine {
	return &Engine{
		refs:    refs,
		opts:    opts,
		matcher: NewMatcher(opts.FuzzyProvider),
	}
}

// Result is the full outcome of evaluating one raw address.
type Result struct {
	Input        string
	Normalized   string
	Cleaned      string
	Action       model.Action
	Confidence   float64
	Flags        model.FlagSet
	Suggestion   *model.CorrectionSuggestion
	CanonicalKey string
	Reason       string
	Notes        []string
	Changed      bool
}

// Apply writes the result onto a record in place. This is the single
// mutation the decision engine performs on a record.
func (res Result) Apply(rec *model.EmailRecord) {
	rec.Cleaned = res.Cleaned
	rec.Action = res.Action
	rec.Confidence = res.Confidence
	rec.CanonicalKey = res.CanonicalKey
	rec.Flags = res.Flags
	rec.Reason = res.Reason
	rec.Changed = res.Changed
}
