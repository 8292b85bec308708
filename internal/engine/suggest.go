package engine

import (
	"sort"
	"strings"

	"github.com/sells-group/mailclean/internal/model"
)

// fuzzyLengthBudget bounds how far a fuzzy correction may stray from
// the input length.
const fuzzyLengthBudget = 2

// Suggest proposes at most one safe single-step fix. Priority order,
// first match wins:
//  1. exact TLD-typo table (suffix match)
//  2. exact whole-domain typo table (overrides a TLD suggestion)
//  3. local double-dot collapse, only if no domain fix applies and the
//     collapsed local is itself valid
//  4. fuzzy nearest-neighbor domain match, only when the domain is
//     already implausible (invalid label or TLD) and the match clears
//     the score threshold within the length budget
func (e *Engine) Suggest(local, domainASCII string, flags model.FlagSet) *model.CorrectionSuggestion {
	lower := strings.ToLower(domainASCII)

	var sug *model.CorrectionSuggestion

	if fixed, ok := e.tldFix(lower); ok {
		sug = &model.CorrectionSuggestion{
			Kind:       model.SuggestTLDTypo,
			Original:   lower,
			Suggested:  fixed,
			Confidence: 0.95,
		}
	}

	if fixed, ok := e.refs.DomainTypos[lower]; ok {
		sug = &model.CorrectionSuggestion{
			Kind:       model.SuggestDomainTypo,
			Original:   lower,
			Suggested:  fixed,
			Confidence: 0.90,
		}
	}

	if sug == nil && flags.Has(model.FlagDoubleDotLocal) {
		collapsed := collapseDots(local)
		if collapsed != local && ValidateLocal(collapsed) == 0 {
			sug = &model.CorrectionSuggestion{
				Kind:       model.SuggestLocalDotCollapse,
				Original:   local,
				Suggested:  collapsed,
				Confidence: 0.90,
			}
		}
	}

	if sug == nil && flags.HasAny(model.FlagInvalidDomainLabel, model.FlagInvalidTLD) {
		if match, score := e.matcher.BestMatch(lower, e.refs.TopDomains); match != "" &&
			score >= e.opts.FuzzyMinScore &&
			len(match) > 2 &&
			lengthDiffWithin(lower, match, fuzzyLengthBudget) {
			sug = &model.CorrectionSuggestion{
				Kind:       model.SuggestFuzzyDomain,
				Original:   lower,
				Suggested:  match,
				Confidence: float64(score) / 100,
			}
		}
	}

	return sug
}

// tldFix applies the TLD typo table by suffix. Longer suffixes win so
// ".coom" beats ".om" when both are configured; equal lengths resolve
// lexicographically for determinism.
func (e *Engine) tldFix(domain string) (string, bool) {
	suffixes := make([]string, 0, len(e.refs.TLDTypos))
	for bad := range e.refs.TLDTypos {
		suffixes = append(suffixes, bad)
	}
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] < suffixes[j]
	})

	for _, bad := range suffixes {
		if strings.HasSuffix(domain, bad) {
			return domain[:len(domain)-len(bad)] + e.refs.TLDTypos[bad], true
		}
	}
	return "", false
}

// applySuggestion builds the full corrected address for a suggestion.
func applySuggestion(local, domainASCII string, sug *model.CorrectionSuggestion) string {
	if sug.Kind == model.SuggestLocalDotCollapse {
		return sug.Suggested + "@" + strings.ToLower(domainASCII)
	}
	return local + "@" + sug.Suggested
}
