package engine

import (
	"github.com/agnivade/levenshtein"
)

// DomainMatcher finds the nearest candidate domain for a misspelled
// input. Score is on a normalized 0-100 scale; implementations must be
// deterministic for identical input and candidate list.
type DomainMatcher interface {
	BestMatch(domain string, candidates []string) (match string, score int)
}

// NewMatcher selects a matcher implementation by name. Unknown names
// fall back to the levenshtein matcher.
func NewMatcher(provider string) DomainMatcher {
	if provider == "prefix" {
		return PrefixMatcher{}
	}
	return LevenshteinMatcher{}
}

// LevenshteinMatcher scores candidates by normalized edit distance.
type LevenshteinMatcher struct{}

// BestMatch returns the candidate with the highest similarity score,
// computed as 100*(1 - distance/maxLen). Ties resolve to the earlier
// candidate so the configured list order decides.
func (LevenshteinMatcher) BestMatch(domain string, candidates []string) (string, int) {
	best := ""
	bestScore := -1
	for _, cand := range candidates {
		score := similarityScore(domain, cand)
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

// similarityScore maps levenshtein distance onto a 0-100 scale.
func similarityScore(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist > maxLen {
		dist = maxLen
	}
	return (maxLen - dist) * 100 / maxLen
}

// PrefixMatcher is the dependency-light fallback: it scores candidates
// by shared prefix and suffix length only. It is intentionally cruder
// than the levenshtein matcher and is expected to clear the acceptance
// threshold less often.
type PrefixMatcher struct{}

// BestMatch scores each candidate as the share of its characters
// covered by the common prefix and suffix with the input.
func (PrefixMatcher) BestMatch(domain string, candidates []string) (string, int) {
	best := ""
	bestScore := -1
	for _, cand := range candidates {
		score := affixScore(domain, cand)
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

func affixScore(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	ra, rb := a[prefix:], b[prefix:]
	suffix := 0
	for suffix < len(ra) && suffix < len(rb) && ra[len(ra)-1-suffix] == rb[len(rb)-1-suffix] {
		suffix++
	}
	covered := prefix + suffix
	if covered > maxLen {
		covered = maxLen
	}
	return covered * 100 / maxLen
}

// lengthDiffWithin reports whether the candidate length stays within
// the allowed budget of the input length. Short or dissimilar domains
// must not be "corrected" aggressively.
func lengthDiffWithin(a, b string, budget int) bool {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= budget
}
