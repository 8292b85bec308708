package model

// SuggestionKind identifies which correction rule produced a suggestion.
type SuggestionKind string

const (
	SuggestTLDTypo          SuggestionKind = "tld_typo"
	SuggestDomainTypo       SuggestionKind = "domain_typo"
	SuggestLocalDotCollapse SuggestionKind = "local_dot_collapse"
	SuggestFuzzyDomain      SuggestionKind = "fuzzy_domain"
)

// CorrectionSuggestion is a single-step safe fix proposed for a record.
// At most one suggestion is ever adopted per record.
type CorrectionSuggestion struct {
	Kind       SuggestionKind `json:"kind"`
	Original   string         `json:"original"`
	Suggested  string         `json:"suggested"`
	Confidence float64        `json:"confidence"`
}

// Exact reports whether the suggestion came from an exact lookup table
// rather than fuzzy matching. Exact fixes earn a small confidence bonus.
func (s CorrectionSuggestion) Exact() bool {
	return s.Kind == SuggestTLDTypo || s.Kind == SuggestDomainTypo
}
