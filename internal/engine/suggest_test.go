package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

func flagsOf(flags ...model.RiskFlag) model.FlagSet {
	var fs model.FlagSet
	for _, f := range flags {
		fs.Add(f)
	}
	return fs
}

func TestSuggest_TLDTypo(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	sug := e.Suggest("anna", "company.con", flagsOf(model.FlagInvalidTLD))

	require.NotNil(t, sug)
	assert.Equal(t, model.SuggestTLDTypo, sug.Kind)
	assert.Equal(t, "company.com", sug.Suggested)
	assert.InDelta(t, 0.95, sug.Confidence, 0.001)
	assert.True(t, sug.Exact())
}

func TestSuggest_LongestTLDSuffixWins(t *testing.T) {
	e := newTestEngine(t, func(rs *config.RefSets) {
		rs.TLDTypos = map[string]string{
			".con":  ".com",
			"m.con": ".net",
		}
		rs.DomainTypos = map[string]string{}
	}, defaultOpts())
	sug := e.Suggest("x", "team.con", flagsOf(model.FlagInvalidTLD))

	require.NotNil(t, sug)
	assert.Equal(t, "tea.net", sug.Suggested)
}

func TestSuggest_DomainTypoOverridesTLDTypo(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	// icloud.con matches both tables; whole-domain wins.
	sug := e.Suggest("mark", "icloud.con", flagsOf(model.FlagInvalidTLD))

	require.NotNil(t, sug)
	assert.Equal(t, model.SuggestDomainTypo, sug.Kind)
	assert.Equal(t, "icloud.com", sug.Suggested)
	assert.InDelta(t, 0.90, sug.Confidence, 0.001)
}

func TestSuggest_LocalDotCollapse(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	sug := e.Suggest("john..doe", "example.com", flagsOf(model.FlagDoubleDotLocal))

	require.NotNil(t, sug)
	assert.Equal(t, model.SuggestLocalDotCollapse, sug.Kind)
	assert.Equal(t, "john.doe", sug.Suggested)
	assert.False(t, sug.Exact())
}

func TestSuggest_DomainFixBeatsDotCollapse(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	sug := e.Suggest("john..doe", "company.con",
		flagsOf(model.FlagDoubleDotLocal, model.FlagInvalidTLD))

	require.NotNil(t, sug)
	assert.Equal(t, model.SuggestTLDTypo, sug.Kind)
}

func TestSuggest_FuzzyRequiresImplausibleDomain(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	// gmall.com is one edit from gmail.com but its TLD and labels are
	// fine, so no fuzzy correction may fire.
	sug := e.Suggest("anna", "gmall.com", 0)
	assert.Nil(t, sug)
}

func TestSuggest_FuzzyMatch(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	sug := e.Suggest("anna", "gmail.comx", flagsOf(model.FlagInvalidTLD))

	require.NotNil(t, sug)
	assert.Equal(t, model.SuggestFuzzyDomain, sug.Kind)
	assert.Equal(t, "gmail.com", sug.Suggested)
	assert.InDelta(t, 0.90, sug.Confidence, 0.005)
	assert.False(t, sug.Exact())
}

func TestSuggest_FuzzyBelowScoreThreshold(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	sug := e.Suggest("anna", "zzzzz.qqq", flagsOf(model.FlagInvalidTLD))
	assert.Nil(t, sug)
}

func TestSuggest_FuzzyLengthBudget(t *testing.T) {
	long := strings.Repeat("a", 30)
	e := newTestEngine(t, func(rs *config.RefSets) {
		rs.TLDTypos = map[string]string{}
		rs.DomainTypos = map[string]string{}
		// High-scoring candidate that is three characters longer than
		// the input, past the length budget.
		rs.TopDomains = []string{long + ".qqq.co"}
	}, defaultOpts())
	sug := e.Suggest("anna", long+".qqq", flagsOf(model.FlagInvalidTLD))
	assert.Nil(t, sug)
}

func TestSuggest_NoFix(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	assert.Nil(t, e.Suggest("anna.berg", "acme.com", 0))
}

func TestApplySuggestion(t *testing.T) {
	dot := &model.CorrectionSuggestion{Kind: model.SuggestLocalDotCollapse, Suggested: "john.doe"}
	assert.Equal(t, "john.doe@example.com", applySuggestion("john..doe", "Example.com", dot))

	dom := &model.CorrectionSuggestion{Kind: model.SuggestTLDTypo, Suggested: "company.com"}
	assert.Equal(t, "Anna@company.com", applySuggestion("Anna", "company.con", dom))
}
