package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

func newTestEngine(t *testing.T, mutate func(*config.RefSets), opts Options) *Engine {
	t.Helper()
	refs := defaultRefs(t)
	if mutate != nil {
		mutate(refs)
	}
	return New(refs, opts)
}

func defaultOpts() Options {
	return Options{
		ExcludeRoleAccounts: true,
		ProviderAware:       true,
		FuzzyProvider:       "levenshtein",
		FuzzyMinScore:       90,
	}
}

func TestEvaluate_TLDTypoFix(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate(" anna@company.con ")

	assert.Equal(t, model.ActionFixAuto, res.Action)
	assert.Equal(t, "anna@company.com", res.Cleaned)
	assert.True(t, res.Flags.Has(model.FlagInvalidTLD))
	assert.True(t, res.Changed)
	assert.Equal(t, "anna@company.com", res.CanonicalKey)
	// base 0.90 + exact bonus 0.05 - post-fix penalty (low_diversity 0.2*0.15)
	assert.InDelta(t, 0.92, res.Confidence, 0.001)
	assert.Contains(t, res.Reason, "tld_typo")
}

func TestEvaluate_LocalDotCollapse(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("john..doe@example.com")

	assert.Equal(t, model.ActionFixAuto, res.Action)
	assert.Equal(t, "john.doe@example.com", res.Cleaned)
	assert.True(t, res.Flags.Has(model.FlagDoubleDotLocal))
	assert.InDelta(t, 0.90, res.Confidence, 0.001)
	assert.Contains(t, res.Reason, "local_dot_collapse")
}

func TestEvaluate_DomainTypoOverridesTLD(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	// icloud.con matches both the TLD table (.con) and the whole-domain
	// table; the whole-domain entry must win.
	res := e.Evaluate("mark@icloud.con")

	assert.Equal(t, model.ActionFixAuto, res.Action)
	assert.Equal(t, model.SuggestDomainTypo, res.Suggestion.Kind)
	assert.Equal(t, "mark@icloud.com", res.Cleaned)
}

func TestEvaluate_MultipleAtSuppressed(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("nope@@domain.com")

	assert.Equal(t, model.ActionSuppress, res.Action)
	assert.Empty(t, res.CanonicalKey)
	assert.True(t, res.Flags.Has(model.FlagMultipleAt))
	assert.InDelta(t, 0.01, res.Confidence, 0.001)
}

func TestEvaluate_MissingAtSuppressed(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("not-an-email")

	assert.Equal(t, model.ActionSuppress, res.Action)
	assert.True(t, res.Flags.Has(model.FlagMissingAt))
	assert.Empty(t, res.CanonicalKey)
}

func TestEvaluate_RolePolicySuppression(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("sales@acme.com")

	assert.Equal(t, model.ActionSuppress, res.Action)
	assert.Contains(t, res.Reason, "role account")
	assert.Empty(t, res.CanonicalKey)
}

func TestEvaluate_RoleAllowedWhenPolicyOff(t *testing.T) {
	opts := defaultOpts()
	opts.ExcludeRoleAccounts = false
	e := newTestEngine(t, nil, opts)
	res := e.Evaluate("sales@acme.com")

	assert.Equal(t, model.ActionAccept, res.Action)
	assert.True(t, res.Flags.Has(model.FlagRoleAccount))
}

func TestEvaluate_DisposableSuppressed(t *testing.T) {
	e := newTestEngine(t, func(rs *config.RefSets) {
		rs.Disposable["mailinator.com"] = struct{}{}
	}, defaultOpts())
	res := e.Evaluate("somebody@mailinator.com")

	assert.Equal(t, model.ActionSuppress, res.Action)
	assert.True(t, res.Flags.Has(model.FlagDisposableDomain))
	assert.Empty(t, res.CanonicalKey)
}

func TestEvaluate_FuzzyFixResolvesInvalidTLD(t *testing.T) {
	// gmail.comx is in no typo table, but the fuzzy match repairs the
	// invalid TLD, so the fix is applied instead of suppressing.
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("mark@gmail.comx")

	assert.Equal(t, model.ActionFixAuto, res.Action)
	assert.Equal(t, model.SuggestFuzzyDomain, res.Suggestion.Kind)
	assert.Equal(t, "mark@gmail.com", res.Cleaned)
	// base 0.90, no exact bonus, post-fix free_mail penalty
	assert.InDelta(t, 0.885, res.Confidence, 0.001)
}

func TestEvaluate_SuppressionBeatsUnresolvingFix(t *testing.T) {
	// gmail.comx fuzzy-matches gmail.com, but force the suggested
	// candidate to carry a bad TLD itself: with only implausible
	// candidates, no safe fix exists and suppression wins.
	e := newTestEngine(t, func(rs *config.RefSets) {
		rs.TLDTypos = map[string]string{}
		rs.DomainTypos = map[string]string{}
		rs.TopDomains = []string{"gmail.conx"}
	}, defaultOpts())
	res := e.Evaluate("anna@gmail.comx")

	assert.Equal(t, model.ActionSuppress, res.Action)
	assert.True(t, res.Flags.Has(model.FlagInvalidTLD))
	assert.Empty(t, res.CanonicalKey)
}

func TestEvaluate_AcceptCleanAddress(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("anna.berg@acme.com")

	assert.Equal(t, model.ActionAccept, res.Action)
	assert.Equal(t, "anna.berg@acme.com", res.Cleaned)
	assert.False(t, res.Changed)
	assert.InDelta(t, 0.98, res.Confidence, 0.001)
	assert.Equal(t, "anna.berg@acme.com", res.CanonicalKey)
}

func TestEvaluate_FreeMailMinorPenalty(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("sarah.winter@gmail.com")

	assert.Equal(t, model.ActionAccept, res.Action)
	// base 0.98 - free_mail 0.1*0.15
	assert.InDelta(t, 0.965, res.Confidence, 0.001)
}

func TestEvaluate_ReviewOnMediumRisks(t *testing.T) {
	// role_account (policy off) + non_ascii_domain = two medium risks.
	opts := defaultOpts()
	opts.ExcludeRoleAccounts = false
	e := newTestEngine(t, func(rs *config.RefSets) {
		rs.TLDs["xn--p1ai"] = struct{}{}
	}, opts)
	res := e.Evaluate("admin@пример.рф")

	assert.Equal(t, model.ActionReview, res.Action)
	assert.True(t, res.Flags.Has(model.FlagNonASCIIDomain))
	assert.True(t, res.Flags.Has(model.FlagRoleAccount))
	assert.Contains(t, res.Reason, "review")
}

func TestEvaluate_LocalCasePreserved(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("Anna.Berg@ACME.com")

	assert.Equal(t, "Anna.Berg@acme.com", res.Cleaned)
}

func TestEvaluate_FreemailLocalLowered(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	res := e.Evaluate("Sarah.Winter@Gmail.com")

	assert.Equal(t, "sarah.winter@gmail.com", res.Cleaned)
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	inputs := []string{
		" anna@company.con ", "john..doe@example.com", "sales@acme.com",
		"sarah+events@gmail.com", "iván@exámple.com", "mark@faceboook.com",
		"test@test.com", "nope@@domain.com",
	}
	for _, in := range inputs {
		first := e.Evaluate(in)
		for i := 0; i < 5; i++ {
			again := e.Evaluate(in)
			assert.Equal(t, first, again, "nondeterministic for %q", in)
		}
	}
}

func TestEvaluate_NeverPanicsOnGarbage(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())
	for _, in := range []string{"", "@", "@@", "a@", "@b", "<>", "​", "\"@\"", "a@b@c@d"} {
		res := e.Evaluate(in)
		assert.True(t, model.ValidAction(res.Action))
		assert.NotEmpty(t, res.Reason)
	}
}
