package engine

import (
	"strings"

	"github.com/sells-group/mailclean/internal/model"
)

// suppressionFlags are the defects that terminate evaluation in
// suppress unless an adopted fix resolves all of them.
var suppressionFlags = []model.RiskFlag{
	model.FlagMissingAt,
	model.FlagMultipleAt,
	model.FlagEmptyLocal,
	model.FlagEmptyDomain,
	model.FlagLocalTooLong,
	model.FlagLeadingTrailingDot,
	model.FlagDomainConsecutiveDots,
	model.FlagInvalidSyntax,
	model.FlagInvalidDomainLabel,
	model.FlagInvalidTLD,
	model.FlagIDNAError,
	model.FlagDisposableDomain,
}

// mediumFlags escalate an otherwise-accepted record to review when two
// or more are present.
var mediumFlags = []model.RiskFlag{
	model.FlagUnicodeConfusable,
	model.FlagNonASCIIDomain,
	model.FlagRoleAccount,
}

const maxReasonLen = 160

// Evaluate runs one raw address through normalization, validation,
// classification, correction, and the decision state machine. It never
// fails: every code path terminates in one of the four actions with a
// populated reason.
func (e *Engine) Evaluate(raw string) Result {
	normalized, notes := Normalize(raw)

	res := Result{
		Input:      raw,
		Normalized: normalized,
		Notes:      notes,
	}

	local, domain, ok := splitAddress(normalized)
	if !ok {
		res.Flags.Add(model.FlagInvalidSyntax)
		if strings.Count(normalized, "@") > 1 {
			res.Flags.Add(model.FlagMultipleAt)
		} else {
			res.Flags.Add(model.FlagMissingAt)
		}
		res.Action = model.ActionSuppress
		res.Confidence = confidence(res.Action, res.Flags, nil)
		res.Cleaned = normalized
		res.Reason = "invalid '@' count"
		res.Changed = normalized != raw
		return res
	}

	ascii, idnFlags := DomainToASCII(domain)
	res.Flags.Merge(idnFlags)
	res.Flags.Merge(ValidateDomainStructure(ascii))
	res.Flags.Merge(CheckTLD(ascii, e.refs))
	res.Flags.Merge(ValidateLocal(local))
	res.Flags.Merge(Classify(local, ascii, e.refs))

	display := e.displayEmail(local, ascii)

	// Policy suppression beats any available fix.
	if e.opts.ExcludeRoleAccounts && res.Flags.Has(model.FlagRoleAccount) {
		res.Action = model.ActionSuppress
		res.Confidence = confidence(res.Action, res.Flags, nil)
		res.Cleaned = display
		res.Reason = "role account excluded by policy"
		res.Changed = display != raw
		return res
	}

	// A suggestion is adopted only if the corrected address, fully
	// re-validated, carries no suppression-level defect. The post-fix
	// flag set also drives the confidence score: a fix that resolves
	// invalid_tld should not be penalized for it.
	sug := e.Suggest(local, ascii, res.Flags)
	var fixed string
	var postFlags model.FlagSet
	if sug != nil {
		cand := applySuggestion(local, ascii, sug)
		candFlags, candOK := e.revalidate(cand)
		if candOK && !hasSuppression(candFlags) {
			fixed = cand
			postFlags = candFlags
		} else {
			sug = nil
		}
	}

	switch {
	case sug != nil:
		res.Action = model.ActionFixAuto
		res.Suggestion = sug
		res.Cleaned = fixed
		res.Confidence = confidence(res.Action, postFlags, sug)
		res.Reason = "suggested fix (" + string(sug.Kind) + ")"

	case hasSuppression(res.Flags):
		res.Action = model.ActionSuppress
		res.Cleaned = display
		res.Confidence = confidence(res.Action, res.Flags, nil)
		res.Reason = truncate("fundamental or high-risk issue with no safe fix: "+res.Flags.String(), maxReasonLen)

	case countMedium(res.Flags) >= 2:
		res.Action = model.ActionReview
		res.Cleaned = display
		res.Confidence = confidence(res.Action, res.Flags, nil)
		res.Reason = "multiple medium risks; review recommended: " + res.Flags.String()

	default:
		res.Action = model.ActionAccept
		res.Cleaned = display
		res.Confidence = confidence(res.Action, res.Flags, nil)
		if res.Flags == 0 {
			res.Reason = "accepted"
		} else {
			res.Reason = "accepted with minor risks: " + res.Flags.String()
		}
	}

	if res.Action != model.ActionSuppress {
		res.CanonicalKey = e.CanonicalKey(res.Cleaned)
	}
	res.Changed = res.Cleaned != raw
	return res
}

// revalidate runs the validation and classification passes over a
// corrected candidate address. ok is false when the candidate does not
// even split into local+domain, which rejects the suggestion outright.
func (e *Engine) revalidate(email string) (model.FlagSet, bool) {
	local, domain, ok := splitAddress(email)
	if !ok {
		return 0, false
	}
	ascii, flags := DomainToASCII(domain)
	flags.Merge(ValidateDomainStructure(ascii))
	flags.Merge(CheckTLD(ascii, e.refs))
	flags.Merge(ValidateLocal(local))
	flags.Merge(Classify(local, ascii, e.refs))
	return flags, true
}

// displayEmail builds the cleaned output value. Freemail providers
// treat the local part case-insensitively, so those addresses are
// safely lower-cased in full; all other locals keep their case.
func (e *Engine) displayEmail(local, domainASCII string) string {
	d := strings.ToLower(domainASCII)
	if _, free := e.refs.FreeMail[d]; free {
		return strings.ToLower(local) + "@" + d
	}
	return local + "@" + d
}

func hasSuppression(flags model.FlagSet) bool {
	return flags.HasAny(suppressionFlags...)
}

func countMedium(flags model.FlagSet) int {
	n := 0
	for _, f := range mediumFlags {
		if flags.Has(f) {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
