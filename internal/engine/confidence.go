package engine

import (
	"github.com/sells-group/mailclean/internal/model"
)

// Per-action confidence bases. The score is descriptive, not
// probabilistic: it must be stable and reproducible for identical
// input and configuration.
const (
	baseAccept   = 0.98
	baseFixAuto  = 0.90
	baseReview   = 0.40
	baseSuppress = 0.10

	exactFixBonus = 0.05
	penaltyScale  = 0.15
	maxPenalty    = 0.60
	confidenceMin = 0.01
	confidenceMax = 0.99
)

// riskWeights maps each flag to its fixed confidence penalty weight.
var riskWeights = map[model.RiskFlag]float64{
	model.FlagMissingAt:             0.9,
	model.FlagMultipleAt:            0.7,
	model.FlagEmptyLocal:            0.7,
	model.FlagEmptyDomain:           0.7,
	model.FlagLocalTooLong:          0.7,
	model.FlagLeadingTrailingDot:    0.5,
	model.FlagDoubleDotLocal:        0.5,
	model.FlagDomainConsecutiveDots: 0.5,
	model.FlagInvalidSyntax:         0.9,
	model.FlagInvalidDomainLabel:    0.7,
	model.FlagInvalidTLD:            0.8,
	model.FlagIDNAError:             0.8,
	model.FlagNonASCIIDomain:        0.3,
	model.FlagUnicodeConfusable:     0.6,
	model.FlagDisposableDomain:      0.7,
	model.FlagFreeMailDomain:        0.1,
	model.FlagRoleAccount:           0.3,
	model.FlagTestEmail:             0.2,
	model.FlagLowDiversity:          0.2,
}

// confidence computes the score for an action given the flags that
// remain relevant after any adopted fix. Exact-table corrections earn
// a small bonus over fuzzy ones.
func confidence(action model.Action, flags model.FlagSet, sug *model.CorrectionSuggestion) float64 {
	var base float64
	switch action {
	case model.ActionAccept:
		base = baseAccept
	case model.ActionFixAuto:
		base = baseFixAuto
	case model.ActionReview:
		base = baseReview
	default:
		base = baseSuppress
	}

	// Sum in flag declaration order. Map iteration order is random
	// and float addition is not associative, so a ranged sum would
	// not be bit-stable across runs.
	total := 0.0
	for i := 0; i < model.NumFlags; i++ {
		f := model.RiskFlag(1) << i
		if flags.Has(f) {
			total += riskWeights[f]
		}
	}
	penalty := penaltyScale * total
	if penalty > maxPenalty {
		penalty = maxPenalty
	}

	bonus := 0.0
	if action == model.ActionFixAuto && sug != nil && sug.Exact() {
		bonus = exactFixBonus
	}

	score := base - penalty + bonus
	if score < confidenceMin {
		score = confidenceMin
	}
	if score > confidenceMax {
		score = confidenceMax
	}
	return score
}
