// Package reviewer escalates review-action records to an LLM for a
// second opinion. The reviewer is optional and advisory: verdicts that
// fail validation or arrive below the confidence threshold leave the
// record in review, and any transport failure falls back to the
// deterministic decision already on the record.
package reviewer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/engine"
	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/resilience"
	"github.com/sells-group/mailclean/pkg/anthropic"
)

// maxNoteLen caps the reviewer note carried into the record reason.
const maxNoteLen = 120

const systemPrompt = `You are an email data quality reviewer. You receive one email address record that automated validation flagged for human review, with its risk flags and the automated reasoning. Judge plausibility only: never claim deliverability and never use the network.

Respond with a single JSON object and nothing else:
{"action": "accept" | "fix_auto" | "review" | "suppress", "confidence": 0.0-1.0, "normalized_email": "<cleaned form of the address>", "suggested_fix": "<corrected address, or null>", "note": "<short justification>"}

Answer "accept" if the address is plausibly deliverable as-is. Answer "fix_auto" only when a safe, obvious repair exists, and propose exactly one suggested_fix. Answer "suppress" if the address is clearly unusable or risky. Keep "review" when uncertain; prefer review over guessing.`

// Verdict is the reviewer's validated judgment on one record. A
// fix_auto verdict carries the proposed repair in SuggestedFix, with
// Normalized as the fallback output.
type Verdict struct {
	Action       model.Action `json:"action"`
	Confidence   float64      `json:"confidence"`
	Normalized   string       `json:"normalized_email"`
	SuggestedFix string       `json:"suggested_fix"`
	Note         string       `json:"note"`
}

// Proposed returns the address a fix_auto verdict wants to write,
// preferring the explicit fix over the normalized form.
func (v Verdict) Proposed() string {
	if v.SuggestedFix != "" {
		return v.SuggestedFix
	}
	return v.Normalized
}

// Reviewer renders a second opinion on a review-action record.
type Reviewer interface {
	Review(ctx context.Context, rec *model.EmailRecord) (Verdict, error)
}

// AnthropicReviewer implements Reviewer on the Anthropic message API,
// rate-limited so large datasets do not burst the API. A circuit
// breaker fails review calls fast once the API is persistently down;
// failed records keep their engine decision.
type AnthropicReviewer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
}

// New builds an AnthropicReviewer from configuration.
func New(client anthropic.Client, cfg config.ReviewerConfig) *AnthropicReviewer {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}
	return &AnthropicReviewer{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

// Review sends one record to the model and returns its validated
// verdict.
func (r *AnthropicReviewer) Review(ctx context.Context, rec *model.EmailRecord) (Verdict, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Verdict{}, eris.Wrap(err, "reviewer: rate limit wait")
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("review")
	resp, err := resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return r.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     r.model,
				MaxTokens: r.maxTokens,
				System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
				Messages: []anthropic.Message{
					{Role: "user", Content: buildPrompt(rec)},
				},
			})
		})
	})
	if err != nil {
		return Verdict{}, eris.Wrap(err, "reviewer: create message")
	}
	resp.Usage.LogCost(r.model, "review")

	verdict, err := parseVerdict(resp.Text())
	if err != nil {
		return Verdict{}, err
	}
	return verdict, nil
}

// buildPrompt serializes the record for the model. Only fields the
// model needs are included.
func buildPrompt(rec *model.EmailRecord) string {
	payload := map[string]any{
		"raw":        rec.Raw,
		"cleaned":    rec.Cleaned,
		"flags":      rec.Flags.Names(),
		"confidence": rec.Confidence,
		"reason":     rec.Reason,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// map of strings and floats cannot fail to marshal
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}

// parseVerdict extracts and validates the JSON verdict from the model
// output. An unknown action degrades to review rather than erroring:
// the model's prose is not allowed to change the record's fate.
func parseVerdict(text string) (Verdict, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return Verdict{}, eris.Errorf("reviewer: no JSON object in response %q", truncate(text, 80))
	}

	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, eris.Wrap(err, "reviewer: parse verdict")
	}

	switch v.Action {
	case model.ActionAccept, model.ActionFixAuto, model.ActionReview, model.ActionSuppress:
	default:
		zap.L().Warn("reviewer: unknown verdict action", zap.String("action", string(v.Action)))
		v.Action = model.ActionReview
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	v.Normalized = strings.TrimSpace(v.Normalized)
	v.SuggestedFix = strings.TrimSpace(v.SuggestedFix)
	v.Note = truncate(strings.TrimSpace(v.Note), maxNoteLen)

	// A repair verdict with nothing to write cannot be applied.
	if v.Action == model.ActionFixAuto && v.Proposed() == "" {
		zap.L().Warn("reviewer: fix verdict without a proposed address")
		v.Action = model.ActionReview
	}
	return v, nil
}

// Evaluator re-checks a reviewer-proposed address before it is
// adopted. *engine.Engine satisfies it.
type Evaluator interface {
	Evaluate(raw string) engine.Result
}

// Apply runs every review-action record through the reviewer and
// adopts verdicts that clear the confidence threshold. A fix_auto
// verdict is applied only after its proposed address re-validates
// through the deterministic engine; a proposal the engine would not
// itself keep leaves the record in review. Errors keep the
// deterministic decision and do not fail the run.
func Apply(ctx context.Context, r Reviewer, eng Evaluator, records []*model.EmailRecord, threshold float64) {
	for _, rec := range records {
		if rec.Action != model.ActionReview {
			continue
		}

		verdict, err := r.Review(ctx, rec)
		if err != nil {
			zap.L().Warn("reviewer: keeping deterministic decision",
				zap.String("email", rec.Cleaned),
				zap.Error(err))
			continue
		}
		if verdict.Action == model.ActionReview || verdict.Confidence < threshold {
			continue
		}

		if verdict.Action == model.ActionFixAuto {
			res := eng.Evaluate(verdict.Proposed())
			if res.Action != model.ActionAccept && res.Action != model.ActionFixAuto {
				zap.L().Warn("reviewer: proposed fix failed re-validation",
					zap.String("email", rec.Cleaned),
					zap.String("proposed", verdict.Proposed()),
					zap.String("action", string(res.Action)))
				continue
			}
			res.Apply(rec)
			rec.Action = model.ActionFixAuto
			rec.Changed = rec.Cleaned != rec.Raw
		} else {
			rec.Action = verdict.Action
		}
		rec.Confidence = verdict.Confidence
		if verdict.Note != "" {
			rec.Reason = "reviewer: " + verdict.Note
		}
		if rec.Action == model.ActionSuppress {
			rec.CanonicalKey = ""
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
