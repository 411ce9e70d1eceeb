package triage

import (
	"context"
	"errors"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/alert"
)

// State tracks where the invoker is in its tier chain.
type State string

const (
	StateNotStarted State = "not_started"
	StateTrying     State = "trying"
	StateSucceeded  State = "succeeded"
	StateExhausted  State = "exhausted"
	StateDegraded   State = "degraded"
)

// FailureClass tags why an invocation attempt failed and decides the
// transition out of it.
type FailureClass string

const (
	// ClassRetryable: transient (throttling), retried once with backoff
	// before advancing to the next tier.
	ClassRetryable FailureClass = "retryable"

	// ClassSoftSkip: this tier cannot serve (model/profile not found,
	// access denied, must use profile) or the failure is unclassified.
	// The chain continues; we fail open toward availability.
	ClassSoftSkip FailureClass = "soft_skip"

	// ClassFatal: the request budget is gone. No further tier can
	// complete, so the chain stops and degrades immediately.
	ClassFatal FailureClass = "fatal"
)

// throttleBackoff is the pause before the single retry of a throttled
// attempt.
const throttleBackoff = 500 * time.Millisecond

// EngineHooks receives engine events for instrumentation. Nil fields are
// ignored.
type EngineHooks struct {
	OnLLMCall func(durationSeconds float64, failed bool)
	OnAttempt func(tier int, success bool, class FailureClass)
	OnRetry   func()
	OnParse   func(failed bool)
}

// Engine is the inference invoker: it walks the resolved candidate chain
// in strict tier order, classifies failures, and degrades to the
// rule-based fallback when the chain is exhausted.
type Engine struct {
	provider Provider
	logger   log.Logger
	hooks    EngineHooks
	backoff  time.Duration
}

// NewEngine creates an invoker over the given provider.
func NewEngine(provider Provider, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
		backoff:  throttleBackoff,
	}
}

// Run executes the tier chain for one sanitized alert. It always returns
// an analysis: from the model on success, from the static rules after
// exhaustion. The attempt log covers every invocation made.
func (e *Engine) Run(ctx context.Context, al *alert.Sanitized, candidates []Candidate) (*Analysis, []Attempt) {
	prompt := buildPrompt(al)
	attempts := make([]Attempt, 0, len(candidates))

	state := StateNotStarted
	for _, cand := range candidates {
		state = StateTrying
		L := e.logger.With("tier", cand.Tier, "ref", cand.Ref, "profile", cand.Profile)

		analysis, att, class := e.tryCandidate(ctx, L, cand, prompt)
		attempts = append(attempts, att...)

		if analysis != nil {
			state = StateSucceeded
			L.Info(ctx, "inference succeeded", "state", state, "attempts", len(attempts))
			return analysis, attempts
		}

		if class == ClassFatal {
			// Budget exhausted: later tiers cannot complete either.
			L.Warn(ctx, "aborting tier chain", "class", class)
			break
		}
		L.Warn(ctx, "tier failed, advancing", "class", class)
	}

	e.logger.Warn(ctx, "all inference tiers failed",
		"state", StateExhausted, "attempts", len(attempts))
	e.logger.Info(ctx, "synthesizing fallback analysis",
		"state", StateDegraded, "alert_type", al.AlertType)
	return FallbackAnalysis(al.AlertType), attempts
}

// tryCandidate runs one tier: a single invocation, plus at most one
// retry for throttling and one re-invocation after a parse failure.
// Returns a non-nil analysis on success, otherwise the class of the
// final failure.
func (e *Engine) tryCandidate(ctx context.Context, L log.Logger, cand Candidate, prompt string) (*Analysis, []Attempt, FailureClass) {
	var attempts []Attempt
	parseRetried := false

	for {
		raw, err := e.invoke(ctx, cand.Ref, prompt)
		if err != nil {
			class := classify(err)
			if class == ClassRetryable && len(attempts) == 0 {
				// One retry with backoff, honoring the request budget.
				attempts = append(attempts, failedAttempt(cand, class, err))
				e.failedHook(cand, class)
				if e.hooks.OnRetry != nil {
					e.hooks.OnRetry()
				}
				L.Info(ctx, "throttled, retrying once", "backoff", e.backoff.String())
				select {
				case <-time.After(e.backoff):
					continue
				case <-ctx.Done():
					return nil, attempts, ClassFatal
				}
			}
			attempts = append(attempts, failedAttempt(cand, class, err))
			e.failedHook(cand, class)
			return nil, attempts, class
		}

		analysis, perr := ParseAnalysis(raw)
		if e.hooks.OnParse != nil {
			e.hooks.OnParse(perr != nil)
		}
		if perr != nil {
			if !parseRetried {
				// One parse retry budget per tier before giving up on it.
				parseRetried = true
				attempts = append(attempts, failedAttempt(cand, ClassSoftSkip, perr))
				e.failedHook(cand, ClassSoftSkip)
				L.Warn(ctx, "model output unparseable, re-invoking tier once")
				continue
			}
			attempts = append(attempts, failedAttempt(cand, ClassSoftSkip, perr))
			e.failedHook(cand, ClassSoftSkip)
			return nil, attempts, ClassSoftSkip
		}

		attempts = append(attempts, Attempt{
			Tier: cand.Tier, Ref: cand.Ref, Profile: cand.Profile, Success: true,
		})
		if e.hooks.OnAttempt != nil {
			e.hooks.OnAttempt(cand.Tier, true, "")
		}
		return analysis, attempts, ""
	}
}

// invoke wraps one provider call with timing instrumentation.
func (e *Engine) invoke(ctx context.Context, ref, prompt string) (string, error) {
	start := time.Now()
	raw, err := e.provider.Invoke(ctx, ref, prompt)
	if e.hooks.OnLLMCall != nil {
		e.hooks.OnLLMCall(time.Since(start).Seconds(), err != nil)
	}
	return raw, err
}

func (e *Engine) failedHook(cand Candidate, class FailureClass) {
	if e.hooks.OnAttempt != nil {
		e.hooks.OnAttempt(cand.Tier, false, class)
	}
}

func failedAttempt(cand Candidate, class FailureClass, err error) Attempt {
	return Attempt{
		Tier: cand.Tier, Ref: cand.Ref, Profile: cand.Profile,
		Success: false, Class: class, Error: err.Error(),
	}
}

// classify maps an invocation error to its failure class.
func classify(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassFatal
	}

	var se HTTPStatusError
	if errors.As(err, &se) {
		switch se.HTTPStatus() {
		case 429, 529:
			// Throttling / overloaded.
			return ClassRetryable
		case 400, 403, 404:
			// Must-use-profile, access denied, model or profile not found.
			return ClassSoftSkip
		}
	}

	// Fail open toward availability: anything unclassified skips to the
	// next tier rather than aborting the request.
	return ClassSoftSkip
}
