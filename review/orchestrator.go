package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"youth-press/config"
	"youth-press/safety"
)

// Provider is an external reviewer, usually a language model.
type Provider interface {
	Name() string
	Review(ctx context.Context, a Article) (Result, error)
}

// Orchestrator is the single entry point for reviewing an article.
type Orchestrator struct {
	provider Provider
	timeout  time.Duration
}

// NewOrchestrator builds an orchestrator. A nil provider means fallback rules only.
func NewOrchestrator(provider Provider, timeout time.Duration) *Orchestrator {
	return &Orchestrator{provider: provider, timeout: timeout}
}

// AIConfigured reports whether reviews will try the provider first.
func (o *Orchestrator) AIConfigured() bool { return o.provider != nil }

// Review never fails: provider errors and timeouts fall back to local rules,
// and anything unexpected becomes a needs_revision result.
func (o *Orchestrator) Review(ctx context.Context, a Article) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			config.ErrorWithFields("article review panicked", config.Fields{
				"article_id": a.ID,
				"panic":      fmt.Sprint(r),
			})
			res = failureResult(a)
		}
	}()

	hardReject := safety.IsHardReject(a.Title + "\n" + a.Content)

	if o.provider != nil {
		out, err := o.callProvider(ctx, a)
		if err == nil {
			return enforcePolicy(sanitize(out, a), hardReject)
		}
		config.WarnWithFields("ai review failed, using fallback rules", config.Fields{
			"article_id": a.ID,
			"provider":   o.provider.Name(),
			"error":      err.Error(),
		})
	}

	return fallbackResult(a, hardReject)
}

// callProvider races the provider against the configured timeout. A late
// result lands in the buffered channel and is dropped.
func (o *Orchestrator) callProvider(ctx context.Context, a Article) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if callCtx.Err() != nil {
		return Result{}, fmt.Errorf("%w after %s", ErrProviderTimeout, o.timeout)
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		res, err := o.provider.Review(callCtx, a)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-callCtx.Done():
		return Result{}, fmt.Errorf("%w after %s", ErrProviderTimeout, o.timeout)
	}
}

// enforcePolicy applies the hard-reject screen on top of any reviewer. Only
// screened content may end up rejected, and screened content always does.
func enforcePolicy(res Result, hardReject bool) Result {
	switch {
	case hardReject && res.Decision != DecisionRejected:
		res.Decision = DecisionRejected
		res.Feedback = HardRejectMessage
	case !hardReject && res.Decision == DecisionRejected:
		res.Decision = DecisionNeedsRevision
		res.Feedback = OverrideNote + res.Feedback
	}
	return res
}

func fallbackResult(a Article, hardReject bool) Result {
	local := ReviewLocally(a)
	raw, _ := json.Marshal(local)

	res := enforcePolicy(local, hardReject)
	if !hardReject && local.Decision == DecisionRejected {
		// the local rejection text says "cannot be published"
		res.Feedback = FallbackRevisionFeedback
	}
	res.Feedback += FallbackMarker
	res.Raw = FallbackRawPrefix + string(raw)
	res.Source = SourceFallback
	return res
}

func failureResult(a Article) Result {
	return Result{
		Decision: DecisionNeedsRevision,
		Category: NormalizeCategory(a.DeclaredType, ""),
		Feedback: FailureFeedback,
		Raw:      ErrorRaw,
		Source:   SourceError,
	}
}

// sanitize re-normalizes a provider result so a misbehaving provider cannot
// leak values outside the enums.
func sanitize(res Result, a Article) Result {
	res.Decision = NormalizeDecision(string(res.Decision))
	res.Category = NormalizeCategory(string(res.Category), a.DeclaredType)
	res.Feedback = strings.TrimSpace(res.Feedback)
	if res.Feedback == "" {
		res.Feedback = DefaultFeedback
	}
	res.Source = SourceAI
	return res
}
