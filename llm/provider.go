// Package llm holds the language-model backends used for article review.
package llm

import (
	"context"
	"fmt"
	"time"

	"youth-press/config"
	"youth-press/models"
	"youth-press/review"
)

// UsageRecorder stores one record per provider call (system monitoring purpose).
type UsageRecorder interface {
	Insert(ctx context.Context, log models.AILog) error
}

// New returns the configured provider, or nil when AI review is not
// configured and the orchestrator should run fallback rules only.
func New(ctx context.Context, cfg config.AIConfig, usage UsageRecorder) (review.Provider, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	switch cfg.Provider {
	case "google":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, usage)
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.MaxTokens, usage), nil
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
}

// callLog captures one request for the usage recorder.
type callLog struct {
	provider     string
	model        string
	modelVersion string
	articleID    string
	prompt       string
	response     string
	inputTokens  int64
	outputTokens int64
	startedAt    time.Time
	err          error
}

func (l callLog) record(ctx context.Context, usage UsageRecorder) {
	fields := config.Fields{
		"provider":      l.provider,
		"model":         l.model,
		"article_id":    l.articleID,
		"duration_ms":   time.Since(l.startedAt).Milliseconds(),
		"input_tokens":  l.inputTokens,
		"output_tokens": l.outputTokens,
	}
	if l.err != nil {
		fields["error"] = l.err.Error()
	}
	config.InfoWithFields("ai review call completed", fields)

	if usage == nil {
		return
	}
	entry := models.AILog{
		Provider:       l.provider,
		ModelName:      l.model,
		ModelVersion:   l.modelVersion,
		ArticleID:      l.articleID,
		InputTokens:    l.inputTokens,
		OutputTokens:   l.outputTokens,
		TotalTokens:    l.inputTokens + l.outputTokens,
		DurationMs:     time.Since(l.startedAt).Milliseconds(),
		InputPrompt:    l.prompt,
		OutputResponse: l.response,
		RequestedAt:    l.startedAt,
		CompletedAt:    time.Now(),
	}
	if l.err != nil {
		msg := l.err.Error()
		entry.ErrorMessage = &msg
	}
	// the review context may already be cancelled; the log write gets its own budget
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := usage.Insert(logCtx, entry); err != nil {
		config.ErrorWithFields("failed to store ai call log", config.Fields{
			"article_id": l.articleID,
			"error":      err.Error(),
		})
	}
}
