package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"youth-press/review"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// AnthropicProvider reviews articles through the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey     string
	model      string
	maxTokens  int
	endpoint   string
	httpClient *http.Client
	usage      UsageRecorder
}

func NewAnthropicProvider(apiKey, model string, maxTokens int, usage UsageRecorder) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  anthropicEndpoint,
		// per-call deadlines come from the review timeout
		httpClient: &http.Client{Timeout: 60 * time.Second},
		usage:      usage,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (p *AnthropicProvider) Review(ctx context.Context, a review.Article) (review.Result, error) {
	log := callLog{provider: p.Name(), model: p.model, articleID: a.ID, startedAt: time.Now()}
	log.prompt = review.UserMessage(a)

	resp, err := p.post(ctx, anthropicRequest{
		Model:       p.model,
		System:      review.SystemPrompt,
		MaxTokens:   p.maxTokens,
		Temperature: 0,
		Messages:    []anthropicMessage{{Role: "user", Content: log.prompt}},
	})
	if err != nil {
		log.err = err
		log.record(ctx, p.usage)
		return review.Result{}, err
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	log.response = strings.TrimSpace(strings.Join(parts, "\n"))
	log.modelVersion = resp.Model
	log.inputTokens = resp.Usage.InputTokens
	log.outputTokens = resp.Usage.OutputTokens

	if log.response == "" {
		log.err = fmt.Errorf("anthropic: empty response")
		log.record(ctx, p.usage)
		return review.Result{}, log.err
	}

	res, err := review.ParseModelResponse(log.response, a.DeclaredType)
	log.err = err
	log.record(ctx, p.usage)
	return res, err
}

func (p *AnthropicProvider) post(ctx context.Context, payload anthropicRequest) (*anthropicResponse, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	_, body, err := doWithRetry(ctx, 2, 500*time.Millisecond, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", p.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type attemptFunc func() (status int, body []byte, err error)

// doWithRetry retries transport errors, 429 and 5xx with doubling delays.
// Other failures return immediately.
func doWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn attemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	delay := initialDelay
	for i := 0; ; i++ {
		status, body, err := fn()
		if err == nil {
			return status, body, nil
		}
		retryable := status == 0 || status == http.StatusTooManyRequests || status >= 500
		if !retryable || i == attempts-1 || ctx.Err() != nil {
			return status, body, err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
