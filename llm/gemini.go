package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"youth-press/review"
)

// GeminiProvider reviews articles with a Google Gemini model.
type GeminiProvider struct {
	client *genai.Client
	model  string
	usage  UsageRecorder
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, usage UsageRecorder) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, model: model, usage: usage}, nil
}

func (p *GeminiProvider) Name() string { return "google" }

func (p *GeminiProvider) Review(ctx context.Context, a review.Article) (review.Result, error) {
	log := callLog{provider: p.Name(), model: p.model, articleID: a.ID, startedAt: time.Now()}
	log.prompt = review.UserMessage(a)

	temperature := float32(0)
	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(log.prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: review.SystemPrompt}}},
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		log.err = err
		log.record(ctx, p.usage)
		return review.Result{}, err
	}

	log.response = result.Text()
	log.modelVersion = result.ModelVersion
	if result.UsageMetadata != nil {
		log.inputTokens = int64(result.UsageMetadata.PromptTokenCount)
		log.outputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
	}

	res, err := review.ParseModelResponse(log.response, a.DeclaredType)
	log.err = err
	log.record(ctx, p.usage)
	return res, err
}
