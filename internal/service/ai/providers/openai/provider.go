// Package openai answers chat turns with OpenAI-compatible chat models.
package openai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/service/ai/prompt"
)

const (
	maxTokens   = 4000
	temperature = 0.7
)

// Provider wraps a langchaingo model
type Provider struct {
	llm llms.Model
}

// NewProvider creates an OpenAI provider. baseURL is optional and lets the
// provider talk to any OpenAI-compatible endpoint.
func NewProvider(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return NewProviderWithModel(llm), nil
}

// NewProviderWithModel wraps an existing langchaingo model
func NewProviderWithModel(llm llms.Model) *Provider {
	return &Provider{llm: llm}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Respond sends the system prompt and conversation to the model
func (p *Provider) Respond(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System(req)))
	for _, msg := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == string(models.RoleAssistant) {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := p.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai: empty response", domain.ErrUpstreamUnavailable)
	}

	text := resp.Choices[0].Content
	return &models.AIChatResponse{
		Message: text,
		Files:   prompt.ExtractFiles(text),
	}, nil
}
