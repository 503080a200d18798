// Package gemini answers chat turns with Google Gemini models.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/service/ai/prompt"
)

const (
	maxTokens   = 4000
	temperature = 0.7
)

// Provider calls the Gemini API
type Provider struct {
	client *genai.Client
	model  string
}

// Options tunes the underlying client. Zero values use genai defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewProvider creates a Gemini provider
func NewProvider(ctx context.Context, apiKey, model string, opts Options) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// Respond sends the conversation with the system prompt as the system instruction
func (p *Provider) Respond(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	contents := convertHistory(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: gemini: conversation has no messages", domain.ErrUpstreamUnavailable)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System(req)}},
		},
		MaxOutputTokens: maxTokens,
		Temperature:     genai.Ptr[float32](temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrUpstreamUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini: empty response", domain.ErrUpstreamUnavailable)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	reply := text.String()
	return &models.AIChatResponse{
		Message: reply,
		Files:   prompt.ExtractFiles(reply),
	}, nil
}

// convertHistory maps the conversation to Gemini contents. Assistant turns use the model role.
func convertHistory(conversation []models.ConversationMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conversation))
	for _, msg := range conversation {
		role := genai.RoleUser
		if msg.Role == string(models.RoleAssistant) {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents
}
