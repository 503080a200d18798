// Package anthropic answers chat turns with Claude models.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/service/ai/prompt"
)

const (
	maxTokens   = 4000
	temperature = 0.7
)

// Provider calls the Anthropic Messages API.
type Provider struct {
	client *anthropic.Client
	model  string
}

// NewProvider creates a new Anthropic provider with the given API key.
// Extra request options are passed to the client (base URL, HTTP client).
func NewProvider(apiKey, model string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// Respond sends the conversation to Claude and concatenates the text blocks of the reply
func (p *Provider) Respond(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	messages := convertMessages(req.Messages)
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: anthropic: conversation has no messages", domain.ErrUpstreamUnavailable)
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: prompt.System(req)}},
		Messages:    messages,
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %v", domain.ErrUpstreamUnavailable, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	reply := text.String()
	return &models.AIChatResponse{
		Message: reply,
		Files:   prompt.ExtractFiles(reply),
	}, nil
}

// convertMessages maps the conversation to Anthropic turns
func convertMessages(conversation []models.ConversationMessage) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(conversation))
	for _, msg := range conversation {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == string(models.RoleAssistant) {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}
