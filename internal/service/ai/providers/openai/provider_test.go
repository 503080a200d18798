package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
)

type fakeModel struct {
	reply    string
	err      error
	received []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.received = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestProvider_Respond(t *testing.T) {
	model := &fakeModel{reply: "Держите:\n```python\ndef main():\n    pass\n```"}
	p := NewProviderWithModel(model)

	resp, err := p.Respond(context.Background(), &models.AIChatRequest{
		Messages: []models.ConversationMessage{
			{Role: "user", Content: "сделай бота"},
			{Role: "assistant", Content: "какого?"},
			{Role: "user", Content: "эхо"},
		},
		ProjectContext: map[string]string{"bot.py": "x"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.reply, resp.Message)
	assert.Equal(t, map[string]string{"bot.py": "def main():\n    pass"}, resp.Files)

	require.Len(t, model.received, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.received[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.received[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.received[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.received[3].Role)
}

func TestProvider_Error(t *testing.T) {
	p := NewProviderWithModel(&fakeModel{err: errors.New("rate limited")})

	_, err := p.Respond(context.Background(), &models.AIChatRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider("", "gpt-4o", "")
	assert.Error(t, err)
}
