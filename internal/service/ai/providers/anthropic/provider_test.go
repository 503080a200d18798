package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
)

func TestProvider_Respond(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Конфиг:\n` + "```python\\nBOT_TOKEN = ''\\n```" + `"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", "claude-sonnet-4-5",
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)

	resp, err := p.Respond(context.Background(), &models.AIChatRequest{
		Messages: []models.ConversationMessage{{Role: "user", Content: "дай конфиг"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Конфиг:\n```python\nBOT_TOKEN = ''\n```", resp.Message)
	assert.Equal(t, map[string]string{"config.py": "BOT_TOKEN = ''"}, resp.Files)
	assert.Equal(t, "claude-sonnet-4-5", received["model"])
	assert.NotEmpty(t, received["system"])
}

func TestProvider_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider("bad-key", "claude-sonnet-4-5",
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)

	_, err = p.Respond(context.Background(), &models.AIChatRequest{
		Messages: []models.ConversationMessage{{Role: "user", Content: "привет"}},
	})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestProvider_EmptyConversation(t *testing.T) {
	p, err := NewProvider("test-key", "claude-sonnet-4-5")
	require.NoError(t, err)

	_, err = p.Respond(context.Background(), &models.AIChatRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
