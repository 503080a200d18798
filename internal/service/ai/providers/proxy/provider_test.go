package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
)

func newServer(t *testing.T, healthStatus int, chat http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(healthStatus)
	})
	mux.HandleFunc("POST /ai/chat", chat)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_Respond(t *testing.T) {
	var received models.AIChatRequest
	srv := newServer(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"готово","files":{"bot.py":"print(1)"}}`))
	})

	p, err := NewProvider(srv.URL+"/", srv.Client())
	require.NoError(t, err)

	req := &models.AIChatRequest{
		Messages:       []models.ConversationMessage{{Role: "user", Content: "привет"}},
		ProjectContext: map[string]string{"config.py": "X = 1"},
	}
	resp, err := p.Respond(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "готово", resp.Message)
	assert.Equal(t, map[string]string{"bot.py": "print(1)"}, resp.Files)
	assert.Equal(t, *req, received)
}

func TestProvider_MissingFilesIsEmptyPatch(t *testing.T) {
	srv := newServer(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	p, err := NewProvider(srv.URL, srv.Client())
	require.NoError(t, err)

	resp, err := p.Respond(context.Background(), &models.AIChatRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Files)
	assert.Empty(t, resp.Files)
}

func TestProvider_Failures(t *testing.T) {
	tests := []struct {
		name         string
		healthStatus int
		chat         http.HandlerFunc
	}{
		{
			name:         "unhealthy",
			healthStatus: http.StatusServiceUnavailable,
			chat: func(w http.ResponseWriter, r *http.Request) {
				t.Error("chat must not be called when health check fails")
			},
		},
		{
			name:         "error detail",
			healthStatus: http.StatusOK,
			chat: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"model overloaded"}`))
			},
		},
		{
			name:         "invalid json",
			healthStatus: http.StatusOK,
			chat: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
		{
			name:         "missing message",
			healthStatus: http.StatusOK,
			chat: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"files":{}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.healthStatus, tt.chat)
			p, err := NewProvider(srv.URL, srv.Client())
			require.NoError(t, err)

			_, err = p.Respond(context.Background(), &models.AIChatRequest{})
			assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		})
	}
}

func TestProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p, err := NewProvider(url, nil)
	require.NoError(t, err)

	_, err = p.Respond(context.Background(), &models.AIChatRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestNewProvider_RequiresURL(t *testing.T) {
	_, err := NewProvider("", nil)
	assert.Error(t, err)
}
