package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telebot/internal/config"
	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/services"
	"telebot/internal/service/ai/rules"
)

type stubResponder struct {
	name  string
	resp  *models.AIChatResponse
	err   error
	delay time.Duration
	// ignoreCtx makes the stub block past cancellation
	ignoreCtx bool
	calls     int
}

func (s *stubResponder) Name() string { return s.name }

func (s *stubResponder) Respond(ctx context.Context, _ *models.AIChatRequest) (*models.AIChatResponse, error) {
	s.calls++
	if s.delay > 0 {
		if s.ignoreCtx {
			time.Sleep(s.delay)
		} else {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return s.resp, s.err
}

type panicResponder struct{}

func (panicResponder) Name() string { return "panicky" }

func (panicResponder) Respond(context.Context, *models.AIChatRequest) (*models.AIChatResponse, error) {
	panic("boom")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func request(content string) *models.AIChatRequest {
	return &models.AIChatRequest{Messages: []models.ConversationMessage{{Role: "user", Content: content}}}
}

func ruleFallback(t *testing.T) services.Responder {
	t.Helper()
	set, err := rules.LoadDefault()
	require.NoError(t, err)
	return rules.NewResponder(set)
}

func TestResolver_FirstSuccessfulDelegateWins(t *testing.T) {
	failing := &stubResponder{name: "proxy", err: errors.New("connection refused")}
	working := &stubResponder{name: "openai", resp: &models.AIChatResponse{Message: "from openai"}}
	unused := &stubResponder{name: "anthropic", resp: &models.AIChatResponse{Message: "from anthropic"}}

	r := NewResolver(&ResolverConfig{
		Delegates:       []services.Responder{failing, working, unused},
		Fallback:        ruleFallback(t),
		ProviderTimeout: time.Second,
		Deadline:        5 * time.Second,
		Logger:          discardLogger(),
	})

	resp, err := r.Resolve(context.Background(), request("привет"))
	require.NoError(t, err)
	assert.Equal(t, "from openai", resp.Message)
	assert.NotNil(t, resp.Files)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 0, unused.calls)
}

func TestResolver_FallsBackToRules(t *testing.T) {
	r := NewResolver(&ResolverConfig{
		Delegates: []services.Responder{
			&stubResponder{name: "proxy", err: errors.New("unreachable")},
			&stubResponder{name: "openai", resp: nil},
			panicResponder{},
		},
		Fallback:        ruleFallback(t),
		ProviderTimeout: time.Second,
		Deadline:        5 * time.Second,
		Logger:          discardLogger(),
	})

	resp, err := r.Resolve(context.Background(), request("Создай бота с командами /start"))
	require.NoError(t, err)
	assert.Contains(t, resp.Files, "bot.py")
	assert.Contains(t, resp.Files, "requirements.txt")
}

func TestResolver_NoDelegatesUsesRules(t *testing.T) {
	r := NewResolver(&ResolverConfig{Fallback: ruleFallback(t), Logger: discardLogger()})

	resp, err := r.Resolve(context.Background(), request("what is the weather"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, map[string]string{}, resp.Files)
}

func TestResolver_ProviderTimeout(t *testing.T) {
	slow := &stubResponder{
		name:      "slow",
		resp:      &models.AIChatResponse{Message: "too late"},
		delay:     500 * time.Millisecond,
		ignoreCtx: true,
	}

	r := NewResolver(&ResolverConfig{
		Delegates:       []services.Responder{slow},
		Fallback:        ruleFallback(t),
		ProviderTimeout: 20 * time.Millisecond,
		Deadline:        5 * time.Second,
		Logger:          discardLogger(),
	})

	start := time.Now()
	resp, err := r.Resolve(context.Background(), request("Добавь кнопки"))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Contains(t, resp.Files, "bot_with_keyboard.py")
}

func TestResolver_DeadlineSkipsRemainingDelegates(t *testing.T) {
	slow := &stubResponder{name: "slow", delay: time.Second, resp: &models.AIChatResponse{Message: "late"}}
	never := &stubResponder{name: "never", resp: &models.AIChatResponse{Message: "never"}}

	r := NewResolver(&ResolverConfig{
		Delegates:       []services.Responder{slow, never},
		Fallback:        ruleFallback(t),
		ProviderTimeout: time.Second,
		Deadline:        30 * time.Millisecond,
		Logger:          discardLogger(),
	})

	resp, err := r.Resolve(context.Background(), request("Добавь базу данных"))
	require.NoError(t, err)
	assert.Contains(t, resp.Files, "database.py")
	assert.Equal(t, 0, never.calls)
}

func TestResolver_AllStrategiesFail(t *testing.T) {
	r := NewResolver(&ResolverConfig{
		Delegates:       []services.Responder{&stubResponder{name: "proxy", err: errors.New("down")}},
		Fallback:        &stubResponder{name: "rules", err: errors.New("broken rules")},
		ProviderTimeout: time.Second,
		Deadline:        time.Second,
		Logger:          discardLogger(),
	})

	_, err := r.Resolve(context.Background(), request("привет"))
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestResolver_Strategies(t *testing.T) {
	r := NewResolver(&ResolverConfig{
		Delegates: []services.Responder{&stubResponder{name: "proxy"}, &stubResponder{name: "gemini"}},
		Fallback:  ruleFallback(t),
	})
	assert.Equal(t, []string{"proxy", "gemini", "rules"}, r.Strategies())
}

func TestNewResolverFromConfig_SkipsUnconfiguredProviders(t *testing.T) {
	cfg := &config.Config{
		AIProviders:      []string{"proxy", "openai", "anthropic", "gemini", "unknown"},
		ProviderTimeout:  time.Second,
		ResponseDeadline: time.Second,
	}

	r, err := NewResolverFromConfig(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"rules"}, r.Strategies())
}

func TestNewResolverFromConfig_ProviderOrder(t *testing.T) {
	cfg := &config.Config{
		AIProviders:     []string{"anthropic", "proxy"},
		AIProxyURL:      "http://localhost:8000",
		AnthropicAPIKey: "test-key",
		AnthropicModel:  "claude-haiku-4-5",
	}

	r, err := NewResolverFromConfig(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "proxy", "rules"}, r.Strategies())
}

func TestNewResolverFromConfig_BadRulesFile(t *testing.T) {
	cfg := &config.Config{AIRulesFile: t.TempDir() + "/missing.yaml"}

	_, err := NewResolverFromConfig(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}
