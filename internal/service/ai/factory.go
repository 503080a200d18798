package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"telebot/internal/config"
	"telebot/internal/domain/services"
	"telebot/internal/service/ai/providers/anthropic"
	"telebot/internal/service/ai/providers/gemini"
	"telebot/internal/service/ai/providers/openai"
	"telebot/internal/service/ai/providers/proxy"
	"telebot/internal/service/ai/rules"
)

// errNotConfigured marks a provider whose credential is absent
var errNotConfigured = errors.New("provider not configured")

// ProviderFactory creates delegate providers from configuration
type ProviderFactory struct {
	config     *config.Config
	httpClient *http.Client
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "proxy" - external AI service (AI_PROXY_URL)
//   - "openai" - OpenAI or compatible models (OPENAI_API_KEY)
//   - "anthropic" - Claude models via Anthropic API (ANTHROPIC_API_KEY)
//   - "gemini" - Google Gemini models (GEMINI_API_KEY)
func (f *ProviderFactory) GetProvider(ctx context.Context, providerName string) (services.Responder, error) {
	switch providerName {
	case "proxy":
		if f.config.AIProxyURL == "" {
			return nil, errNotConfigured
		}
		return proxy.NewProvider(f.config.AIProxyURL, f.httpClient)

	case "openai":
		if f.config.OpenAIAPIKey == "" {
			return nil, errNotConfigured
		}
		return openai.NewProvider(f.config.OpenAIAPIKey, f.config.OpenAIModel, f.config.OpenAIBaseURL)

	case "anthropic":
		if f.config.AnthropicAPIKey == "" {
			return nil, errNotConfigured
		}
		return anthropic.NewProvider(f.config.AnthropicAPIKey, f.config.AnthropicModel)

	case "gemini":
		if f.config.GeminiAPIKey == "" {
			return nil, errNotConfigured
		}
		return gemini.NewProvider(ctx, f.config.GeminiAPIKey, f.config.GeminiModel, gemini.Options{HTTPClient: f.httpClient})

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// Delegates builds every configured provider in AI_PROVIDERS order.
// Providers without credentials are skipped; construction errors are logged and skipped.
func (f *ProviderFactory) Delegates(ctx context.Context, logger *slog.Logger) []services.Responder {
	delegates := make([]services.Responder, 0, len(f.config.AIProviders))
	for _, name := range f.config.AIProviders {
		provider, err := f.GetProvider(ctx, name)
		if errors.Is(err, errNotConfigured) {
			logger.Debug("ai provider not configured", "provider", name)
			continue
		}
		if err != nil {
			logger.Warn("ai provider unavailable", "provider", name, "error", err)
			continue
		}
		delegates = append(delegates, provider)
	}
	return delegates
}

// LoadRules loads the rule set from AI_RULES_FILE, or the built-in one
func LoadRules(cfg *config.Config) (*rules.Set, error) {
	if cfg.AIRulesFile != "" {
		set, err := rules.LoadFile(cfg.AIRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules from %s: %w", cfg.AIRulesFile, err)
		}
		return set, nil
	}
	return rules.LoadDefault()
}

// NewResolverFromConfig wires configured providers and the rule fallback into a resolver
func NewResolverFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Resolver, error) {
	set, err := LoadRules(cfg)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(&ResolverConfig{
		Delegates:       NewProviderFactory(cfg).Delegates(ctx, logger),
		Fallback:        rules.NewResponder(set),
		ProviderTimeout: cfg.ProviderTimeout,
		Deadline:        cfg.ResponseDeadline,
		Logger:          logger,
	})

	logger.Info("ai resolver configured",
		"strategies", resolver.Strategies(),
		"rules", len(set.Rules),
	)
	return resolver, nil
}
