package services

import (
	"context"

	"telebot/internal/domain/models"
)

// Responder is one AI resolution strategy. Delegated providers and the
// rule-based fallback implement it with identical response shapes.
type Responder interface {
	// Name returns the strategy name (e.g. "openai", "rules")
	Name() string

	// Respond produces a reply and an optional file patch for the conversation
	Respond(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error)
}

// AIResolver resolves a conversation into a reply, trying strategies in order.
// Returns domain.ErrServiceUnavailable only when every strategy failed.
type AIResolver interface {
	Resolve(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error)

	// Strategies lists the configured strategy names in evaluation order
	Strategies() []string
}
