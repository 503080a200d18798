package rules

import (
	"context"

	"telebot/internal/domain/models"
)

// Responder answers from the rule set. It never fails and never calls out.
type Responder struct {
	set *Set
}

// NewResponder creates a responder over the given rule set
func NewResponder(set *Set) *Responder {
	return &Responder{set: set}
}

// Name returns the strategy name
func (r *Responder) Name() string {
	return "rules"
}

// Respond matches the latest user message against the rules
func (r *Responder) Respond(_ context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	message := req.LastUserMessage()

	if rule := r.set.Match(message); rule != nil {
		return &models.AIChatResponse{
			Message: rule.Reply,
			Files:   rule.RuleFiles(),
		}, nil
	}

	return &models.AIChatResponse{
		Message: r.set.Generic(message),
		Files:   map[string]string{},
	}, nil
}
