package repositories

import (
	"context"

	"telebot/internal/domain/models"
)

// MessageRepository defines data access operations for chat messages
type MessageRepository interface {
	// ListByProject returns the project's messages ordered by created_at ascending
	ListByProject(ctx context.Context, projectID string) ([]models.ChatMessage, error)

	// CreateMessage assigns an ID and created_at and stores the message
	CreateMessage(ctx context.Context, message *models.ChatMessage) error

	// DeleteByProject removes every message of the project. Always succeeds,
	// even if the project never had messages.
	DeleteByProject(ctx context.Context, projectID string) (bool, error)
}
