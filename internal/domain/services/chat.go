package services

import (
	"context"

	"telebot/internal/domain/models"
)

// CreateMessageRequest represents a request to append one message to a project
type CreateMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SendMessageRequest is a user turn that should be answered by the AI resolver
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResult is the outcome of a compound chat turn.
// Files is the resolver's file patch; Applied reports whether it was merged
// into the project server-side.
type SendMessageResult struct {
	UserMessage      *models.ChatMessage `json:"user_message"`
	AssistantMessage *models.ChatMessage `json:"assistant_message"`
	Files            map[string]string   `json:"files"`
	Applied          bool                `json:"applied"`
}

// ChatService manages a project's conversation
type ChatService interface {
	ListMessages(ctx context.Context, projectID string) ([]models.ChatMessage, error)

	CreateMessage(ctx context.Context, projectID string, req *CreateMessageRequest) (*models.ChatMessage, error)

	ClearMessages(ctx context.Context, projectID string) error

	// SendMessage persists the user message, resolves a reply with the full
	// history and the project's files, then persists the assistant message.
	// If resolution fails the user message stays persisted.
	SendMessage(ctx context.Context, projectID string, req *SendMessageRequest) (*SendMessageResult, error)
}
