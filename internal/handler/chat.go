package handler

import (
	"log/slog"
	"net/http"

	"telebot/internal/domain/services"
	"telebot/internal/httputil"
)

// ChatHandler handles a project's conversation
// Handlers only talk to services, never to repositories
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// ListMessages returns the project's messages, oldest first
// GET /api/projects/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// CreateMessage appends one message to the conversation
// POST /api/projects/{id}/messages
func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req services.CreateMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	msg, err := h.chatService.CreateMessage(r.Context(), projectID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, msg)
}

// ClearMessages deletes the project's conversation
// DELETE /api/projects/{id}/messages
func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	if err := h.chatService.ClearMessages(r.Context(), projectID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendMessage runs a full chat turn against the AI resolver
// POST /api/projects/{id}/chat
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), projectID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
