package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"telebot/internal/config"
	"telebot/internal/domain/models"
	"telebot/internal/domain/services"
	"telebot/internal/httputil"
)

// AIHandler exposes the resolver as a stateless chat endpoint
type AIHandler struct {
	resolver services.AIResolver
	logger   *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(resolver services.AIResolver, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Chat answers a conversation without touching any project
// POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.AIChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		respondBadBody(w, err)
		return
	}

	if err := validateAIChatRequest(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.resolver.Resolve(r.Context(), &req)
	if err != nil {
		h.logger.Error("ai chat failed",
			"request_id", httputil.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError,
			fmt.Sprintf("AI service error: %v", err),
			map[string]interface{}{"strategies": h.resolver.Strategies()},
		)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

func validateAIChatRequest(req *models.AIChatRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Messages, validation.NotNil, validation.Length(0, config.MaxConversationMessages)),
		validation.Field(&req.ProjectContext, validation.Length(0, config.MaxFilesPerProject)),
	); err != nil {
		return err
	}

	for i := range req.Messages {
		msg := &req.Messages[i]
		if err := validation.ValidateStruct(msg,
			validation.Field(&msg.Role,
				validation.Required,
				validation.In(string(models.RoleUser), string(models.RoleAssistant)),
			),
			validation.Field(&msg.Content, validation.RuneLength(0, config.MaxMessageContentLength)),
		); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	return nil
}
