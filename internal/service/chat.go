package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"telebot/internal/config"
	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/repositories"
	"telebot/internal/domain/services"
)

// chatService implements the ChatService interface
type chatService struct {
	messageRepo    repositories.MessageRepository
	projectRepo    repositories.ProjectRepository
	projectService services.ProjectService
	resolver       services.AIResolver
	patchMode      string
	logger         *slog.Logger
}

// NewChatService creates a new chat service.
// patchMode is config.PatchModeAdvisory or config.PatchModeApply.
func NewChatService(
	messageRepo repositories.MessageRepository,
	projectRepo repositories.ProjectRepository,
	projectService services.ProjectService,
	resolver services.AIResolver,
	patchMode string,
	logger *slog.Logger,
) services.ChatService {
	return &chatService{
		messageRepo:    messageRepo,
		projectRepo:    projectRepo,
		projectService: projectService,
		resolver:       resolver,
		patchMode:      patchMode,
		logger:         logger,
	}
}

// ListMessages returns the project's messages, oldest first.
// Unknown projects simply have no messages.
func (s *chatService) ListMessages(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	return s.messageRepo.ListByProject(ctx, projectID)
}

// CreateMessage appends a single message. The project's existence is not checked.
func (s *chatService) CreateMessage(ctx context.Context, projectID string, req *services.CreateMessageRequest) (*models.ChatMessage, error) {
	if err := validateCreateMessage(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.persist(ctx, projectID, models.Role(req.Role), req.Content)
}

// ClearMessages deletes every message of the project
func (s *chatService) ClearMessages(ctx context.Context, projectID string) error {
	if _, err := s.messageRepo.DeleteByProject(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("messages cleared", "project_id", projectID)
	return nil
}

// SendMessage runs a full chat turn: persist user message, resolve, persist reply.
func (s *chatService) SendMessage(ctx context.Context, projectID string, req *services.SendMessageRequest) (*services.SendMessageResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content,
			validation.Required,
			validation.RuneLength(1, config.MaxMessageContentLength),
			validation.By(validateNotBlank),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.persist(ctx, projectID, models.RoleUser, req.Content)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp, err := s.resolver.Resolve(ctx, &models.AIChatRequest{
		Messages:       models.ConversationFromMessages(history),
		ProjectContext: project.Files,
	})
	if err != nil {
		// The user message stays persisted without a reply
		s.logger.Error("chat turn failed after user message was saved",
			"project_id", projectID,
			"message_id", userMsg.ID,
			"error", err,
		)
		return nil, err
	}

	assistantMsg, err := s.persist(ctx, projectID, models.RoleAssistant, resp.Message)
	if err != nil {
		return nil, err
	}

	result := &services.SendMessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Files:            resp.Files,
	}
	if result.Files == nil {
		result.Files = map[string]string{}
	}

	if s.patchMode == config.PatchModeApply && len(result.Files) > 0 {
		// A rejected patch is still returned to the client as advisory
		if _, err := s.projectService.ApplyFilePatch(ctx, projectID, result.Files); err != nil {
			s.logger.Warn("file patch not applied",
				"project_id", projectID,
				"error", err,
			)
		} else {
			result.Applied = true
		}
	}

	return result, nil
}

func (s *chatService) persist(ctx context.Context, projectID string, role models.Role, content string) (*models.ChatMessage, error) {
	pid := projectID
	msg := &models.ChatMessage{
		ProjectID: &pid,
		Role:      role,
		Content:   content,
	}
	if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("message created",
		"id", msg.ID,
		"project_id", projectID,
		"role", role,
	)
	return msg, nil
}

func validateCreateMessage(req *services.CreateMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Role,
			validation.Required,
			validation.In(string(models.RoleUser), string(models.RoleAssistant)),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.RuneLength(1, config.MaxMessageContentLength),
			validation.By(validateNotBlank),
		),
	)
}
