package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"telebot/internal/config"
	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/repositories"
	"telebot/internal/domain/services"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateProject creates a new project
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project := &models.Project{
		Name:  strings.TrimSpace(req.Name),
		Files: maps.Clone(req.Files),
	}
	// An empty description is stored as null
	if req.Description != nil && *req.Description != "" {
		desc := *req.Description
		project.Description = &desc
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"files", len(project.Files),
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.projectRepo.Get(ctx, id)
}

// ListProjects retrieves all projects
func (s *projectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projectRepo.List(ctx)
}

// UpdateProject applies a partial update
func (s *projectService) UpdateProject(ctx context.Context, id string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	update := &models.ProjectUpdate{
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		Files:            req.Files,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}

	project, err := s.projectRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"name", project.Name,
		"files_replaced", req.Files != nil,
	)

	return project, nil
}

// DeleteProject deletes a project. Its messages are not touched.
func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	deleted, err := s.projectRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NotFoundf("project not found: %s", id)
	}

	s.logger.Info("project deleted", "id", id)
	return nil
}

// ListFiles returns the project's files with detected types
func (s *projectService) ListFiles(ctx context.Context, id string) ([]models.ProjectFile, error) {
	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return project.SortedFiles(), nil
}

// ApplyFilePatch merges files over the existing mapping.
// The read-merge-write is not atomic: a concurrent update may be overwritten.
func (s *projectService) ApplyFilePatch(ctx context.Context, id string, files map[string]string) (*models.Project, error) {
	if err := validation.Validate(files, validation.Required, validation.By(validateFiles)); err != nil {
		return nil, fmt.Errorf("%w: files: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := project.Files
	maps.Copy(merged, files)
	if len(merged) > config.MaxFilesPerProject {
		return nil, fmt.Errorf("%w: files: must contain at most %d files", domain.ErrValidation, config.MaxFilesPerProject)
	}

	updated, err := s.projectRepo.Update(ctx, id, &models.ProjectUpdate{Files: merged})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file patch applied",
		"id", id,
		"patched", len(files),
		"total", len(updated.Files),
	)

	return updated, nil
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxProjectNameLength),
			validation.By(validateNotBlank),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
		validation.Field(&req.Files, validation.By(validateFiles)),
	)
}

// validateUpdateRequest validates an update project request
func (s *projectService) validateUpdateRequest(req *services.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxProjectNameLength),
			validation.By(validateNotBlank),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
		validation.Field(&req.Files, validation.By(validateFiles)),
	)
}
