package services

import (
	"context"

	"telebot/internal/domain/models"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Files       map[string]string `json:"files"`
}

// UpdateProjectRequest represents a partial update. Nil fields are left untouched;
// ClearDescription sets the description to null.
type UpdateProjectRequest struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Files            map[string]string
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	GetProject(ctx context.Context, id string) (*models.Project, error)

	ListProjects(ctx context.Context) ([]models.Project, error)

	// UpdateProject replaces any supplied fields; files are replaced wholesale
	UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*models.Project, error)

	// DeleteProject returns domain.ErrNotFound if the project did not exist
	DeleteProject(ctx context.Context, id string) error

	// ListFiles returns the project's files sorted by name with detected types
	ListFiles(ctx context.Context, id string) ([]models.ProjectFile, error)

	// ApplyFilePatch merges files over the project's existing mapping
	ApplyFilePatch(ctx context.Context, id string, files map[string]string) (*models.Project, error)
}
