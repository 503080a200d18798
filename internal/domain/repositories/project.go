package repositories

import (
	"context"

	"telebot/internal/domain/models"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create assigns a fresh ID and timestamps; a nil Files map becomes empty
	Create(ctx context.Context, project *models.Project) error

	// Get retrieves a project by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*models.Project, error)

	// List retrieves all projects, oldest first
	List(ctx context.Context) ([]models.Project, error)

	// Update shallow-merges the supplied fields and refreshes updated_at.
	// ID and created_at never change. Returns domain.ErrNotFound if missing.
	Update(ctx context.Context, id string, update *models.ProjectUpdate) (*models.Project, error)

	// Delete removes the project, reporting whether it existed.
	// Messages of the project are left in place.
	Delete(ctx context.Context, id string) (bool, error)
}
