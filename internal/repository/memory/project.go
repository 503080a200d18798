package memory

import (
	"context"
	"maps"
	"sort"

	"github.com/google/uuid"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
)

// Create stores a new project with a fresh ID and timestamps
func (s *Store) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tick()
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Files == nil {
		project.Files = map[string]string{}
	}

	s.projects[project.ID] = project.Clone()
	return nil
}

// Get retrieves a copy of a project by ID
func (s *Store) Get(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, domain.NotFoundf("project not found: %s", id)
	}
	return project.Clone(), nil
}

// List returns copies of all projects, oldest first
func (s *Store) List(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	projects := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, *p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

// Update shallow-merges the supplied fields over the stored project
func (s *Store) Update(ctx context.Context, id string, update *models.ProjectUpdate) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[id]
	if !ok {
		return nil, domain.NotFoundf("project not found: %s", id)
	}

	updated := existing.Clone()
	if update.Name != nil {
		updated.Name = *update.Name
	}
	switch {
	case update.ClearDescription:
		updated.Description = nil
	case update.Description != nil:
		desc := *update.Description
		updated.Description = &desc
	}
	if update.Files != nil {
		updated.Files = maps.Clone(update.Files)
	}
	updated.UpdatedAt = s.tick()

	s.projects[id] = updated
	return updated.Clone(), nil
}

// Delete removes a project; its messages are kept
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}
