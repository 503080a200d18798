package memory

import (
	"embed"
	"fmt"
	"io/fs"

	"telebot/internal/domain/models"
)

//go:embed seed/*
var seedFiles embed.FS

const (
	defaultProjectName        = "my-telegram-bot"
	defaultProjectDescription = "Мой первый Telegram-бот"
)

// Init seeds the default project with a starter bot file set.
// Calling it again leaves an existing default project untouched.
func (s *Store) Init() error {
	files, err := loadSeedFiles()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[models.DefaultProjectID]; exists {
		return nil
	}

	desc := defaultProjectDescription
	now := s.tick()
	s.projects[models.DefaultProjectID] = &models.Project{
		ID:          models.DefaultProjectID,
		Name:        defaultProjectName,
		Description: &desc,
		Files:       files,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.logger.Info("default project seeded",
		"id", models.DefaultProjectID,
		"files", len(files),
	)
	return nil
}

func loadSeedFiles() (map[string]string, error) {
	entries, err := fs.ReadDir(seedFiles, "seed")
	if err != nil {
		return nil, fmt.Errorf("read seed directory: %w", err)
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := seedFiles.ReadFile("seed/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", entry.Name(), err)
		}
		files[entry.Name()] = string(data)
	}
	return files, nil
}
