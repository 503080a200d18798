package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"telebot/internal/config"
	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/repositories"
	"telebot/internal/domain/services"
	"telebot/internal/utils"
)

// archiveService implements the ArchiveService interface
type archiveService struct {
	projectRepo repositories.ProjectRepository
	logger      *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(projectRepo repositories.ProjectRepository, logger *slog.Logger) services.ArchiveService {
	return &archiveService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Export packs the project's files. Read-only.
func (s *archiveService) Export(ctx context.Context, projectID string) (*services.Archive, error) {
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	buf, err := utils.CreateZipFromFiles(project.Files)
	if err != nil {
		return nil, fmt.Errorf("export project %s: %w", projectID, err)
	}

	s.logger.Info("project exported",
		"id", projectID,
		"files", len(project.Files),
		"bytes", buf.Len(),
	)

	return &services.Archive{
		Filename: project.Name + ".zip",
		Data:     buf.Bytes(),
	}, nil
}

// Import reads a zip and merges or replaces the project's files
func (s *archiveService) Import(ctx context.Context, projectID string, data []byte, mode string) (*services.ImportResult, error) {
	if mode == "" {
		mode = services.ImportModeMerge
	}
	if err := validation.Validate(mode, validation.In(services.ImportModeMerge, services.ImportModeReplace)); err != nil {
		return nil, fmt.Errorf("%w: mode: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	read, err := utils.ReadZipFiles(data, config.MaxImportEntryBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	imported := make([]string, 0, len(read.Files))
	skipped := append([]string{}, read.Skipped...)
	accepted := make(map[string]string, len(read.Files))
	for name, content := range read.Files {
		if err := ValidateFilename(name); err != nil {
			skipped = append(skipped, name)
			continue
		}
		accepted[name] = content
		imported = append(imported, name)
	}

	sort.Strings(imported)

	files := accepted
	if mode == services.ImportModeMerge {
		files = project.Files
		maps.Copy(files, accepted)
	}
	if err := validateFiles(files); err != nil {
		return nil, fmt.Errorf("%w: files: %v", domain.ErrValidation, err)
	}

	updated, err := s.projectRepo.Update(ctx, projectID, &models.ProjectUpdate{Files: files})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project imported",
		"id", projectID,
		"mode", mode,
		"imported", len(imported),
		"skipped", len(skipped),
	)

	return &services.ImportResult{
		Project:  updated,
		Imported: imported,
		Skipped:  skipped,
	}, nil
}
