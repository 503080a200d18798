package services

import (
	"context"

	"telebot/internal/domain/models"
)

// Archive is an exported project ready for download
type Archive struct {
	Filename string
	Data     []byte
}

// Import modes
const (
	ImportModeMerge   = "merge"
	ImportModeReplace = "replace"
)

// ImportResult summarizes a zip import
type ImportResult struct {
	Project  *models.Project `json:"project"`
	Imported []string        `json:"imported"`
	Skipped  []string        `json:"skipped"`
}

// ArchiveService converts between projects and zip archives
type ArchiveService interface {
	// Export packs the project's files into a zip with every entry at the root
	Export(ctx context.Context, projectID string) (*Archive, error)

	// Import reads text files from a zip and merges (or replaces) the project's files
	Import(ctx context.Context, projectID string, data []byte, mode string) (*ImportResult, error)
}
