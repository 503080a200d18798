package models

import (
	"maps"
	"path"
	"sort"
	"strings"
	"time"
)

// DefaultProjectID is the id of the project seeded at process start
const DefaultProjectID = "default-project"

// Project is a named bot-code workspace: a flat filename→content map plus metadata
type Project struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Files       map[string]string `json:"files"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy so callers can't mutate stored state
func (p *Project) Clone() *Project {
	c := *p
	if p.Description != nil {
		desc := *p.Description
		c.Description = &desc
	}
	c.Files = maps.Clone(p.Files)
	if c.Files == nil {
		c.Files = map[string]string{}
	}
	return &c
}

// ProjectUpdate carries the fields of a partial update.
// Nil pointers and a nil Files map leave the stored value untouched.
type ProjectUpdate struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Files            map[string]string
}

// FileType classifies a project file for the editor's language mode
type FileType string

const (
	FileTypePython   FileType = "python"
	FileTypeText     FileType = "text"
	FileTypeMarkdown FileType = "markdown"
	FileTypeJSON     FileType = "json"
	FileTypeYAML     FileType = "yaml"
)

// ProjectFile is a single file of a project with its detected type
type ProjectFile struct {
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Type    FileType `json:"type"`
}

// DetectFileType maps a filename extension to a FileType
func DetectFileType(name string) FileType {
	switch strings.ToLower(path.Ext(name)) {
	case ".py":
		return FileTypePython
	case ".md", ".markdown":
		return FileTypeMarkdown
	case ".json":
		return FileTypeJSON
	case ".yml", ".yaml":
		return FileTypeYAML
	default:
		return FileTypeText
	}
}

// SortedFiles returns the project's files ordered by name
func (p *Project) SortedFiles() []ProjectFile {
	names := make([]string, 0, len(p.Files))
	for name := range p.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]ProjectFile, 0, len(names))
	for _, name := range names {
		files = append(files, ProjectFile{
			Name:    name,
			Content: p.Files[name],
			Type:    DetectFileType(name),
		})
	}
	return files
}
