package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"telebot/internal/config"
)

// validateNotBlank rejects strings that are empty after trimming. Nil pointers pass.
func validateNotBlank(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	name, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

// validateFiles checks a filename→content map against the flat namespace rules
func validateFiles(value interface{}) error {
	files, ok := value.(map[string]string)
	if !ok {
		return errors.New("must be a map of filename to content")
	}
	if len(files) > config.MaxFilesPerProject {
		return fmt.Errorf("must contain at most %d files", config.MaxFilesPerProject)
	}
	for name := range files {
		if err := ValidateFilename(name); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	return nil
}

// ValidateFilename enforces the flat namespace: no separators, no dot entries
func ValidateFilename(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, config.MaxFilenameLength),
		validation.By(func(interface{}) error {
			if strings.ContainsAny(name, "/\\") {
				return errors.New("must not contain path separators")
			}
			if name == "." || name == ".." {
				return errors.New("is not a valid filename")
			}
			return nil
		}),
	)
}
