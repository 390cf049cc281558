package models

import (
	"time"
)

// ConvertOperation represents a conversion request assembled by the CLI
type ConvertOperation struct {
	ID             string
	Files          []BatchFile
	DestDir        string
	ValidateOutput bool  // Re-check every converted file against its source
	MaxFiles       int   // 0 = unlimited
	MaxFileSize    int64 // bytes, 0 = unlimited
	SampleSize     int
	CreatedAt      time.Time
}

// Validate checks if the operation configuration is valid
func (op *ConvertOperation) Validate() error {
	if len(op.Files) == 0 {
		return &ValidationError{Field: "Files", Message: "at least one file is required"}
	}
	if op.DestDir == "" {
		return &ValidationError{Field: "DestDir", Message: "destination directory is required"}
	}
	if op.MaxFiles > 0 && len(op.Files) > op.MaxFiles {
		return &ValidationError{Field: "Files", Message: "too many files in one batch"}
	}
	if op.SampleSize < 64 {
		return &ValidationError{Field: "SampleSize", Message: "sample size must be at least 64 bytes"}
	}
	seen := make(map[string]bool, len(op.Files))
	for _, f := range op.Files {
		if f.ID == "" || f.SourcePath == "" {
			return &ValidationError{Field: "Files", Message: "every file needs an id and a source path"}
		}
		if seen[f.ID] {
			return &ValidationError{Field: "Files", Message: "duplicate file id " + f.ID}
		}
		seen[f.ID] = true
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
