package convert

import (
	"errors"
)

var (
	// ErrNoFiles is returned when a batch is submitted without files
	ErrNoFiles = errors.New("no files to convert")

	// ErrMissingPath is returned when a registered file has no source path
	ErrMissingPath = errors.New("file has no source path")
)
