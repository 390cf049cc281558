package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrFileTooLarge is returned by ReadFile when a file exceeds the limit
var ErrFileTooLarge = errors.New("file too large")

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Backend defines where source bytes are read from and converted bytes
// are written to. Implementations include the local filesystem and an
// in-memory filesystem for tests.
type Backend interface {
	// List returns all files under the specified directory recursively
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadFile reads a whole file; limit > 0 rejects larger files with ErrFileTooLarge
	ReadFile(ctx context.Context, path string, limit int64) ([]byte, error)

	// Write creates or replaces a file. The content becomes visible
	// under path only once fully written.
	Write(ctx context.Context, path string, data []byte) error

	// Remove deletes a file; a missing file is not an error
	Remove(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
