package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is a Backend over an afero filesystem
type FS struct {
	fs       afero.Fs
	rootPath string // empty means paths are used as given
}

// NewLocal creates a backend rooted at an existing local directory.
// Paths passed to its methods are relative to rootPath.
func NewLocal(rootPath string) (*FS, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &FS{fs: afero.NewOsFs(), rootPath: absPath}, nil
}

// NewOS creates an unrooted local backend; paths are used as given
func NewOS() *FS {
	return &FS{fs: afero.NewOsFs()}
}

// NewMemory creates an in-memory backend
func NewMemory() *FS {
	return &FS{fs: afero.NewMemMapFs()}
}

// NewFromFs wraps an existing afero filesystem
func NewFromFs(fs afero.Fs, rootPath string) *FS {
	return &FS{fs: fs, rootPath: rootPath}
}

// Fs exposes the underlying afero filesystem
func (b *FS) Fs() afero.Fs {
	return b.fs
}

func (b *FS) resolve(path string) string {
	if b.rootPath == "" {
		return path
	}
	return filepath.Join(b.rootPath, path)
}

// List returns all files and directories under path recursively
func (b *FS) List(ctx context.Context, path string) ([]FileInfo, error) {
	fullPath := b.resolve(path)
	var files []FileInfo

	err := afero.Walk(b.fs, fullPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(fullPath, p)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
			Permissions:  uint32(info.Mode().Perm()),
			RelativePath: relPath,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Read opens a file for reading
func (b *FS) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := b.fs.Open(b.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// ReadFile reads the whole file into memory
func (b *FS) ReadFile(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := b.fs.Open(b.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}

	return data, nil
}

// Write writes data to a temporary file next to path and renames it
// into place
func (b *FS) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := b.resolve(path)

	// Ensure parent directory exists
	dir := filepath.Dir(fullPath)
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(b.fs, dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		b.fs.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if written != len(data) {
		b.fs.Remove(tmpName)
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", len(data), written)
	}

	if err := b.fs.Rename(tmpName, fullPath); err != nil {
		b.fs.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// Remove deletes a file
func (b *FS) Remove(ctx context.Context, path string) error {
	err := b.fs.Remove(b.resolve(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

// Exists checks if a file or directory exists
func (b *FS) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := afero.Exists(b.fs, b.resolve(path))
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

// Stat returns file metadata
func (b *FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := b.resolve(path)

	info, err := b.fs.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	relPath := path
	if b.rootPath != "" {
		if relPath, err = filepath.Rel(b.rootPath, fullPath); err != nil {
			return nil, err
		}
	}

	return &FileInfo{
		Path:         fullPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Permissions:  uint32(info.Mode().Perm()),
		RelativePath: relPath,
	}, nil
}

// MkdirAll creates a directory and all necessary parents
func (b *FS) MkdirAll(ctx context.Context, path string) error {
	if err := b.fs.MkdirAll(b.resolve(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// Close releases resources (no-op for afero filesystems)
func (b *FS) Close() error {
	return nil
}
