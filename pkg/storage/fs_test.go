package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// TestNewLocal tests the local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		if local == nil {
			t.Fatal("NewLocal() returned nil")
		}
		defer local.Close()
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		_, err := NewLocal(path)
		if err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})
}

// TestLocalReadWrite exercises the OS-backed filesystem end to end
func TestLocalReadWrite(t *testing.T) {
	tempDir := t.TempDir()
	local, err := NewLocal(tempDir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer local.Close()

	ctx := context.Background()
	content := []byte("\xc4\xe3\xba\xc3")

	if err := local.Write(ctx, "out/converted.txt", content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, "out", "converted.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("File content = %q, want %q", data, content)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(tempDir, "out"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}

	got, err := local.ReadFile(ctx, "out/converted.txt", 0)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("ReadFile() = %q, want %q", got, content)
	}
}

// TestMemoryReadFile tests ReadFile limits
func TestMemoryReadFile(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := afero.WriteFile(mem.Fs(), "/in/a.txt", []byte("0123456789"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	t.Run("NoLimit", func(t *testing.T) {
		data, err := mem.ReadFile(ctx, "/in/a.txt", 0)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "0123456789" {
			t.Errorf("ReadFile() = %q", data)
		}
	})

	t.Run("ExactLimit", func(t *testing.T) {
		if _, err := mem.ReadFile(ctx, "/in/a.txt", 10); err != nil {
			t.Errorf("ReadFile() at exact limit error = %v", err)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := mem.ReadFile(ctx, "/in/a.txt", 9)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("ReadFile() error = %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := mem.ReadFile(ctx, "/in/missing.txt", 0); err == nil {
			t.Error("ReadFile() should fail for non-existent file")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := mem.ReadFile(cctx, "/in/a.txt", 0); !errors.Is(err, context.Canceled) {
			t.Errorf("ReadFile() error = %v, want context.Canceled", err)
		}
	})
}

// TestMemoryWrite tests the Write method
func TestMemoryWrite(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	t.Run("WriteWithSubdir", func(t *testing.T) {
		if err := mem.Write(ctx, "/out/nested/file.txt", []byte("nested")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data, err := afero.ReadFile(mem.Fs(), "/out/nested/file.txt")
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "nested" {
			t.Errorf("File content = %q, want nested", data)
		}
	})

	t.Run("OverwriteFile", func(t *testing.T) {
		if err := mem.Write(ctx, "/out/over.txt", []byte("initial content")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := mem.Write(ctx, "/out/over.txt", []byte("new")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data, _ := afero.ReadFile(mem.Fs(), "/out/over.txt")
		if string(data) != "new" {
			t.Errorf("File content = %q, want new", data)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		if err := mem.Write(ctx, "/out/empty.txt", nil); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		info, err := mem.Stat(ctx, "/out/empty.txt")
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Size != 0 {
			t.Errorf("Size = %d, want 0", info.Size)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := mem.Write(cctx, "/out/never.txt", []byte("x")); err == nil {
			t.Error("Write() should fail on a cancelled context")
		}
		if ok, _ := mem.Exists(ctx, "/out/never.txt"); ok {
			t.Error("cancelled write must not create the file")
		}
	})
}

// TestMemoryRemove tests Remove and Exists
func TestMemoryRemove(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := mem.Write(ctx, "/x.txt", []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	ok, err := mem.Exists(ctx, "/x.txt")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true, nil", ok, err)
	}

	if err := mem.Remove(ctx, "/x.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	ok, _ = mem.Exists(ctx, "/x.txt")
	if ok {
		t.Error("file still exists after Remove()")
	}

	if err := mem.Remove(ctx, "/x.txt"); err != nil {
		t.Errorf("Remove() of missing file error = %v, want nil", err)
	}
}

// TestMemoryList tests the List method
func TestMemoryList(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	files := map[string]string{
		"/docs/a.txt":     "a",
		"/docs/b.txt":     "b",
		"/docs/sub/c.txt": "c",
	}
	for path, content := range files {
		if err := afero.WriteFile(mem.Fs(), path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to seed %s: %v", path, err)
		}
	}

	entries, err := mem.List(ctx, "/docs")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir {
			names = append(names, filepath.ToSlash(e.RelativePath))
		}
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"a.txt", "b.txt", "sub/c.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("List() missing %s (got %s)", want, got)
		}
	}
}

// TestMemoryRead tests the streaming Read method
func TestMemoryRead(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := mem.Write(ctx, "/r.txt", []byte("stream")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	reader, err := mem.Read(ctx, "/r.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "stream" {
		t.Errorf("Read() content = %q", data)
	}
}

// TestBackendInterface verifies FS implements Backend
func TestBackendInterface(t *testing.T) {
	var _ Backend = (*FS)(nil)
}
