package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/utfnorris/pkg/config"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

func newCollectBackend(t *testing.T, files map[string]string) storage.Backend {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return storage.NewFromFs(fs, "")
}

func TestCollectFilesWalksDirectories(t *testing.T) {
	backend := newCollectBackend(t, map[string]string{
		"/in/a.txt":          "a",
		"/in/sub/b.TXT":      "b",
		"/in/image.png":      "png",
		"/in/.git/notes.txt": "git",
		"/in/draft.tmp":      "tmp",
		"/in/out/c.txt":      "already converted",
	})
	cfg := config.Default()
	cfg.Exclude = []string{".git/", "*.tmp"}

	got, err := collectFiles(context.Background(), backend, cfg, "/in/out", []string{"/in"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/in/a.txt", "/in/sub/b.TXT"}, got.Files)

	reasons := map[string]string{}
	for _, s := range got.Skipped {
		reasons[s.Path] = s.Reason
	}
	assert.Equal(t, "excluded", reasons["/in/.git/notes.txt"])
	assert.Equal(t, "excluded", reasons["/in/draft.tmp"])
	assert.NotContains(t, reasons, "/in/image.png")
	assert.NotContains(t, reasons, "/in/out/c.txt")
}

func TestCollectFilesInclude(t *testing.T) {
	backend := newCollectBackend(t, map[string]string{
		"/in/keep/a.txt":  "a",
		"/in/other/b.txt": "b",
	})
	cfg := config.Default()
	cfg.Include = []string{"keep/*"}

	got, err := collectFiles(context.Background(), backend, cfg, "", []string{"/in"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/keep/a.txt"}, got.Files)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "not included", got.Skipped[0].Reason)
}

func TestCollectFilesDeduplicates(t *testing.T) {
	backend := newCollectBackend(t, map[string]string{"/in/a.txt": "a"})

	got, err := collectFiles(context.Background(), backend, config.Default(), "", []string{"/in/a.txt", "/in", "/in/./a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.txt"}, got.Files)
}

func TestCollectFilesLimits(t *testing.T) {
	backend := newCollectBackend(t, map[string]string{
		"/in/a.txt":   "a",
		"/in/b.txt":   "b",
		"/in/c.txt":   "c",
		"/in/big.txt": "0123456789",
	})

	t.Run("too many files", func(t *testing.T) {
		cfg := config.Default()
		cfg.Convert.MaxFiles = 2
		_, err := collectFiles(context.Background(), backend, cfg, "", []string{"/in"})
		assert.ErrorContains(t, err, "too many files")
	})

	t.Run("large walked file is skipped", func(t *testing.T) {
		cfg := config.Default()
		cfg.Convert.MaxFileSize = 5
		got, err := collectFiles(context.Background(), backend, cfg, "", []string{"/in"})
		require.NoError(t, err)
		assert.Len(t, got.Files, 3)
		require.Len(t, got.Skipped, 1)
		assert.Equal(t, SkippedFile{Path: "/in/big.txt", Reason: "too large"}, got.Skipped[0])
	})

	t.Run("large explicit file fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.Convert.MaxFileSize = 5
		_, err := collectFiles(context.Background(), backend, cfg, "", []string{"/in/big.txt"})
		assert.ErrorContains(t, err, "exceeds")
	})
}

func TestCollectFilesRejects(t *testing.T) {
	backend := newCollectBackend(t, map[string]string{
		"/in/photo.png": "png",
	})
	cfg := config.Default()

	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{"wrong extension", []string{"/in/photo.png"}, "only .txt files"},
		{"missing", []string{"/in/nope.txt"}, "cannot access"},
		{"empty path", []string{""}, "path is empty"},
		{"nothing found", []string{"/in"}, "no files to convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collectFiles(context.Background(), backend, cfg, "", tt.paths)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"notes.tmp", []string{"*.tmp"}, true},
		{"a/b/notes.tmp", []string{"*.tmp"}, true},
		{".git/config", []string{".git/"}, true},
		{"src/.git/config", []string{".git/"}, true},
		{"build/out.txt", []string{"build/*"}, true},
		{"deep/x/y.bak", []string{"**/*.bak"}, true},
		{"notes.txt", []string{"*.tmp", ""}, false},
		{"notes.txt", nil, false},
	}

	for _, tt := range tests {
		if got := matchesAny(tt.path, tt.patterns); got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}
