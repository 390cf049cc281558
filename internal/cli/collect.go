package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdejongh/utfnorris/internal/platform"
	"github.com/sdejongh/utfnorris/pkg/config"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

// SkippedFile is a file found while walking a directory that will not be
// converted
type SkippedFile struct {
	Path   string
	Reason string
}

// Collection is the set of files gathered from the command line
type Collection struct {
	Files   []string
	Skipped []SkippedFile
}

// collectFiles expands paths into the list of files to convert.
// Files named explicitly must pass the extension and size checks or the
// whole collection fails; files found by walking a directory are skipped
// instead. Anything under destDir is ignored.
func collectFiles(ctx context.Context, backend storage.Backend, cfg *config.Config, destDir string, paths []string) (*Collection, error) {
	result := &Collection{}
	seen := make(map[string]bool)

	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		result.Files = append(result.Files, path)
	}

	for _, raw := range paths {
		if err := platform.ValidatePath(raw); err != nil {
			return nil, err
		}
		path := platform.NormalizePath(raw)

		info, err := backend.Stat(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", raw, err)
		}

		if !info.IsDir {
			if !cfg.HasExtension(path) {
				return nil, fmt.Errorf("%s: only %s files can be converted", raw, strings.Join(cfg.Convert.Extensions, ", "))
			}
			if cfg.Convert.MaxFileSize > 0 && info.Size > cfg.Convert.MaxFileSize {
				return nil, fmt.Errorf("%s: file size %d exceeds the %d byte limit", raw, info.Size, cfg.Convert.MaxFileSize)
			}
			add(path)
			continue
		}

		entries, err := backend.List(ctx, path)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir {
				continue
			}
			if destDir != "" && platform.IsInside(entry.Path, destDir) {
				continue
			}

			rel := entry.RelativePath
			switch {
			case matchesAny(rel, cfg.Exclude):
				result.Skipped = append(result.Skipped, SkippedFile{Path: entry.Path, Reason: "excluded"})
			case len(cfg.Include) > 0 && !matchesAny(rel, cfg.Include):
				result.Skipped = append(result.Skipped, SkippedFile{Path: entry.Path, Reason: "not included"})
			case !cfg.HasExtension(entry.Path):
				// Non-text files are silently ignored
			case cfg.Convert.MaxFileSize > 0 && entry.Size > cfg.Convert.MaxFileSize:
				result.Skipped = append(result.Skipped, SkippedFile{Path: entry.Path, Reason: "too large"})
			default:
				add(entry.Path)
			}
		}
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("no files to convert")
	}

	if cfg.Convert.MaxFiles > 0 && len(result.Files) > cfg.Convert.MaxFiles {
		return nil, fmt.Errorf("too many files: %d (at most %d per batch)", len(result.Files), cfg.Convert.MaxFiles)
	}

	return result, nil
}

// matchesAny checks if a relative path matches one of the given patterns
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/*.bak
func matchesAny(relativePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	normalizedPath := filepath.ToSlash(relativePath)
	baseName := filepath.Base(relativePath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		normalizedPattern := filepath.ToSlash(pattern)

		if strings.HasSuffix(normalizedPattern, "/") {
			dirPattern := strings.TrimSuffix(normalizedPattern, "/")
			if strings.HasPrefix(normalizedPath, dirPattern+"/") ||
				normalizedPath == dirPattern ||
				strings.Contains(normalizedPath, "/"+dirPattern+"/") {
				return true
			}
			continue
		}

		// **/pattern matches pattern at any depth
		if strings.Contains(normalizedPattern, "**") {
			parts := strings.Split(normalizedPattern, "**/")
			if len(parts) == 2 && parts[0] == "" {
				suffix := parts[1]
				if matchGlob(baseName, suffix) {
					return true
				}
				if strings.HasSuffix(normalizedPath, "/"+suffix) || normalizedPath == suffix {
					return true
				}
				if matchGlobPath(normalizedPath, suffix) {
					return true
				}
			}
			continue
		}

		if strings.Contains(normalizedPattern, "/") {
			if matched, _ := filepath.Match(normalizedPattern, normalizedPath); matched {
				return true
			}
			if strings.HasSuffix(normalizedPath, normalizedPattern) {
				return true
			}
		} else if matchGlob(baseName, normalizedPattern) {
			return true
		}
	}

	return false
}

// matchGlob performs simple glob matching on a single path component
func matchGlob(name, pattern string) bool {
	matched, _ := filepath.Match(pattern, name)
	return matched
}

// matchGlobPath checks if any component of the path matches the pattern
func matchGlobPath(path, pattern string) bool {
	for _, part := range strings.Split(path, "/") {
		if matchGlob(part, pattern) {
			return true
		}
	}
	return false
}
