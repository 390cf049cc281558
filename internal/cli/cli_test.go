package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	utf8BOMHello = []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 'l', 'l', 'o'}
	utf16LEHi    = []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	utf32LEHi    = []byte{0xFF, 0xFE, 0x00, 0x00, 'h', 0x00, 0x00, 0x00}
)

// execute runs the command tree the way main does and captures stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "utfnorris", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(NewDetectCommand())
	root.AddCommand(NewConvertCommand())
	root.AddCommand(NewValidateCommand())
	root.AddCommand(NewConfigCommand())
	root.AddCommand(NewVersionCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// workspace creates an input directory and a config file that keeps the
// output free of progress bars
func workspace(t *testing.T, files map[string][]byte) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()

	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(in, 0755))
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), data, 0644))
	}

	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  progress: false\n"), 0644))
	return dir, cfgPath
}

type jsonReport struct {
	Status string `json:"status"`
	Stats  struct {
		FilesTotal     int `json:"files_total"`
		FilesConverted int `json:"files_converted"`
		FilesReused    int `json:"files_reused"`
		FilesFailed    int `json:"files_failed"`
	} `json:"stats"`
	Outcomes []struct {
		Name          string `json:"name"`
		Success       bool   `json:"success"`
		ConvertedPath string `json:"converted_path"`
		Reused        bool   `json:"reused"`
	} `json:"outcomes"`
}

func TestConvertCommand(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{
		"hi16.txt":  utf16LEHi,
		"hello.txt": utf8BOMHello,
		"skip.png":  {0x89, 'P', 'N', 'G'},
	})
	dest := filepath.Join(dir, "out")

	out, err := execute(t, "--config", cfgPath, "convert", "--dest", dest, "-o", "json", filepath.Join(dir, "in"))
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)

	assert.Equal(t, "success", report.Status)
	assert.Equal(t, 2, report.Stats.FilesTotal)
	assert.Equal(t, 1, report.Stats.FilesConverted)
	assert.Equal(t, 1, report.Stats.FilesReused)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".txt", filepath.Ext(entries[0].Name()))

	data, err := os.ReadFile(filepath.Join(dest, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestConvertCommandPartial(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{
		"ok.txt":  utf16LEHi,
		"bad.txt": utf32LEHi,
	})
	dest := filepath.Join(dir, "out")
	reportPath := filepath.Join(dir, "report.txt")

	out, err := execute(t, "--config", cfgPath, "convert", "--dest", dest, "--report", reportPath, filepath.Join(dir, "in"))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	assert.Equal(t, 1, exitErr.Code)

	assert.Contains(t, out, "Status: partial")
	assert.Contains(t, out, "bad.txt")

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Unsupported Encodings (1 files)")
}

func TestConvertCommandRejectsBadFlags(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{"a.txt": utf8BOMHello})

	_, err := execute(t, "--config", cfgPath, "convert", "-o", "xml", filepath.Join(dir, "in"))
	assert.ErrorContains(t, err, "invalid output format")

	_, err = execute(t, "--config", cfgPath, "convert", "--max-files", "-1", filepath.Join(dir, "in"))
	assert.ErrorContains(t, err, "--max-files")
}

func TestDetectCommand(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{
		"hi16.txt": utf16LEHi,
	})
	file := filepath.Join(dir, "in", "hi16.txt")

	out, err := execute(t, "--config", cfgPath, "detect", "-o", "json", file)
	require.NoError(t, err)

	var entries []detectionEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), out)
	require.Len(t, entries, 1)
	assert.Equal(t, file, entries[0].File)
	assert.Equal(t, "utf16le", entries[0].Encoding)
	assert.True(t, entries[0].HasBOM)
	assert.True(t, entries[0].IsSupported)

	out, err = execute(t, "--config", cfgPath, "detect", file, filepath.Join(dir, "missing.txt"))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, out, "ENCODING")
	assert.Contains(t, out, "error:")
}

func TestValidateCommand(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{
		"hi16.txt": utf16LEHi,
		"good.txt": []byte("hi"),
		"bad.txt":  []byte("ho"),
	})
	in := filepath.Join(dir, "in")

	out, err := execute(t, "--config", cfgPath, "validate", "--encoding", "utf-16le",
		filepath.Join(in, "hi16.txt"), filepath.Join(in, "good.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "OK:")

	// Encoding detected from the BOM
	_, err = execute(t, "--config", cfgPath, "validate",
		filepath.Join(in, "hi16.txt"), filepath.Join(in, "bad.txt"))
	assert.ErrorContains(t, err, "validation failed")
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "utfnorris.toml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Destination: ./converted")
	assert.Contains(t, out, "Sample Size: 4096")

	out, err = execute(t, "--config", path, "config", "show", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "[convert]")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "utfnorris "+Version)
	assert.Contains(t, out, "gb18030")
}

func TestSampleSizeFlag(t *testing.T) {
	dir, cfgPath := workspace(t, map[string][]byte{"hi16.txt": utf16LEHi})
	file := filepath.Join(dir, "in", "hi16.txt")

	_, err := execute(t, "--config", cfgPath, "--sample-size", "10", "detect", file)
	assert.ErrorContains(t, err, "detection.sample_size")

	out, err := execute(t, "--config", cfgPath, "--sample-size", "128", "detect", "-o", "json", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"sample_size": 6`)
}
