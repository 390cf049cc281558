package config

import (
	"strings"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/models"
)

// Sample size bounds accepted for detection.sample_size
const (
	MinSampleSize = 64
	MaxSampleSize = 1 << 20
)

// Config represents the application configuration
type Config struct {
	Convert   ConvertConfig   `yaml:"convert" toml:"convert"`
	Detection DetectionConfig `yaml:"detection" toml:"detection"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Include   []string        `yaml:"include" toml:"include"`
	Exclude   []string        `yaml:"exclude" toml:"exclude"`
}

// ConvertConfig holds conversion settings
type ConvertConfig struct {
	DestDir     string   `yaml:"dest_dir" toml:"dest_dir"`
	Validate    bool     `yaml:"validate" toml:"validate"`           // Re-check every written file
	MaxFiles    int      `yaml:"max_files" toml:"max_files"`         // Per batch, 0 = unlimited
	MaxFileSize int64    `yaml:"max_file_size" toml:"max_file_size"` // Bytes, 0 = unlimited
	Extensions  []string `yaml:"extensions" toml:"extensions"`       // Collected when walking directories
}

// DetectionConfig holds encoding detection settings
type DetectionConfig struct {
	SampleSize int `yaml:"sample_size" toml:"sample_size"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format" toml:"format"`     // "human" or "json"
	Progress bool   `yaml:"progress" toml:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet" toml:"quiet"`       // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Format  string `yaml:"format" toml:"format"` // "json" or "text"
	Level   string `yaml:"level" toml:"level"`   // "debug", "info", "warn", "error"
	File    string `yaml:"file" toml:"file"`     // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			DestDir:     "./converted",
			Validate:    false,
			MaxFiles:    10,
			MaxFileSize: 50 * 1024 * 1024,
			Extensions:  []string{".txt"},
		},
		Detection: DetectionConfig{
			SampleSize: detect.DefaultSampleSize,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		Exclude: []string{
			".git/",
			"*.tmp",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Convert.DestDir == "" {
		return &models.ValidationError{
			Field:   "convert.dest_dir",
			Message: "must not be empty",
		}
	}

	if c.Convert.MaxFiles < 0 {
		return &models.ValidationError{
			Field:   "convert.max_files",
			Message: "must be 0 (unlimited) or positive",
		}
	}

	if c.Convert.MaxFileSize < 0 {
		return &models.ValidationError{
			Field:   "convert.max_file_size",
			Message: "must be 0 (unlimited) or positive",
		}
	}

	for _, ext := range c.Convert.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return &models.ValidationError{
				Field:   "convert.extensions",
				Message: "extensions must look like '.txt', got '" + ext + "'",
			}
		}
	}

	if c.Detection.SampleSize < MinSampleSize || c.Detection.SampleSize > MaxSampleSize {
		return &models.ValidationError{
			Field:   "detection.sample_size",
			Message: "must be between 64 bytes and 1 MiB",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// HasExtension reports whether name ends with one of the configured
// extensions, ignoring case. An empty list accepts everything.
func (c *Config) HasExtension(name string) bool {
	if len(c.Convert.Extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range c.Convert.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
