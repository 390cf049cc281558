package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/utfnorris/pkg/config"
	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

// ExitError carries a non-zero process exit status out of a command
// without printing an error message
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// loadConfig loads configuration from file or returns default, then
// applies the global flags that override it
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if globalFlags.ConfigFile != "" {
		cfg, err = config.LoadFromFile(globalFlags.ConfigFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if globalFlags.SampleSize != 0 {
		cfg.Detection.SampleSize = globalFlags.SampleSize
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateConvertFlags validates the convert command flags
func validateConvertFlags() error {
	validFormats := map[string]bool{"human": true, "json": true}
	if convertFlags.Output != "" && !validFormats[convertFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", convertFlags.Output)
	}
	if !validFormats[convertFlags.ReportFormat] {
		return fmt.Errorf("invalid report format: %s (valid: human, json)", convertFlags.ReportFormat)
	}
	if convertFlags.MaxFiles < 0 {
		return fmt.Errorf("--max-files must be 0 (unlimited) or positive")
	}
	return nil
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) {
	if convertFlags.Dest != "" {
		cfg.Convert.DestDir = convertFlags.Dest
	}

	if cmd.Flags().Changed("validate") {
		cfg.Convert.Validate = convertFlags.Validate
	}

	if cmd.Flags().Changed("max-files") {
		cfg.Convert.MaxFiles = convertFlags.MaxFiles
	}

	if len(convertFlags.Exclude) > 0 {
		cfg.Exclude = convertFlags.Exclude
	}

	if len(convertFlags.Include) > 0 {
		cfg.Include = convertFlags.Include
	}

	if convertFlags.Output != "" {
		cfg.Output.Format = convertFlags.Output
	}

	if convertFlags.LogFormat != "" {
		cfg.Logging.Format = convertFlags.LogFormat
	}

	if convertFlags.LogLevel != "" {
		cfg.Logging.Level = convertFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// prepareDestDir checks the destination is usable and creates it
func prepareDestDir(cmd *cobra.Command, backend storage.Backend, dir string) error {
	ctx := cmd.Context()

	info, err := backend.Stat(ctx, dir)
	if err == nil {
		if !info.IsDir {
			return fmt.Errorf("destination path exists but is not a directory: %s", dir)
		}
		return nil
	}

	if err := backend.MkdirAll(ctx, dir); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	return nil
}

// createConvertOperation creates a conversion operation from the
// registered files and configuration
func createConvertOperation(cfg *config.Config, records []models.FileRecord) (*models.ConvertOperation, error) {
	operation := &models.ConvertOperation{
		ID:             uuid.New().String(),
		DestDir:        cfg.Convert.DestDir,
		ValidateOutput: cfg.Convert.Validate,
		MaxFiles:       cfg.Convert.MaxFiles,
		MaxFileSize:    cfg.Convert.MaxFileSize,
		SampleSize:     cfg.Detection.SampleSize,
		CreatedAt:      time.Now(),
	}

	for i := range records {
		operation.Files = append(operation.Files, records[i].BatchFile())
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
