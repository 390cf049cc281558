package cli

import (
	"os"

	"github.com/sdejongh/utfnorris/pkg/config"
	"github.com/sdejongh/utfnorris/pkg/logging"
)

// createLogger creates a logger based on configuration.
// --verbose turns on debug logging to stderr when no log file is set.
func createLogger(cfg config.LoggingConfig, logFile string) (logging.Logger, error) {
	if logFile != "" {
		cfg.Enabled = true
		cfg.File = logFile
	}
	if globalFlags.Verbose && !cfg.Enabled {
		cfg.Enabled = true
		cfg.Level = "debug"
	}

	if !cfg.Enabled {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	level := logging.ParseLevel(cfg.Level)

	if cfg.File == "" {
		return logging.NewStreamLogger(os.Stderr, format, level), nil
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}
