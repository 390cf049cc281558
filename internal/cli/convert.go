package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sdejongh/utfnorris/pkg/convert"
	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/filestore"
	"github.com/sdejongh/utfnorris/pkg/logging"
	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/output"
	"github.com/sdejongh/utfnorris/pkg/storage"
	"github.com/sdejongh/utfnorris/pkg/tracker"
)

// pollInterval is how often the tracker is sampled for progress
const pollInterval = 100 * time.Millisecond

// ConvertFlags holds convert command flags
type ConvertFlags struct {
	Dest         string
	Validate     bool
	MaxFiles     int
	Include      []string
	Exclude      []string
	Output       string
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var convertFlags ConvertFlags

// NewConvertCommand creates the convert command
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert PATH...",
		Short: "Convert text files to UTF-8",
		Long: `Detect the encoding of each text file and write a UTF-8 copy of it
to the destination directory. Directories are walked recursively and
filtered with the include/exclude patterns. Files that are already UTF-8
are not copied.

Exit status is 0 when every file converted, 1 when some failed, 2 when
all failed or the batch stopped, and 3 when it was interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().StringVarP(&convertFlags.Dest, "dest", "d", "", "destination directory (default from config: ./converted)")
	cmd.Flags().BoolVar(&convertFlags.Validate, "validate", false, "re-read every converted file and compare it with its source")
	cmd.Flags().IntVar(&convertFlags.MaxFiles, "max-files", 0, "maximum files per batch (0 = unlimited)")
	cmd.Flags().StringSliceVar(&convertFlags.Include, "include", []string{}, "glob patterns to include when walking directories")
	cmd.Flags().StringSliceVar(&convertFlags.Exclude, "exclude", []string{}, "glob patterns to exclude when walking directories")
	cmd.Flags().StringVarP(&convertFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&convertFlags.Report, "report", "", "write the per-file report to file")
	cmd.Flags().StringVar(&convertFlags.ReportFormat, "report-format", "human", "report format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&convertFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&convertFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&convertFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := validateConvertFlags(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagsToConfig(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := createLogger(cfg.Logging, convertFlags.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	backend := storage.NewOS()
	defer backend.Close()

	collection, err := collectFiles(ctx, backend, cfg, cfg.Convert.DestDir, args)
	if err != nil {
		return err
	}
	for _, s := range collection.Skipped {
		logger.Debug(ctx, "File skipped", logging.Fields{"path": s.Path, "reason": s.Reason})
	}

	if err := prepareDestDir(cmd, backend, cfg.Convert.DestDir); err != nil {
		return err
	}

	engine := convert.NewEngine(backend, detect.NewDetector(cfg.Detection.SampleSize), logger)
	engine.SetValidation(cfg.Convert.Validate)
	engine.SetMaxFileSize(cfg.Convert.MaxFileSize)

	tasks := tracker.NewStore()
	files := filestore.NewStore()
	runner := convert.NewRunner(engine, tasks, files, logger, cfg.Convert.DestDir)
	defer runner.Close()

	records := make([]models.FileRecord, 0, len(collection.Files))
	for _, path := range collection.Files {
		record, err := runner.Register(ctx, path, "")
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	operation, err := createConvertOperation(cfg, records)
	if err != nil {
		return fmt.Errorf("failed to create conversion: %w", err)
	}

	formatter, err := output.New(cfg.Output.Format, cfg.Output.Progress)
	if err != nil {
		return err
	}

	var writer io.Writer = cmd.OutOrStdout()
	if cfg.Output.Quiet && formatter.Name() != "json" {
		writer = io.Discard
	}
	if err := formatter.Start(writer, len(operation.Files)); err != nil {
		return err
	}

	fileIDs := make([]string, len(operation.Files))
	for i, f := range operation.Files {
		fileIDs[i] = f.ID
	}

	logger.Info(ctx, "Starting conversion", logging.Fields{
		"operation_id": operation.ID,
		"files":        len(fileIDs),
		"dest":         operation.DestDir,
		"validate":     operation.ValidateOutput,
	})

	taskID, err := runner.Submit(ctx, fileIDs)
	if err != nil {
		formatter.Error(err)
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := watchProgress(tasks, taskID, formatter); err != nil {
		return err
	}

	// The batch notices cancellation itself; waiting must not
	report, err := runner.Wait(context.WithoutCancel(ctx), taskID)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if convertFlags.Report != "" {
		if err := output.WriteReport(afero.NewOsFs(), report, convertFlags.Report, convertFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	logger.Info(ctx, "Conversion finished", logging.Fields{
		"task_id":   taskID,
		"status":    string(report.Status),
		"converted": report.Stats.FilesConverted,
		"reused":    report.Stats.FilesReused,
		"failed":    report.Stats.FilesFailed,
	})

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// watchProgress feeds tracker snapshots to the formatter until the task
// reaches a terminal state. The terminal snapshot is always sent last.
func watchProgress(tasks *tracker.Store, taskID string, formatter output.Formatter) error {
	done, err := tasks.Watch(taskID)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return sendSnapshot(tasks, taskID, formatter)
		case <-ticker.C:
			if err := sendSnapshot(tasks, taskID, formatter); err != nil {
				return err
			}
		}
	}
}

func sendSnapshot(tasks *tracker.Store, taskID string, formatter output.Formatter) error {
	snapshot, err := tasks.Get(taskID)
	if err != nil {
		return err
	}
	formatter.Progress(snapshot)
	return nil
}
