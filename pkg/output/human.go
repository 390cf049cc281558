package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
	lastFile   string
	startTime  time.Time
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	f.writer = writer
	f.totalFiles = totalFiles
	f.lastFile = ""
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Converting %d file(s) to UTF-8\n", totalFiles)
	}

	return nil
}

// Progress prints a line each time the batch moves to a new file
func (f *HumanFormatter) Progress(progress models.BatchProgress) error {
	if f.writer == nil || progress.CurrentFile == "" || progress.CurrentFile == f.lastFile {
		return nil
	}
	f.lastFile = progress.CurrentFile

	fmt.Fprintf(f.writer, "[%d/%d] %s\n",
		progress.CompletedFiles+1, progress.TotalFiles, progress.CurrentFile)

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.BatchReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the outcome table and statistics of a batch
func writeSummary(w io.Writer, report *models.BatchReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Conversion finished in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")

	if len(report.Outcomes) > 0 {
		fmt.Fprintf(w, "Files:\n")
		for _, o := range report.Outcomes {
			writeOutcome(w, o)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files total:     %d\n", report.Stats.FilesTotal)
	fmt.Fprintf(w, "  Converted:       %d\n", report.Stats.FilesConverted)
	fmt.Fprintf(w, "  Already UTF-8:   %d\n", report.Stats.FilesReused)
	fmt.Fprintf(w, "  Failed:          %d\n", report.Stats.FilesFailed)
	fmt.Fprintf(w, "  Data read:       %s\n", formatBytes(report.Stats.BytesRead))
	fmt.Fprintf(w, "  Data written:    %s\n", formatBytes(report.Stats.BytesWritten))
	if report.DestDir != "" {
		fmt.Fprintf(w, "  Destination:     %s\n", report.DestDir)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if report.Error != "" {
		fmt.Fprintf(w, "Batch error: %s\n", report.Error)
	}
}

func writeOutcome(w io.Writer, o models.ConversionOutcome) {
	if !o.Success {
		fmt.Fprintf(w, "  ✗ %-40s [%s] %s\n", o.Name, o.ErrorKind, o.Error)
		return
	}

	from := detect.DisplayName(o.OriginalEncoding)
	if o.Reused {
		fmt.Fprintf(w, "  = %-40s %s, unchanged\n", o.Name, from)
		return
	}

	fmt.Fprintf(w, "  ✓ %-40s %s -> UTF-8  %s\n", o.Name, from, o.ConvertedPath)
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
