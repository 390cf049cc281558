package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/utfnorris/pkg/models"
)

const barTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{string . "file"}}`

// ProgressFormatter draws a progress bar fed by tracker snapshots and
// prints the human summary at the end
type ProgressFormatter struct {
	writer    io.Writer
	bar       *pb.ProgressBar
	termWidth int

	mu sync.Mutex
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	// Default to 100 columns for pipes and redirects
	f.termWidth = 100
	if file, ok := writer.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}

	f.bar = pb.ProgressBarTemplate(barTemplate).New(totalFiles)
	f.bar.SetWriter(writer)
	f.bar.SetWidth(f.termWidth)
	f.bar.Set("file", "")
	f.bar.Start()

	return nil
}

// Progress moves the bar to the snapshot's completed file count
func (f *ProgressFormatter) Progress(progress models.BatchProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	f.bar.SetCurrent(int64(progress.CompletedFiles))
	f.bar.Set("file", f.truncate(progress.CurrentFile))

	return nil
}

// truncate keeps the file name from wrapping the bar line
func (f *ProgressFormatter) truncate(name string) string {
	limit := f.termWidth / 3
	runes := []rune(name)
	if limit < 4 || len(runes) <= limit {
		return name
	}
	return "..." + string(runes[len(runes)-limit+3:])
}

// Complete finishes the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.SetCurrent(int64(len(report.Outcomes)))
		f.bar.Set("file", "")
		f.bar.Finish()
		f.bar = nil
	}

	w := f.writer
	if w == nil {
		w = io.Discard
	}
	writeSummary(w, report)

	return nil
}

// Error stops the bar and reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	if f.writer != nil {
		fmt.Fprintf(f.writer, "\nError: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
