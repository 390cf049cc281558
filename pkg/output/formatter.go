package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/utfnorris/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a new batch
	Start(writer io.Writer, totalFiles int) error

	// Progress reports a tracker snapshot of the running batch
	Progress(progress models.BatchProgress) error

	// Complete finalizes output and displays the summary
	Complete(report *models.BatchReport) error

	// Error reports an error that stopped the batch
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for the given output format.
// The progress bar only replaces the human formatter.
func New(format string, progress bool) (Formatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(), nil
	case "human", "":
		if progress {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
