package models

import (
	"time"
)

// BatchReport summarizes a finished batch for output formatters
type BatchReport struct {
	TaskID  string
	DestDir string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats    Statistics
	Outcomes []ConversionOutcome

	// Error is the batch-level fault, if any
	Error string

	Status BatchStatus
}

// Statistics holds batch metrics
type Statistics struct {
	FilesTotal     int
	FilesConverted int // Written as new UTF-8 files
	FilesReused    int // Already UTF-8, source reused
	FilesFailed    int
	BytesRead      int64
	BytesWritten   int64
}

// BatchStatus represents the overall result
type BatchStatus string

const (
	// StatusSuccess indicates every file converted
	StatusSuccess BatchStatus = "success"
	// StatusPartial indicates some files failed
	StatusPartial BatchStatus = "partial"
	// StatusFailed indicates no file converted or the batch itself failed
	StatusFailed BatchStatus = "failed"
	// StatusCancelled indicates the batch was cancelled before finishing
	StatusCancelled BatchStatus = "cancelled"
)

// NewBatchReport builds a report from a batch result
func NewBatchReport(taskID, destDir string, totalFiles int, result *BatchResult, start, end time.Time) *BatchReport {
	report := &BatchReport{
		TaskID:    taskID,
		DestDir:   destDir,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Outcomes:  result.Outcomes,
		Error:     result.Error,
	}
	report.Stats.FilesTotal = totalFiles

	for _, o := range result.Outcomes {
		report.Stats.BytesRead += o.BytesRead
		report.Stats.BytesWritten += o.BytesWritten
		switch {
		case !o.Success:
			report.Stats.FilesFailed++
		case o.Reused:
			report.Stats.FilesReused++
		default:
			report.Stats.FilesConverted++
		}
	}

	ok := report.Stats.FilesConverted + report.Stats.FilesReused
	switch {
	case !result.Success && result.Error == ErrCancelled:
		report.Status = StatusCancelled
	case !result.Success:
		report.Status = StatusFailed
	case ok == totalFiles:
		report.Status = StatusSuccess
	case ok == 0:
		report.Status = StatusFailed
	default:
		report.Status = StatusPartial
	}

	return report
}

// ErrCancelled is the batch-level error message recorded on cancellation
const ErrCancelled = "batch cancelled"

// ExitCode returns the appropriate exit code for the batch status
func (s BatchStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
