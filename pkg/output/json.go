package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/utfnorris/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer     io.Writer
	totalFiles int
	startTime  time.Time
	lastFile   string
	events     []JSONEvent
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	TotalFiles int `json:"total_files"`
}

// JSONProgressData represents a progress event
type JSONProgressData struct {
	File           string  `json:"file"`
	CompletedFiles int     `json:"completed_files"`
	Progress       float64 `json:"progress"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	TaskID     string                     `json:"task_id"`
	Status     string                     `json:"status"`
	Duration   string                     `json:"duration"`
	DurationMs int64                      `json:"duration_ms"`
	DestDir    string                     `json:"dest_dir,omitempty"`
	Stats      JSONStatsData              `json:"stats"`
	Outcomes   []models.ConversionOutcome `json:"outcomes"`
	Error      string                     `json:"error,omitempty"`
	Events     []JSONEvent                `json:"events,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesTotal     int   `json:"files_total"`
	FilesConverted int   `json:"files_converted"`
	FilesReused    int   `json:"files_reused"`
	FilesFailed    int   `json:"files_failed"`
	BytesRead      int64 `json:"bytes_read"`
	BytesWritten   int64 `json:"bytes_written"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		events: make([]JSONEvent, 0),
	}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles
	f.startTime = time.Now()

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "start",
		Data:      JSONStartData{TotalFiles: totalFiles},
	})

	return nil
}

// Progress records one event per file started. Nothing is written until
// Complete so the output stays a single JSON document.
func (f *JSONFormatter) Progress(progress models.BatchProgress) error {
	if progress.CurrentFile == "" || progress.CurrentFile == f.lastFile {
		return nil
	}
	f.lastFile = progress.CurrentFile

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "file_start",
		Data: JSONProgressData{
			File:           progress.CurrentFile,
			CompletedFiles: progress.CompletedFiles,
			Progress:       progress.Progress,
		},
	})
	return nil
}

// Complete writes the final report with the recorded events
func (f *JSONFormatter) Complete(report *models.BatchReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "complete",
	})

	outcomes := report.Outcomes
	if outcomes == nil {
		outcomes = []models.ConversionOutcome{}
	}

	reportData := JSONReportData{
		TaskID:     report.TaskID,
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		DestDir:    report.DestDir,
		Stats: JSONStatsData{
			FilesTotal:     report.Stats.FilesTotal,
			FilesConverted: report.Stats.FilesConverted,
			FilesReused:    report.Stats.FilesReused,
			FilesFailed:    report.Stats.FilesFailed,
			BytesRead:      report.Stats.BytesRead,
			BytesWritten:   report.Stats.BytesWritten,
		},
		Outcomes: outcomes,
		Error:    report.Error,
		Events:   f.events,
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reportData)
}

// Error records an error event
func (f *JSONFormatter) Error(err error) error {
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data: map[string]string{
			"error": err.Error(),
		},
	})
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
