package convert

import (
	"time"

	"github.com/sdejongh/utfnorris/pkg/models"
)

// TaskStatus represents the status of a file while the engine works on it
type TaskStatus string

const (
	// TaskPending indicates the file has not been started
	TaskPending TaskStatus = "pending"
	// TaskProcessing indicates the file is being converted
	TaskProcessing TaskStatus = "processing"
	// TaskCompleted indicates the file converted successfully
	TaskCompleted TaskStatus = "completed"
	// TaskError indicates the file failed
	TaskError TaskStatus = "error"
)

// TaskResult represents what happened to the file
type TaskResult string

const (
	// ResultConverted indicates a new UTF-8 file was written
	ResultConverted TaskResult = "converted"
	// ResultReused indicates the source was already UTF-8
	ResultReused TaskResult = "reused"
	// ResultFailed indicates the conversion failed
	ResultFailed TaskResult = "failed"
)

// FileTask tracks one file through ConvertFile
type FileTask struct {
	File models.BatchFile

	Status TaskStatus
	Result TaskResult

	// Encoding is the detected source encoding
	Encoding string

	// OutputPath is the converted file, or the source when reused
	OutputPath string

	Checksum     string
	BytesRead    int64
	BytesWritten int64

	Kind  models.ErrorKind
	Error error

	started  time.Time
	Duration time.Duration
}

// NewFileTask creates a pending task for file
func NewFileTask(file models.BatchFile) *FileTask {
	return &FileTask{
		File:   file,
		Status: TaskPending,
	}
}

// MarkProcessing marks the task as started
func (t *FileTask) MarkProcessing() {
	t.Status = TaskProcessing
	t.started = time.Now()
}

// MarkCompleted marks the task as successfully completed
func (t *FileTask) MarkCompleted(result TaskResult, outputPath string) {
	t.Status = TaskCompleted
	t.Result = result
	t.OutputPath = outputPath
	t.Duration = time.Since(t.started)
}

// MarkError marks the task as failed
func (t *FileTask) MarkError(kind models.ErrorKind, err error) {
	t.Status = TaskError
	t.Result = ResultFailed
	t.Kind = kind
	t.Error = err
	t.Duration = time.Since(t.started)
}

// Outcome converts the finished task into its batch outcome
func (t *FileTask) Outcome() models.ConversionOutcome {
	if t.Status != TaskCompleted {
		err := t.Error
		if err == nil {
			err = errNotFinished
		}
		o := models.Failure(t.File, t.Kind, err)
		o.OriginalEncoding = t.Encoding
		o.BytesRead = t.BytesRead
		o.Duration = t.Duration
		return o
	}

	return models.ConversionOutcome{
		FileID:            t.File.ID,
		Name:              t.File.Name,
		Success:           true,
		OriginalEncoding:  t.Encoding,
		ConvertedEncoding: models.ConvertedEncodingUTF8,
		ConvertedPath:     t.OutputPath,
		Reused:            t.Result == ResultReused,
		Checksum:          t.Checksum,
		BytesRead:         t.BytesRead,
		BytesWritten:      t.BytesWritten,
		Duration:          t.Duration,
	}
}
