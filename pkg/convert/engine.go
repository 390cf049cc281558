// Package convert runs batches of files through detection and transcoding.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/logging"
	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/storage"
	"github.com/sdejongh/utfnorris/pkg/transcode"
)

// ProgressFunc receives the share of files started (0-100) and the name of
// the file about to be processed. The final call has progress 100 and an
// empty name.
type ProgressFunc func(progress float64, currentFile string)

var errNotFinished = errors.New("conversion did not finish")

// Engine converts files read from a storage backend to UTF-8
type Engine struct {
	backend     storage.Backend
	detector    *detect.Detector
	logger      logging.Logger
	validate    bool
	maxFileSize int64
}

// NewEngine creates a new conversion engine
func NewEngine(backend storage.Backend, detector *detect.Detector, logger logging.Logger) *Engine {
	if detector == nil {
		detector = detect.NewDetector(detect.DefaultSampleSize)
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		backend:  backend,
		detector: detector,
		logger:   logger,
	}
}

// SetValidation enables re-reading every written file and comparing it
// against its source
func (e *Engine) SetValidation(enabled bool) {
	e.validate = enabled
}

// SetMaxFileSize limits the size of source files (0 = unlimited)
func (e *Engine) SetMaxFileSize(size int64) {
	e.maxFileSize = size
}

// Detector returns the engine's detector
func (e *Engine) Detector() *detect.Detector {
	return e.detector
}

// ConvertFile converts a single file into destDir.
// Every failure is reported in the returned outcome.
func (e *Engine) ConvertFile(ctx context.Context, file models.BatchFile, destDir string) models.ConversionOutcome {
	task := NewFileTask(file)
	task.MarkProcessing()
	e.convert(ctx, task, destDir)

	outcome := task.Outcome()
	if outcome.Success {
		e.logger.Debug(ctx, "File converted", logging.Fields{
			"file_id":  file.ID,
			"name":     file.Name,
			"encoding": outcome.OriginalEncoding,
			"output":   outcome.ConvertedPath,
			"reused":   outcome.Reused,
		})
	} else {
		e.logger.Warn(ctx, "File conversion failed", logging.Fields{
			"file_id": file.ID,
			"name":    file.Name,
			"kind":    string(outcome.ErrorKind),
			"error":   outcome.Error,
		})
	}

	return outcome
}

func (e *Engine) convert(ctx context.Context, task *FileTask, destDir string) {
	data, err := e.backend.ReadFile(ctx, task.File.SourcePath, e.maxFileSize)
	if err != nil {
		task.MarkError(models.KindIO, fmt.Errorf("failed to read %s: %w", task.File.Name, err))
		return
	}
	task.BytesRead = int64(len(data))

	detected := e.detector.Detect(data)
	task.Encoding = detected.Encoding
	if !detected.IsSupported {
		task.MarkError(models.KindUnsupported, fmt.Errorf("%w: %s", transcode.ErrUnsupportedEncoding, detected.Encoding))
		return
	}

	result, err := transcode.ToUTF8(data, detected.Encoding)
	if err != nil {
		task.MarkError(errorKind(err), err)
		return
	}

	if result.Reused {
		task.Checksum = Checksum(data)
		task.MarkCompleted(ResultReused, task.File.SourcePath)
		return
	}

	outputPath := filepath.Join(destDir, uuid.NewString()+filepath.Ext(task.File.Name))
	if err := e.backend.Write(ctx, outputPath, result.Output); err != nil {
		task.MarkError(models.KindIO, fmt.Errorf("failed to write %s: %w", outputPath, err))
		return
	}
	task.BytesWritten = int64(len(result.Output))

	if e.validate {
		if err := e.ValidateFile(ctx, task.File.SourcePath, outputPath, detected.Encoding); err != nil {
			e.Cleanup(ctx, outputPath)
			task.BytesWritten = 0
			task.MarkError(errorKind(err), err)
			return
		}
	}

	task.Checksum = Checksum(result.Output)
	task.MarkCompleted(ResultConverted, outputPath)
}

// ConvertBatch converts files one at a time, in order, into destDir.
//
// A failing file never stops the batch. The result is unsuccessful only
// when the loop itself could not finish: the context was cancelled
// between files or something panicked. Outcomes gathered up to that
// point are kept.
func (e *Engine) ConvertBatch(ctx context.Context, files []models.BatchFile, destDir string, onProgress ProgressFunc) (result models.BatchResult) {
	startTime := time.Now()
	result.Outcomes = make([]models.ConversionOutcome, 0, len(files))

	e.logger.Info(ctx, "Starting batch conversion", logging.Fields{
		"files":    len(files),
		"dest_dir": destDir,
		"validate": e.validate,
	})

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("batch aborted: %v", r)
			e.logger.Error(ctx, "Batch conversion aborted", fmt.Errorf("%v", r), logging.Fields{
				"processed": len(result.Outcomes),
				"files":     len(files),
			})
		}
	}()

	total := float64(len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			result.Error = models.ErrCancelled
			e.logger.Warn(ctx, "Batch conversion cancelled", logging.Fields{
				"processed": len(result.Outcomes),
				"files":     len(files),
			})
			return result
		}

		if onProgress != nil {
			onProgress(100*float64(i)/total, file.Name)
		}

		result.Outcomes = append(result.Outcomes, e.ConvertFile(ctx, file, destDir))
	}

	if onProgress != nil {
		onProgress(100, "")
	}
	result.Success = true

	e.logger.Info(ctx, "Batch conversion completed", logging.Fields{
		"converted": result.Converted(),
		"failed":    result.Failed(),
		"duration":  time.Since(startTime).String(),
	})

	return result
}

// ValidateFile checks that convertedPath holds the same text as
// originalPath decoded under originalEncoding
func (e *Engine) ValidateFile(ctx context.Context, originalPath, convertedPath, originalEncoding string) error {
	original, err := e.backend.ReadFile(ctx, originalPath, e.maxFileSize)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}

	converted, err := e.backend.ReadFile(ctx, convertedPath, 0)
	if err != nil {
		return fmt.Errorf("failed to read converted: %w", err)
	}

	return transcode.Validate(original, converted, originalEncoding)
}

// Cleanup removes a converted file. Failures are logged, not returned.
func (e *Engine) Cleanup(ctx context.Context, path string) {
	if err := e.backend.Remove(ctx, path); err != nil {
		e.logger.Warn(ctx, "Failed to clean up file", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	e.logger.Debug(ctx, "Cleaned up file", logging.Fields{"path": path})
}

// errorKind maps transcoding errors to outcome kinds
func errorKind(err error) models.ErrorKind {
	switch {
	case errors.Is(err, transcode.ErrUnsupportedEncoding):
		return models.KindUnsupported
	case errors.Is(err, transcode.ErrContentMismatch):
		return models.KindMismatch
	case errors.Is(err, transcode.ErrDecode):
		return models.KindDecode
	default:
		return models.KindIO
	}
}
