package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/filestore"
	"github.com/sdejongh/utfnorris/pkg/logging"
	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/tracker"
)

// Runner submits batches of registered files to the engine in the
// background and keeps the task tracker and file store up to date
type Runner struct {
	engine  *Engine
	tasks   *tracker.Store
	files   *filestore.Store
	logger  logging.Logger
	destDir string

	wg sync.WaitGroup

	mu      sync.Mutex
	results map[string]*batchRun
}

type batchRun struct {
	total  int
	start  time.Time
	end    time.Time
	result models.BatchResult
}

// NewRunner creates a runner writing converted files to destDir
func NewRunner(engine *Engine, tasks *tracker.Store, files *filestore.Store, logger logging.Logger, destDir string) *Runner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		engine:  engine,
		tasks:   tasks,
		files:   files,
		logger:  logger,
		destDir: destDir,
		results: make(map[string]*batchRun),
	}
}

// Register detects the encoding of the file at path and adds it to the
// file store. Unsupported files are registered too; they fail at
// conversion time with a per-file error.
func (r *Runner) Register(ctx context.Context, path, name string) (models.FileRecord, error) {
	if name == "" {
		name = filepath.Base(path)
	}

	data, err := r.engine.backend.ReadFile(ctx, path, r.engine.maxFileSize)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("failed to register %s: %w", name, err)
	}

	detected := r.engine.detector.Detect(data)

	record, err := r.files.Add(models.FileRecord{
		Name:                name,
		Size:                int64(len(data)),
		OriginalPath:        path,
		OriginalEncoding:    detected.Encoding,
		EncodingDisplayName: detect.DisplayName(detected.Encoding),
		NeedsConversion:     detect.NeedsConversion(detected.Encoding),
	})
	if err != nil {
		return models.FileRecord{}, err
	}

	r.logger.Debug(ctx, "File registered", logging.Fields{
		"file_id":    record.ID,
		"name":       name,
		"encoding":   detected.Encoding,
		"confidence": detected.Confidence,
		"supported":  detected.IsSupported,
	})

	return record, nil
}

// Submit starts converting the given files and returns the new task id.
// Unknown ids and records without a source path are rejected before any
// work starts.
func (r *Runner) Submit(ctx context.Context, fileIDs []string) (string, error) {
	if len(fileIDs) == 0 {
		return "", ErrNoFiles
	}

	files, err := r.files.Lookup(fileIDs)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.SourcePath == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingPath, f.Name)
		}
	}

	taskID := uuid.NewString()
	if _, err := r.tasks.Create(taskID, len(files)); err != nil {
		return "", err
	}

	run := &batchRun{total: len(files), start: time.Now()}
	r.mu.Lock()
	r.results[taskID] = run
	r.mu.Unlock()

	r.files.MarkConverting(fileIDs)

	r.logger.Info(ctx, "Conversion task submitted", logging.Fields{
		"task_id": taskID,
		"files":   len(files),
	})

	r.wg.Add(1)
	go r.run(ctx, taskID, files, run)

	return taskID, nil
}

func (r *Runner) run(ctx context.Context, taskID string, files []models.BatchFile, run *batchRun) {
	defer r.wg.Done()
	logger := r.logger.WithFields(logging.Fields{"task_id": taskID})

	result := r.engine.ConvertBatch(ctx, files, r.destDir, func(progress float64, currentFile string) {
		if err := r.tasks.Update(taskID, progress, currentFile); err != nil {
			logger.Warn(ctx, "Failed to update task progress", logging.Fields{"error": err.Error()})
		}
	})

	r.mu.Lock()
	run.result = result
	run.end = time.Now()
	r.mu.Unlock()

	for _, outcome := range result.Outcomes {
		if err := r.files.ApplyOutcome(outcome); err != nil {
			logger.Warn(ctx, "Failed to update file record", logging.Fields{
				"file_id": outcome.FileID,
				"error":   err.Error(),
			})
		}
	}

	if !result.Success {
		r.failUnreached(ctx, logger, files[len(result.Outcomes):], result.Error)
		if err := r.tasks.Fail(taskID, result.Error); err != nil {
			logger.Error(ctx, "Failed to mark task as failed", err, nil)
		}
		return
	}

	if err := r.tasks.Complete(taskID); err != nil {
		logger.Error(ctx, "Failed to mark task as completed", err, nil)
	}
}

// failUnreached marks files the batch never reached with the batch error
func (r *Runner) failUnreached(ctx context.Context, logger logging.Logger, files []models.BatchFile, reason string) {
	for _, f := range files {
		err := r.files.Update(f.ID, func(rec *models.FileRecord) {
			rec.Status = models.FileError
			rec.ErrorMessage = reason
		})
		if err != nil {
			logger.Warn(ctx, "Failed to update file record", logging.Fields{
				"file_id": f.ID,
				"error":   err.Error(),
			})
		}
	}
}

// Wait blocks until the task is terminal and returns its report
func (r *Runner) Wait(ctx context.Context, taskID string) (*models.BatchReport, error) {
	done, err := r.tasks.Watch(taskID)
	if err != nil {
		return nil, err
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return r.Report(taskID)
}

// Report returns the report of a finished task
func (r *Runner) Report(taskID string) (*models.BatchReport, error) {
	r.mu.Lock()
	run, ok := r.results[taskID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", tracker.ErrTaskNotFound, taskID)
	}

	progress, err := r.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	if !progress.Status.IsTerminal() {
		return nil, fmt.Errorf("task %s is still %s", taskID, progress.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return models.NewBatchReport(taskID, r.destDir, run.total, &run.result, run.start, run.end), nil
}

// Close waits for every submitted batch to finish
func (r *Runner) Close() {
	r.wg.Wait()
}
