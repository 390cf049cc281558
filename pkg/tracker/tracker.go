// Package tracker keeps the progress of running and finished batch tasks.
//
// A Store is created once at process start and handed to whoever runs
// batches. Each task has a single writer (its batch) and any number of
// readers; readers always receive copies.
package tracker

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sdejongh/utfnorris/pkg/models"
)

var (
	// ErrTaskNotFound is returned for unknown task ids
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists is returned when creating a task id twice
	ErrTaskExists = errors.New("task already exists")

	// ErrTaskTerminal is returned when writing to a completed or failed task
	ErrTaskTerminal = errors.New("task already finished")
)

type entry struct {
	progress models.BatchProgress
	done     chan struct{}
}

// Store maps task ids to their progress
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*entry
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*entry),
	}
}

// Create registers a new task in the processing state
func (s *Store) Create(taskID string, totalFiles int) (models.BatchProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; exists {
		return models.BatchProgress{}, fmt.Errorf("%w: %s", ErrTaskExists, taskID)
	}

	e := &entry{
		progress: *models.NewBatchProgress(taskID, totalFiles),
		done:     make(chan struct{}),
	}
	s.tasks[taskID] = e

	return snapshot(e), nil
}

// Update records that the batch has started a file.
// Progress is clamped to [0, 100] and never moves backwards.
func (s *Store) Update(taskID string, progress float64, currentFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.writable(taskID)
	if err != nil {
		return err
	}

	p := &e.progress
	progress = math.Max(0, math.Min(100, progress))
	if progress > p.Progress {
		p.Progress = progress
	}

	completed := int(math.Floor(p.Progress / 100 * float64(p.TotalFiles)))
	if completed > p.TotalFiles {
		completed = p.TotalFiles
	}
	if completed > p.CompletedFiles {
		p.CompletedFiles = completed
	}

	p.CurrentFile = currentFile
	p.UpdatedAt = time.Now()

	return nil
}

// Complete moves the task to the completed state
func (s *Store) Complete(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.writable(taskID)
	if err != nil {
		return err
	}

	p := &e.progress
	p.Status = models.TaskCompleted
	p.Progress = 100
	p.CompletedFiles = p.TotalFiles
	p.CurrentFile = ""
	s.finish(e)

	return nil
}

// Fail moves the task to the error state
func (s *Store) Fail(taskID string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.writable(taskID)
	if err != nil {
		return err
	}

	e.progress.Status = models.TaskError
	e.progress.Error = message
	s.finish(e)

	return nil
}

// Get returns a copy of the task's progress
func (s *Store) Get(taskID string) (models.BatchProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tasks[taskID]
	if !ok {
		return models.BatchProgress{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	return snapshot(e), nil
}

// List returns copies of all tasks, oldest first
func (s *Store) List() []models.BatchProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.BatchProgress, 0, len(s.tasks))
	for _, e := range s.tasks {
		list = append(list, snapshot(e))
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].TaskID < list[j].TaskID
		}
		return list[i].StartedAt.Before(list[j].StartedAt)
	})

	return list
}

// Watch returns a channel that is closed once the task is terminal
func (s *Store) Watch(taskID string) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	return e.done, nil
}

// Remove forgets a finished task. Running tasks cannot be removed.
func (s *Store) Remove(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if !e.progress.Status.IsTerminal() {
		return fmt.Errorf("cannot remove running task %s", taskID)
	}

	delete(s.tasks, taskID)
	return nil
}

// Len returns the number of tracked tasks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// writable must be called with s.mu held
func (s *Store) writable(taskID string) (*entry, error) {
	e, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if e.progress.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrTaskTerminal, taskID, e.progress.Status)
	}
	return e, nil
}

// finish must be called with s.mu held
func (s *Store) finish(e *entry) {
	now := time.Now()
	e.progress.UpdatedAt = now
	e.progress.FinishedAt = &now
	close(e.done)
}

func snapshot(e *entry) models.BatchProgress {
	p := e.progress
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		p.FinishedAt = &t
	}
	return p
}
