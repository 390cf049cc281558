package models

import (
	"time"
)

// TaskStatus represents the lifecycle state of a batch task
type TaskStatus string

const (
	// TaskProcessing indicates the batch is still running
	TaskProcessing TaskStatus = "processing"
	// TaskCompleted indicates the batch loop finished
	TaskCompleted TaskStatus = "completed"
	// TaskError indicates a batch-level fault stopped the loop
	TaskError TaskStatus = "error"
)

// IsTerminal returns true for statuses that can never change again
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskError
}

// BatchProgress is the observable progress of one batch task
type BatchProgress struct {
	TaskID         string     `json:"task_id"`
	TotalFiles     int        `json:"total_files"`
	CompletedFiles int        `json:"completed_files"`
	CurrentFile    string     `json:"current_file,omitempty"`
	Progress       float64    `json:"progress"`
	Status         TaskStatus `json:"status"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// NewBatchProgress creates a progress record in the processing state
func NewBatchProgress(taskID string, totalFiles int) *BatchProgress {
	now := time.Now()
	return &BatchProgress{
		TaskID:     taskID,
		TotalFiles: totalFiles,
		Status:     TaskProcessing,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}
