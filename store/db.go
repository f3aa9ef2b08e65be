package store

import (
	"time"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// SaveTask creates or overwrites a task
	SaveTask(task *models.Task) error
	// GetTask returns the task with the given id
	GetTask(id string) (*models.Task, error)
	// Tasks returns every saved task ordered by creation time
	Tasks() ([]*models.Task, error)
	// DeleteTask removes a task and any snapshot that belongs to it
	DeleteTask(id string) error
	// Snapshot stores the state of an in-progress session
	Snapshot(state models.SessionState) error
	// Restore returns the saved session of a task (if any) and consumes it
	Restore(taskID string) (*models.SessionState, bool, error)
	// ClearSnapshot discards the saved session
	ClearSnapshot() error
	// SetAuthorized records the user's decision for a blocking layer
	SetAuthorized(layer string, granted bool) error
	// Authorized reports whether the user granted a blocking layer
	Authorized(layer string) (bool, error)
	// Attempts returns blocked access attempts recorded since the given time
	Attempts(since time.Time) ([]models.BlockedAttempt, error)
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}

var _ DB = (*Client)(nil)
