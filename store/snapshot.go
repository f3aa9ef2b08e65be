package store

import (
	"log/slog"
	"strconv"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// Keys of the session bucket. A missing task id means there is no saved
// session.
const (
	keyTaskID              = "task_id"
	keyPhase               = "phase"
	keySecondsRemaining    = "seconds_remaining"
	keyCompletedIntervals  = "completed_interval_count"
	keyElapsedFocusSeconds = "elapsed_focus_seconds"
	keyIsRunning           = "is_running"
)

var snapshotKeys = []string{
	keyTaskID,
	keyPhase,
	keySecondsRemaining,
	keyCompletedIntervals,
	keyElapsedFocusSeconds,
	keyIsRunning,
}

// Snapshot saves the state of an in-progress session, replacing any previous
// snapshot.
func (c *Client) Snapshot(state models.SessionState) error {
	values := map[string]string{
		keyTaskID:              state.TaskID,
		keyPhase:               string(state.Phase),
		keySecondsRemaining:    strconv.Itoa(state.SecondsRemaining),
		keyCompletedIntervals:  strconv.Itoa(state.CompletedIntervals),
		keyElapsedFocusSeconds: strconv.Itoa(state.ElapsedFocusSeconds),
		keyIsRunning:           strconv.FormatBool(state.Running),
	}

	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))

		for k, v := range values {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}

		return nil
	})
}

// Restore returns the saved session if it belongs to taskID and removes it so
// that it cannot be replayed. The second return value reports whether the
// session was running when it was saved, which callers may treat as a hint to
// resume the clock. A snapshot of another task is left untouched and nil is
// returned.
func (c *Client) Restore(taskID string) (*models.SessionState, bool, error) {
	var state *models.SessionState

	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))

		owner := b.Get([]byte(keyTaskID))
		if owner == nil {
			return nil
		}

		if string(owner) != taskID {
			slog.Debug(
				"saved session belongs to another task",
				slog.String("saved_task", string(owner)),
				slog.String("requested_task", taskID),
			)

			return nil
		}

		s, err := decodeSnapshot(b)
		if err != nil {
			return err
		}

		state = s

		return clearSnapshot(b)
	})
	if err != nil {
		return nil, false, err
	}

	if state == nil {
		return nil, false, nil
	}

	return state, state.Running, nil
}

// ClearSnapshot discards the saved session, if any.
func (c *Client) ClearSnapshot() error {
	return c.Update(func(tx *bolt.Tx) error {
		return clearSnapshot(tx.Bucket([]byte(sessionBucket)))
	})
}

// SnapshotOwner returns the task id of the saved session, or an empty string.
func (c *Client) SnapshotOwner() (string, error) {
	var owner string

	err := c.View(func(tx *bolt.Tx) error {
		owner = string(tx.Bucket([]byte(sessionBucket)).Get([]byte(keyTaskID)))
		return nil
	})

	return owner, err
}

func clearSnapshot(b *bolt.Bucket) error {
	for _, k := range snapshotKeys {
		if err := b.Delete([]byte(k)); err != nil {
			return err
		}
	}

	return nil
}

func decodeSnapshot(b *bolt.Bucket) (*models.SessionState, error) {
	atoi := func(key string) (int, error) {
		v := b.Get([]byte(key))
		if v == nil {
			return 0, nil
		}

		n, err := strconv.Atoi(string(v))
		if err != nil {
			return 0, errCorruptSnapshot.Wrap(err)
		}

		return n, nil
	}

	remaining, err := atoi(keySecondsRemaining)
	if err != nil {
		return nil, err
	}

	intervals, err := atoi(keyCompletedIntervals)
	if err != nil {
		return nil, err
	}

	elapsed, err := atoi(keyElapsedFocusSeconds)
	if err != nil {
		return nil, err
	}

	var running bool

	if v := b.Get([]byte(keyIsRunning)); v != nil {
		running, err = strconv.ParseBool(string(v))
		if err != nil {
			return nil, errCorruptSnapshot.Wrap(err)
		}
	}

	return &models.SessionState{
		TaskID:              string(b.Get([]byte(keyTaskID))),
		Phase:               models.Phase(b.Get([]byte(keyPhase))),
		SecondsRemaining:    max(remaining, 0),
		CompletedIntervals:  max(intervals, 0),
		ElapsedFocusSeconds: max(elapsed, 0),
		Running:             running,
	}, nil
}
