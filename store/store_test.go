package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/focusguard/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "focusguard.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := newTestClient(t)

	states := []models.SessionState{
		{
			TaskID:              "a",
			Phase:               models.Focus,
			SecondsRemaining:    1234,
			CompletedIntervals:  2,
			ElapsedFocusSeconds: 3266,
			Running:             true,
		},
		{
			TaskID:             "b",
			Phase:              models.Break,
			SecondsRemaining:   0,
			CompletedIntervals: 0,
			Running:            false,
		},
		{
			TaskID:             "c",
			Phase:              models.Completed,
			CompletedIntervals: 4,
		},
	}

	for _, want := range states {
		require.NoError(t, c.Snapshot(want))

		got, resume, err := c.Restore(want.TaskID)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, want, *got)
		assert.Equal(t, want.Running, resume)
	}
}

func TestRestoreIsSingleUse(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Snapshot(models.SessionState{
		TaskID:           "a",
		Phase:            models.Focus,
		SecondsRemaining: 60,
	}))

	got, _, err := c.Restore("a")
	require.NoError(t, err)
	require.NotNil(t, got)

	got, resume, err := c.Restore("a")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, resume)
}

func TestRestoreUnknownTask(t *testing.T) {
	c := newTestClient(t)

	got, _, err := c.Restore("never-saved")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRestoreMismatchKeepsSnapshot(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Snapshot(models.SessionState{
		TaskID: "a",
		Phase:  models.Break,
	}))

	got, _, err := c.Restore("b")
	require.NoError(t, err)
	assert.Nil(t, got)

	owner, err := c.SnapshotOwner()
	require.NoError(t, err)
	assert.Equal(t, "a", owner)

	require.NoError(t, c.ClearSnapshot())

	owner, err = c.SnapshotOwner()
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestTasks(t *testing.T) {
	c := newTestClient(t)

	now := time.Now()

	second := &models.Task{ID: "2", Title: "review", CreatedAt: now, TotalMinutes: 25, BlockMinutes: 25}
	first := &models.Task{ID: "1", Title: "write", CreatedAt: now.Add(-time.Hour), TotalMinutes: 50, BlockMinutes: 25, BreakMinutes: 5}

	require.NoError(t, c.SaveTask(second))
	require.NoError(t, c.SaveTask(first))

	first.CompletedMinutes = 25
	require.NoError(t, c.SaveTask(first))

	got, err := c.GetTask("1")
	require.NoError(t, err)
	assert.Equal(t, 25, got.CompletedMinutes)

	tasks, err := c.Tasks()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "2", tasks[1].ID)

	require.NoError(t, c.Snapshot(models.SessionState{TaskID: "1", Phase: models.Focus}))
	require.NoError(t, c.DeleteTask("1"))

	_, err = c.GetTask("1")
	assert.ErrorIs(t, err, errTaskNotFound)

	owner, err := c.SnapshotOwner()
	require.NoError(t, err)
	assert.Empty(t, owner)

	assert.ErrorIs(t, c.DeleteTask("1"), errTaskNotFound)
}

func TestAuthorizations(t *testing.T) {
	c := newTestClient(t)

	ok, err := c.Authorized("screen_time")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetAuthorized("screen_time", true))

	ok, err = c.Authorized("screen_time")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.SetAuthorized("screen_time", false))

	ok, err = c.Authorized("screen_time")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAttemptHistoryEvictsOldest(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	h := c.AttemptHistory(3)

	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	domains := []string{"a.com", "b.com", "c.com", "d.com", "e.com"}
	for i, d := range domains {
		require.NoError(t, h.Record(ctx, models.BlockedAttempt{
			Domain: d,
			Time:   start.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := h.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "c.com", entries[0].Domain)
	assert.Equal(t, "e.com", entries[2].Domain)

	recent, err := c.Attempts(start.Add(4 * time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "e.com", recent[0].Domain)

	require.NoError(t, h.Clear(ctx))

	entries, err = h.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSecondClientIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusguard.db")

	c, err := NewClient(path)
	require.NoError(t, err)

	defer c.Close()

	_, err = NewClient(path)
	assert.ErrorIs(t, err, errFocusRunning)
}
