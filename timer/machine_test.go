package timer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/focusguard/internal/models"
)

func newTask(total, block, brk int) *models.Task {
	return &models.Task{
		ID:           "task-1",
		Title:        "write report",
		TotalMinutes: total,
		BlockMinutes: block,
		BreakMinutes: brk,
	}
}

func newRunningMachine(t *testing.T, task *models.Task) *Machine {
	t.Helper()

	m, err := NewMachine(task)
	require.NoError(t, err)

	m.Start()

	return m
}

// tickN ticks the machine n times and returns the last transition seen.
func tickN(m *Machine, n int) *Transition {
	var last *Transition

	for range n {
		if tr := m.Tick(); tr != nil {
			last = tr
		}
	}

	return last
}

func TestNewMachineRejectsInvalidTasks(t *testing.T) {
	cases := []*models.Task{
		nil,
		newTask(50, 0, 5),
		newTask(0, 25, 5),
		newTask(50, 25, -1),
	}

	for _, task := range cases {
		_, err := NewMachine(task)
		assert.ErrorIs(t, err, errInvalidTask)
	}
}

func TestFocusToBreak(t *testing.T) {
	cases := []struct {
		total, block, brk int
	}{
		{50, 25, 5},
		{120, 50, 10},
		{90, 1, 0},
		{10, 3, 2},
	}

	for _, tc := range cases {
		task := newTask(tc.total, tc.block, tc.brk)
		m := newRunningMachine(t, task)

		tr := tickN(m, tc.block*60)
		require.NotNil(t, tr)

		assert.Equal(t, models.Focus, tr.From)
		assert.Equal(t, models.Break, tr.To)
		assert.Equal(t, models.Break, m.Phase())
		assert.Equal(t, tc.brk*60, m.State().SecondsRemaining)
		assert.Equal(t, tc.block, m.Task().CompletedMinutes)
		assert.Equal(t, tc.block, tr.CreditedMinutes)
	}
}

func TestTaskRunToCompletion(t *testing.T) {
	task := newTask(50, 25, 5)
	m := newRunningMachine(t, task)

	tickN(m, 1500)
	assert.Equal(t, models.Break, m.Phase())
	assert.Equal(t, 300, m.State().SecondsRemaining)

	tickN(m, 300)

	want := models.SessionState{
		TaskID:              "task-1",
		Phase:               models.Focus,
		SecondsRemaining:    1500,
		CompletedIntervals:  1,
		ElapsedFocusSeconds: 1500,
		Running:             true,
	}

	if diff := cmp.Diff(want, m.State()); diff != "" {
		t.Fatalf("unexpected state (-want +got):\n%s", diff)
	}

	assert.Equal(t, 25, task.CompletedMinutes)

	tr := tickN(m, 1500)
	require.NotNil(t, tr)

	assert.Equal(t, models.Completed, tr.To)
	assert.Equal(t, 50, task.CompletedMinutes)
	assert.True(t, m.Completed())
	assert.False(t, m.Running())
	assert.Equal(t, 2, m.State().CompletedIntervals)
}

func TestIntervalBoundForcesCompletion(t *testing.T) {
	// 60/25 needs ceil(2.4) = 3 intervals; skipping keeps credit low so only
	// the bound can end the task.
	task := newTask(60, 25, 5)
	m := newRunningMachine(t, task)

	for range 3 {
		tickN(m, 60)

		tr := m.Skip()
		require.NotNil(t, tr)

		if tr.To == models.Break {
			m.Skip()
		}
	}

	assert.True(t, m.Completed())
	assert.Equal(t, 3, task.CompletedMinutes)
	assert.Equal(t, 3, m.State().CompletedIntervals)
}

func TestTickWhilePausedIsNoop(t *testing.T) {
	m := newRunningMachine(t, newTask(50, 25, 5))

	tickN(m, 10)
	m.Pause()

	before := m.State()

	assert.Nil(t, m.Tick())
	assert.Equal(t, before, m.State())

	m.Resume()
	m.Tick()

	assert.Equal(t, before.SecondsRemaining-1, m.State().SecondsRemaining)
}

func TestSkipWithZeroElapsedCreditsNothing(t *testing.T) {
	task := newTask(50, 25, 5)
	m := newRunningMachine(t, task)

	tr := m.Skip()
	require.NotNil(t, tr)

	assert.Equal(t, models.Break, tr.To)
	assert.True(t, tr.Skipped)
	assert.Equal(t, 0, tr.CreditedMinutes)
	assert.Equal(t, 0, task.CompletedMinutes)
	assert.Equal(t, 1, m.State().CompletedIntervals)
	assert.Equal(t, 300, m.State().SecondsRemaining)
}

func TestSkipCreditsElapsedMinutes(t *testing.T) {
	task := newTask(50, 25, 5)
	m := newRunningMachine(t, task)

	tickN(m, 10*60+59)

	tr := m.Skip()
	require.NotNil(t, tr)

	assert.Equal(t, 10, tr.CreditedMinutes)
	assert.Equal(t, 10, task.CompletedMinutes)
}

func TestSkipBreakGrantsNoCredit(t *testing.T) {
	task := newTask(50, 25, 5)
	m := newRunningMachine(t, task)

	tickN(m, 1500)
	tickN(m, 100)

	tr := m.Skip()
	require.NotNil(t, tr)

	assert.Equal(t, models.Break, tr.From)
	assert.Equal(t, models.Focus, tr.To)
	assert.Equal(t, 25, task.CompletedMinutes)
	assert.Equal(t, 1500, m.State().SecondsRemaining)
}

func TestResetKeepsPhaseAndIntervals(t *testing.T) {
	m := newRunningMachine(t, newTask(50, 25, 5))

	tickN(m, 1500+42)
	m.Reset()

	s := m.State()
	assert.Equal(t, models.Break, s.Phase)
	assert.Equal(t, 300, s.SecondsRemaining)
	assert.Equal(t, 1, s.CompletedIntervals)
}

func TestControlsAfterCompletionAreNoops(t *testing.T) {
	task := newTask(25, 25, 5)
	m := newRunningMachine(t, task)

	tickN(m, 1500)
	require.True(t, m.Completed())

	before := m.State()

	m.Resume()
	m.Reset()
	m.Pause()

	assert.Nil(t, m.Skip())
	assert.Nil(t, m.Tick())
	assert.Equal(t, before, m.State())
	assert.Equal(t, 25, task.CompletedMinutes)
}

func TestCompletedMinutesIsClamped(t *testing.T) {
	task := newTask(30, 25, 5)
	m := newRunningMachine(t, task)

	tickN(m, 1500+300+1500)

	assert.True(t, m.Completed())
	assert.Equal(t, 30, task.CompletedMinutes)
	assert.InDelta(t, 100, task.CompletionPercentage(), 0.001)
}

func TestZeroLengthBreakEndsOnNextTick(t *testing.T) {
	m := newRunningMachine(t, newTask(100, 1, 0))

	tr := tickN(m, 60)
	require.NotNil(t, tr)
	assert.Equal(t, models.Break, tr.To)

	tr = m.Tick()
	require.NotNil(t, tr)
	assert.Equal(t, models.Focus, tr.To)
	assert.Equal(t, 60, m.State().SecondsRemaining)
}

func TestAutoStartDisabledWaitsForResume(t *testing.T) {
	m, err := NewMachine(newTask(50, 25, 5), WithAutoStart(false, false))
	require.NoError(t, err)

	m.Start()
	tickN(m, 1500)

	assert.Equal(t, models.Break, m.Phase())
	assert.False(t, m.Running())
	assert.Nil(t, m.Tick())

	m.Resume()
	tickN(m, 300)

	assert.Equal(t, models.Focus, m.Phase())
	assert.False(t, m.Running())
}

func TestFocusProgress(t *testing.T) {
	m := newRunningMachine(t, newTask(50, 25, 5))

	tickN(m, 1200)

	elapsed, total := m.FocusProgress()
	assert.Equal(t, 1200, elapsed)
	assert.Equal(t, 1500, total)

	tickN(m, 300)

	elapsed, total = m.FocusProgress()
	assert.Zero(t, elapsed)
	assert.Zero(t, total)
}

func TestRestore(t *testing.T) {
	m, err := NewMachine(newTask(50, 25, 5))
	require.NoError(t, err)

	err = m.Restore(models.SessionState{
		TaskID:             "task-1",
		Phase:              models.Break,
		SecondsRemaining:   9999,
		CompletedIntervals: 1,
		Running:            true,
	})
	require.NoError(t, err)

	s := m.State()
	assert.Equal(t, models.Break, s.Phase)
	assert.Equal(t, 300, s.SecondsRemaining)
	assert.Equal(t, 1, s.CompletedIntervals)
	assert.False(t, s.Running)

	err = m.Restore(models.SessionState{TaskID: "other", Phase: models.Focus})
	assert.ErrorIs(t, err, errRestoreMismatch)

	err = m.Restore(models.SessionState{TaskID: "task-1", Phase: "nap"})
	assert.ErrorIs(t, err, errUnknownPhase)
}
