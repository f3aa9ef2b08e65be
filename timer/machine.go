package timer

import (
	"github.com/ayoisaiah/focusguard/internal/models"
)

const secondsInAMinute = 60

// Transition describes a phase change produced by the machine.
type Transition struct {
	From            models.Phase
	To              models.Phase
	CreditedMinutes int
	Skipped         bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithAutoStart controls whether the clock keeps running after a focus phase
// ends (breaks) and after a break ends (focus).
func WithAutoStart(breaks, focus bool) MachineOption {
	return func(m *Machine) {
		m.autoStartBreak = breaks
		m.autoStartFocus = focus
	}
}

// Machine is the focus/break/completed state machine for one task. It is not
// safe for concurrent use.
type Machine struct {
	task           *models.Task
	clock          Clock
	phase          models.Phase
	intervals      int
	elapsedFocus   int
	autoStartBreak bool
	autoStartFocus bool
}

// NewMachine returns a machine in the focus phase with a full, stopped clock.
// Credited minutes are written to task.
func NewMachine(task *models.Task, opts ...MachineOption) (*Machine, error) {
	if task == nil || !task.Valid() {
		return nil, errInvalidTask
	}

	m := &Machine{
		task:           task,
		phase:          models.Focus,
		autoStartBreak: true,
		autoStartFocus: true,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.clock.Set(m.phaseSeconds(models.Focus))

	return m, nil
}

// phaseSeconds returns the configured length of a phase.
func (m *Machine) phaseSeconds(p models.Phase) int {
	switch p {
	case models.Focus:
		return m.task.BlockMinutes * secondsInAMinute
	case models.Break:
		return m.task.BreakMinutes * secondsInAMinute
	default:
		return 0
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() models.Phase {
	return m.phase
}

// Completed reports whether the machine has reached its final state.
func (m *Machine) Completed() bool {
	return m.phase == models.Completed
}

// Running reports whether the clock is counting down.
func (m *Machine) Running() bool {
	return m.clock.Running()
}

// Task returns a copy of the task being worked on.
func (m *Machine) Task() models.Task {
	return *m.task
}

// State returns a snapshot of the session.
func (m *Machine) State() models.SessionState {
	return models.SessionState{
		TaskID:              m.task.ID,
		Phase:               m.phase,
		SecondsRemaining:    m.clock.Remaining(),
		CompletedIntervals:  m.intervals,
		ElapsedFocusSeconds: m.elapsedFocus,
		Running:             m.clock.Running(),
	}
}

// FocusProgress returns the elapsed and total seconds of the current focus
// phase. Both are zero outside of a focus phase.
func (m *Machine) FocusProgress() (elapsed, total int) {
	if m.phase != models.Focus {
		return 0, 0
	}

	total = m.phaseSeconds(models.Focus)

	return total - m.clock.Remaining(), total
}

// Restore replaces the session state with a previously saved one. The clock
// is left stopped; the caller decides whether to resume.
func (m *Machine) Restore(s models.SessionState) error {
	if s.TaskID != m.task.ID {
		return errRestoreMismatch.Fmt(s.TaskID, m.task.ID)
	}

	switch s.Phase {
	case models.Focus, models.Break, models.Completed:
	default:
		return errUnknownPhase.Fmt(s.Phase)
	}

	m.phase = s.Phase
	m.intervals = max(s.CompletedIntervals, m.intervals)
	m.elapsedFocus = max(s.ElapsedFocusSeconds, 0)

	m.clock.Stop()
	m.clock.Set(min(s.SecondsRemaining, m.phaseSeconds(s.Phase)))

	return nil
}

// Start begins or resumes the countdown.
func (m *Machine) Start() {
	m.Resume()
}

// Pause stops the countdown without touching the remaining time.
func (m *Machine) Pause() {
	if m.Completed() {
		return
	}

	m.clock.Stop()
}

// Resume restarts a paused countdown. It does nothing once completed.
func (m *Machine) Resume() {
	if m.Completed() {
		return
	}

	m.clock.Start()
}

// Reset restores the full duration of the current phase.
func (m *Machine) Reset() {
	if m.Completed() {
		return
	}

	m.clock.Set(m.phaseSeconds(m.phase))
}

// Tick advances the session by one second. It returns the resulting
// transition when the current phase ran out, and nil otherwise.
func (m *Machine) Tick() *Transition {
	if m.Completed() || !m.clock.Running() {
		return nil
	}

	before := m.clock.Remaining()

	expired := m.clock.Tick()

	if m.phase == models.Focus {
		m.elapsedFocus += before - m.clock.Remaining()
	}

	if !expired {
		return nil
	}

	return m.completeCurrentPhase(false)
}

// Skip ends the current phase early. A skipped focus phase is credited with
// the whole minutes that actually elapsed.
func (m *Machine) Skip() *Transition {
	if m.Completed() {
		return nil
	}

	return m.completeCurrentPhase(true)
}

func (m *Machine) completeCurrentPhase(skipped bool) *Transition {
	t := &Transition{
		From:    m.phase,
		Skipped: skipped,
	}

	wasRunning := m.clock.Running()

	switch m.phase {
	case models.Focus:
		credit := m.task.BlockMinutes

		if skipped {
			elapsed := m.phaseSeconds(models.Focus) - m.clock.Remaining()
			credit = elapsed / secondsInAMinute
		}

		before := m.task.CompletedMinutes

		m.task.Credit(credit)

		t.CreditedMinutes = m.task.CompletedMinutes - before

		m.intervals++

		if m.task.CompletionPercentage() >= 100 ||
			m.intervals >= m.task.MaxIntervals() {
			m.phase = models.Completed
			m.clock.Stop()
			m.clock.Set(0)

			break
		}

		m.enter(models.Break, m.autoStartBreak || (skipped && wasRunning))
	case models.Break:
		m.enter(models.Focus, m.autoStartFocus || (skipped && wasRunning))
	}

	t.To = m.phase

	return t
}

func (m *Machine) enter(p models.Phase, run bool) {
	m.phase = p
	m.clock.Stop()
	m.clock.Set(m.phaseSeconds(p))

	if run {
		m.clock.Start()
	}
}
