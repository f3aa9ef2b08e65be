// Package timer drives focus sessions: it ticks the phase state machine,
// arms and disarms blocking as phases change and saves the session when it is
// interrupted
package timer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/event"
	"github.com/ayoisaiah/focusguard/internal/models"
)

// Store persists tasks and interrupted sessions.
type Store interface {
	SaveTask(task *models.Task) error
	Snapshot(state models.SessionState) error
	Restore(taskID string) (*models.SessionState, bool, error)
	ClearSnapshot() error
}

// Blocker enforces blocking during focus phases.
type Blocker interface {
	ArmForFocus(
		ctx context.Context,
		cfg *blocking.Config,
		phase models.SessionState,
	) (blocking.Results, error)
	Disarm(ctx context.Context) error
	RequestEmergencyAccess(
		ctx context.Context,
		reason string,
		p blocking.FocusProgress,
	) bool
	RequestAuthorization(ctx context.Context, k blocking.Kind) (bool, error)
	Status() blocking.Status
}

// Option configures a Timer.
type Option func(*Timer)

// WithEmitter publishes session events to e.
func WithEmitter(e event.Emitter) Option {
	return func(t *Timer) {
		t.events = e
	}
}

// WithPolicy sets where the blocking policy is read from. It is consulted
// every time a focus phase is entered so that edits made during a session
// apply from the next focus phase.
func WithPolicy(policy func() *blocking.Config) Option {
	return func(t *Timer) {
		t.policy = policy
	}
}

// WithStatusFile writes the session status to path on every tick.
func WithStatusFile(path string) Option {
	return func(t *Timer) {
		t.statusFile = path
	}
}

// WithMachineOptions configures the underlying state machine.
func WithMachineOptions(opts ...MachineOption) Option {
	return func(t *Timer) {
		t.machineOpts = append(t.machineOpts, opts...)
	}
}

// Timer runs a session for one task.
type Timer struct {
	now         func() time.Time
	machine     *Machine
	store       Store
	blocker     Blocker
	events      event.Emitter
	policy      func() *blocking.Config
	queue       *opQueue
	stop        chan struct{}
	completed   chan struct{}
	statusFile  string
	results     blocking.Results
	machineOpts []MachineOption
	tickEvery   time.Duration
	mu          sync.Mutex
	stopOnce    sync.Once
	doneOnce    sync.Once
	focusArmed  bool
	closed      bool
}

// New returns a timer for task in its first focus phase with the clock
// stopped.
func New(
	task *models.Task,
	store Store,
	blocker Blocker,
	opts ...Option,
) (*Timer, error) {
	t := &Timer{
		store:     store,
		blocker:   blocker,
		now:       time.Now,
		stop:      make(chan struct{}),
		completed: make(chan struct{}),
		tickEvery: time.Second,
		policy: func() *blocking.Config {
			return &blocking.Config{}
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	m, err := NewMachine(task, t.machineOpts...)
	if err != nil {
		return nil, err
	}

	t.machine = m
	t.queue = newOpQueue()

	return t, nil
}

// Restore rehydrates the machine from the task's saved session. It reports
// whether a session was found. Storage failures are logged and treated as no
// saved session. A session that was running when it was saved is resumed. A
// restored focus phase is armed whether or not it resumes.
func (t *Timer) Restore(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	task := t.machine.Task()

	state, autoResume, err := t.store.Restore(task.ID)
	if err != nil {
		slog.WarnContext(
			ctx,
			"unable to read saved session",
			slog.String("task", task.ID),
			slog.Any("error", err),
		)

		return false
	}

	if state == nil {
		return false
	}

	if err := t.machine.Restore(*state); err != nil {
		slog.WarnContext(ctx, "discarding saved session", slog.Any("error", err))
		return false
	}

	slog.InfoContext(
		ctx,
		"session restored",
		slog.String("task", task.ID),
		slog.String("phase", string(state.Phase)),
		slog.Int("seconds_remaining", state.SecondsRemaining),
		slog.Bool("auto_resume", autoResume),
	)

	if t.machine.Completed() {
		t.markCompleted()
		return true
	}

	if autoResume {
		t.machine.Resume()
	}

	t.ensureArmedLocked()

	return true
}

// Start begins the countdown and arms blocking for a focus phase.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.machine.Start()
	t.ensureArmedLocked()
}

// Pause stops the countdown. Focus phases cannot be paused at the maximum
// blocking level. Blocking stays armed while paused.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.machine.Phase() == models.Focus && t.strict() {
		return errStrictMode
	}

	t.machine.Pause()

	return nil
}

// Resume restarts a paused countdown.
func (t *Timer) Resume() {
	t.Start()
}

// Toggle pauses a running countdown and resumes a paused one.
func (t *Timer) Toggle() error {
	t.mu.Lock()
	running := t.machine.Running()
	t.mu.Unlock()

	if running {
		return t.Pause()
	}

	t.Resume()

	return nil
}

// Reset restores the full length of the current phase.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.machine.Reset()
}

// Skip ends the current phase early.
func (t *Timer) Skip(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr := t.machine.Skip(); tr != nil {
		t.handleTransitionLocked(ctx, tr)
	}
}

// Tick advances the session by one second.
func (t *Timer) Tick(ctx context.Context) {
	t.mu.Lock()

	if tr := t.machine.Tick(); tr != nil {
		t.handleTransitionLocked(ctx, tr)
	}

	state := t.machine.State()
	task := t.machine.Task()

	t.mu.Unlock()

	if t.statusFile != "" {
		err := writeStatusFile(t.statusFile, t.status(state, task))
		if err != nil {
			slog.DebugContext(ctx, "unable to write status file", slog.Any("error", err))
		}
	}
}

// Run ticks the session once a second until it completes, ctx is cancelled
// or the timer is stopped. It returns nil when the session completes.
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return nil
		case <-t.completed:
			return nil
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Done is closed when the session completes.
func (t *Timer) Done() <-chan struct{} {
	return t.completed
}

// EmergencyAccess asks for blocking to be lifted for the rest of the current
// focus phase. The request is queued behind pending arm and disarm operations.
func (t *Timer) EmergencyAccess(ctx context.Context, reason string) bool {
	t.mu.Lock()
	elapsed, total := t.machine.FocusProgress()
	t.mu.Unlock()

	if total == 0 {
		return false
	}

	p := blocking.FocusProgress{
		Elapsed:  time.Duration(elapsed) * time.Second,
		Duration: time.Duration(total) * time.Second,
	}

	result := make(chan bool, 1)

	ok := t.queue.push(func(opCtx context.Context) {
		result <- t.blocker.RequestEmergencyAccess(opCtx, reason, p)
	})
	if !ok {
		return false
	}

	select {
	case granted := <-result:
		return granted
	case <-ctx.Done():
		return false
	}
}

// RequestAuthorization asks a layer for permission. The session is saved
// first because granting may require the process to be restarted. A granted
// layer is armed straight away during a focus phase.
func (t *Timer) RequestAuthorization(
	ctx context.Context,
	k blocking.Kind,
) (bool, error) {
	t.mu.Lock()
	t.snapshotLocked(ctx)
	t.mu.Unlock()

	granted, err := t.blocker.RequestAuthorization(ctx, k)
	if err != nil || !granted {
		return granted, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.machine.Phase() == models.Focus {
		t.focusArmed = false
		t.ensureArmedLocked()
	}

	return true, nil
}

// Suspend saves the session so it can be restored later, then disarms
// blocking once pending operations are done.
func (t *Timer) Suspend(ctx context.Context) error {
	return t.shutdown(ctx, true)
}

// Exit ends the session without saving it and disarms blocking once pending
// operations are done.
func (t *Timer) Exit(ctx context.Context) error {
	return t.shutdown(ctx, false)
}

func (t *Timer) shutdown(ctx context.Context, save bool) error {
	t.stopOnce.Do(func() {
		close(t.stop)
	})

	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return errSessionClosed
	}

	t.closed = true

	if save && !t.machine.Completed() {
		t.snapshotLocked(ctx)
	} else if err := t.store.ClearSnapshot(); err != nil {
		slog.WarnContext(ctx, "unable to clear saved session", slog.Any("error", err))
	}

	t.mu.Unlock()

	t.queue.drain()

	err := t.blocker.Disarm(context.WithoutCancel(ctx))

	if t.statusFile != "" {
		if rerr := os.Remove(t.statusFile); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			slog.DebugContext(ctx, "unable to remove status file", slog.Any("error", rerr))
		}
	}

	return err
}

// State returns the current session state.
func (t *Timer) State() models.SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.machine.State()
}

// Task returns the task as credited so far.
func (t *Timer) Task() models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.machine.Task()
}

// Results returns the outcome of the last arming attempt.
func (t *Timer) Results() blocking.Results {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.results
}

// Strict reports whether focus phases may not be paused.
func (t *Timer) Strict() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.strict()
}

func (t *Timer) strict() bool {
	return t.policy().Level >= blocking.Maximum
}

// snapshotLocked saves the machine. Failures are logged; the session carries
// on without a saved copy.
func (t *Timer) snapshotLocked(ctx context.Context) {
	state := t.machine.State()

	if err := t.store.Snapshot(state); err != nil {
		slog.WarnContext(ctx, "unable to save session", slog.Any("error", err))
	}
}

// ensureArmedLocked queues arming for the current focus phase unless it
// already has been.
func (t *Timer) ensureArmedLocked() {
	if t.machine.Phase() != models.Focus || t.focusArmed || t.closed {
		return
	}

	t.focusArmed = true

	t.enqueueArm(t.machine.State())
}

func (t *Timer) enqueueArm(state models.SessionState) {
	cfg := t.policy()

	t.queue.push(func(ctx context.Context) {
		results, err := t.blocker.ArmForFocus(ctx, cfg, state)
		if err != nil {
			slog.WarnContext(ctx, "unable to arm blocking", slog.Any("error", err))
			return
		}

		t.mu.Lock()
		t.results = results
		t.mu.Unlock()
	})
}

func (t *Timer) enqueueDisarm() {
	t.focusArmed = false

	t.queue.push(func(ctx context.Context) {
		if err := t.blocker.Disarm(ctx); err != nil {
			slog.WarnContext(ctx, "unable to disarm blocking", slog.Any("error", err))
		}
	})
}

func (t *Timer) handleTransitionLocked(ctx context.Context, tr *Transition) {
	task := t.machine.Task()
	state := t.machine.State()

	slog.InfoContext(
		ctx,
		"phase completed",
		slog.String("task", task.ID),
		slog.String("from", string(tr.From)),
		slog.String("to", string(tr.To)),
		slog.Bool("skipped", tr.Skipped),
		slog.Int("credited_minutes", tr.CreditedMinutes),
	)

	if tr.From == models.Focus {
		if err := t.store.SaveTask(&task); err != nil {
			slog.WarnContext(ctx, "unable to save task progress", slog.Any("error", err))
		}
	}

	switch tr.To {
	case models.Break:
		t.enqueueDisarm()
	case models.Focus:
		t.enqueueDisarm()
		t.focusArmed = true
		t.enqueueArm(state)
	case models.Completed:
		t.enqueueDisarm()

		if err := t.store.ClearSnapshot(); err != nil {
			slog.WarnContext(ctx, "unable to clear saved session", slog.Any("error", err))
		}
	}

	t.publish(event.Event{
		Kind:   event.PhaseCompleted,
		TaskID: task.ID,
		From:   tr.From,
		To:     tr.To,
	})

	if tr.To == models.Completed {
		t.publish(event.Event{
			Kind:   event.SessionCompleted,
			TaskID: task.ID,
			From:   tr.From,
			To:     tr.To,
		})

		t.markCompleted()
	}
}

func (t *Timer) markCompleted() {
	t.doneOnce.Do(func() {
		close(t.completed)
	})
}

func (t *Timer) publish(e event.Event) {
	if t.events == nil {
		return
	}

	e.Time = t.now()

	t.events.Publish(e)
}

// PhaseSeconds returns the full length of the current phase.
func (t *Timer) PhaseSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.machine.phaseSeconds(t.machine.Phase())
}

// Blocking returns the coordinator's status.
func (t *Timer) Blocking() blocking.Status {
	return t.blocker.Status()
}
