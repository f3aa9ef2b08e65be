package blocking

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ayoisaiah/focusguard/internal/event"
	"github.com/ayoisaiah/focusguard/internal/models"
)

// State is the coordinator's own lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateArming    State = "arming"
	StateArmed     State = "armed"
	StateDisarming State = "disarming"
)

// maxFailedEntries is the number of consecutive focus phases a layer may fail
// to enable before it is left off for the rest of the session.
const maxFailedEntries = 2

// Session records what is enforced during one focus phase. It is never
// persisted.
type Session struct {
	StartedAt             time.Time
	OverrideAt            time.Time
	Results               Results
	OverrideReason        string
	Phase                 models.SessionState
	Armed                 []Kind
	EmergencyOverrideUsed bool
}

type failure struct {
	err   error
	count int
}

// Coordinator turns focus phases into enforcement across independent layers.
// Arm, disarm and override requests never run concurrently; they are
// serialized in the order they acquire the coordinator.
type Coordinator struct {
	now      func() time.Time
	events   event.Emitter
	sem      *semaphore.Weighted
	session  *Session
	focus    *models.SessionState // phase being enforced, nil between phases
	failures map[Kind]*failure
	cfg      Config
	layers   []Layer
	state    State
	mu       sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEmitter publishes coordinator events to e.
func WithEmitter(e event.Emitter) Option {
	return func(c *Coordinator) {
		c.events = e
	}
}

// WithClock overrides the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New returns an idle coordinator for the given layers. Layers are armed
// concurrently and disarmed in reverse of the order given.
func New(layers []Layer, opts ...Option) *Coordinator {
	c := &Coordinator{
		layers:   layers,
		sem:      semaphore.NewWeighted(1),
		failures: make(map[Kind]*failure),
		state:    StateIdle,
		now:      time.Now,
		cfg: Config{
			EmergencyAccessFraction: DefaultEmergencyAccessFraction,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Status is a snapshot of the coordinator for display.
type Status struct {
	Session *Session
	State   State
}

// Status returns the current state and a copy of the blocking session.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{State: c.state}

	if c.session != nil {
		sess := *c.session
		sess.Armed = slices.Clone(c.session.Armed)
		sess.Results = slices.Clone(c.session.Results)
		s.Session = &sess
	}

	return s
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ArmForFocus enables every layer whose preconditions hold for cfg. Layers
// are attempted concurrently and independently; the result of each is
// reported separately. Calling it while layers are armed re-evaluates the
// layers that are not, leaving armed ones in place.
//
// Once the coordinator has been acquired the layer operations run to
// completion even if ctx is cancelled.
func (c *Coordinator) ArmForFocus(
	ctx context.Context,
	cfg *Config,
	phase models.SessionState,
) (Results, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	opCtx := context.WithoutCancel(ctx)

	c.mu.Lock()

	c.cfg = *cfg
	c.focus = &phase

	if c.session == nil {
		c.session = &Session{
			StartedAt: c.now(),
		}
	}

	sess := c.session
	sess.Phase = phase
	c.state = StateArming

	c.mu.Unlock()

	results := make(Results, len(c.layers))

	var g errgroup.Group

	for i, l := range c.layers {
		g.Go(func() error {
			results[i] = c.armLayer(opCtx, l, cfg, sess)
			return nil
		})
	}

	_ = g.Wait()

	c.mu.Lock()

	for _, r := range results {
		if r.Outcome == Armed && !slices.Contains(sess.Armed, r.Layer) {
			sess.Armed = append(sess.Armed, r.Layer)
		}
	}

	sess.Results = results

	switch {
	case len(sess.Armed) > 0:
		c.state = StateArmed
	case sess.EmergencyOverrideUsed, hasFailed(results):
		// kept so the override and per-phase retry limits hold until Disarm
		c.state = StateIdle
	default:
		c.session = nil
		c.state = StateIdle
	}

	c.mu.Unlock()

	logResults(ctx, cfg.Level, results)

	return results, nil
}

func hasFailed(results Results) bool {
	return slices.ContainsFunc(results, func(r LayerResult) bool {
		return r.Outcome == Failed
	})
}

func (c *Coordinator) armLayer(
	ctx context.Context,
	l Layer,
	cfg *Config,
	sess *Session,
) LayerResult {
	k := l.Kind()
	res := LayerResult{Layer: k}

	if sess.EmergencyOverrideUsed {
		res.Outcome = SkippedOverride
		return res
	}

	if cfg.Level < minLevel(k) {
		res.Outcome = SkippedByLevel
		return res
	}

	if slices.Contains(sess.Armed, k) {
		res.Outcome = Armed
		return res
	}

	// a layer that failed during this focus phase is not retried until the
	// next one
	if prev, ok := sess.Results.Get(k); ok && prev.Outcome == Failed {
		return prev
	}

	c.mu.Lock()
	f := c.failures[k]
	c.mu.Unlock()

	if f != nil && f.count >= maxFailedEntries {
		res.Outcome = Failed
		res.Err = errGaveUp.Fmt(k).Wrap(f.err)

		return res
	}

	if !l.Authorized(ctx, cfg) {
		res.Outcome = SkippedUnauthorized
		res.Err = ErrAuthorizationDenied.Fmt(k)

		return res
	}

	err := l.Enable(ctx, cfg.Targets())
	if err != nil {
		if errors.Is(err, ErrAuthorizationDenied) ||
			errors.Is(err, fs.ErrPermission) {
			res.Outcome = SkippedUnauthorized
			res.Err = ErrAuthorizationDenied.Fmt(k).Wrap(err)

			return res
		}

		c.mu.Lock()
		if f == nil {
			f = &failure{}
			c.failures[k] = f
		}

		f.count++
		f.err = err
		c.mu.Unlock()

		res.Outcome = Failed
		res.Err = ErrEnforcementFailed.Fmt(k).Wrap(err)

		return res
	}

	c.mu.Lock()
	delete(c.failures, k)
	c.mu.Unlock()

	res.Outcome = Armed

	return res
}

func logResults(ctx context.Context, level Level, results Results) {
	for _, r := range results {
		attrs := []any{
			slog.String("layer", string(r.Layer)),
			slog.String("outcome", r.Outcome.String()),
			slog.String("level", level.String()),
		}

		switch r.Outcome {
		case SkippedUnauthorized, Failed:
			slog.WarnContext(ctx, "blocking layer not armed", append(attrs, slog.Any("error", r.Err))...)
		default:
			slog.DebugContext(ctx, "blocking layer evaluated", attrs...)
		}
	}
}

// Disarm removes every armed layer in reverse of the order the layers were
// given to New and ends the blocking session. It waits for an in-flight arm to finish first and is a
// no-op when nothing is armed. Errors from individual layers are joined; the
// layers are considered disarmed regardless.
func (c *Coordinator) Disarm(ctx context.Context) error {
	opCtx := context.WithoutCancel(ctx)

	if err := c.sem.Acquire(opCtx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	err := c.disarmLayers(opCtx)

	c.mu.Lock()
	c.session = nil
	c.focus = nil
	c.state = StateIdle
	c.mu.Unlock()

	return err
}

// disarmLayers must be called with the coordinator acquired.
func (c *Coordinator) disarmLayers(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil || len(sess.Armed) == 0 {
		return nil
	}

	c.setState(StateDisarming)

	var errs []error

	for i := len(sess.Armed) - 1; i >= 0; i-- {
		k := sess.Armed[i]

		l := c.layer(k)
		if l == nil {
			continue
		}

		if err := l.Disable(ctx); err != nil {
			slog.ErrorContext(
				ctx,
				"unable to disarm blocking layer",
				slog.String("layer", string(k)),
				slog.Any("error", err),
			)

			errs = append(errs, err)
		}
	}

	c.mu.Lock()
	sess.Armed = nil
	c.state = StateIdle
	c.mu.Unlock()

	return errors.Join(errs...)
}

func (c *Coordinator) layer(k Kind) Layer {
	for _, l := range c.layers {
		if l.Kind() == k {
			return l
		}
	}

	return nil
}

// Layer returns the layer of the given kind, or nil.
func (c *Coordinator) Layer(k Kind) Layer {
	return c.layer(k)
}

// RequestAuthorization asks a layer to obtain permission to enforce itself.
func (c *Coordinator) RequestAuthorization(
	ctx context.Context,
	k Kind,
) (bool, error) {
	l := c.layer(k)
	if l == nil {
		return false, errLayerUnavailable.Fmt(k)
	}

	return l.RequestAuthorization(ctx)
}
