package blocking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/focusguard/internal/event"
	"github.com/ayoisaiah/focusguard/internal/models"
)

// journal records layer calls across fake layers in order.
type journal struct {
	calls []string
	mu    sync.Mutex
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.calls = append(j.calls, s)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]string(nil), j.calls...)
}

type fakeLayer struct {
	enableErr  error
	disableErr error
	journal    *journal
	kind       Kind
	targets    Targets
	block      chan struct{}
	enables    int
	disables   int
	authorized bool
	enabled    bool
	mu         sync.Mutex
}

func newFake(j *journal, k Kind, authorized bool) *fakeLayer {
	return &fakeLayer{journal: j, kind: k, authorized: authorized}
}

func (f *fakeLayer) Kind() Kind { return f.kind }

func (f *fakeLayer) Authorized(context.Context, *Config) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.authorized
}

func (f *fakeLayer) RequestAuthorization(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authorized = true

	return true, nil
}

func (f *fakeLayer) Enable(_ context.Context, t Targets) error {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.enables++

	if f.enableErr != nil {
		return f.enableErr
	}

	f.enabled = true
	f.targets = t
	f.journal.add("enable " + string(f.kind))

	return nil
}

func (f *fakeLayer) Disable(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disables++
	f.enabled = false
	f.journal.add("disable " + string(f.kind))

	return f.disableErr
}

type recorder struct {
	events []event.Event
	mu     sync.Mutex
}

func (r *recorder) Publish(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func focusState() models.SessionState {
	return models.SessionState{TaskID: "t", Phase: models.Focus, SecondsRemaining: 1500, Running: true}
}

func setup(level Level) (*Coordinator, *journal, map[Kind]*fakeLayer, *Config) {
	j := &journal{}

	fakes := map[Kind]*fakeLayer{
		ScreenTime: newFake(j, ScreenTime, true),
		FocusMode:  newFake(j, FocusMode, true),
		Network:    newFake(j, Network, true),
	}

	c := New([]Layer{fakes[ScreenTime], fakes[FocusMode], fakes[Network]})

	cfg := &Config{
		Level:                   level,
		Apps:                    []string{"Discord"},
		Domains:                 []string{"news.ycombinator.com"},
		ScreenTimeAuthorized:    true,
		EmergencyAccessFraction: 0.8,
	}

	return c, j, fakes, cfg
}

func outcomes(rs Results) map[Kind]Outcome {
	m := make(map[Kind]Outcome)
	for _, r := range rs {
		m[r.Layer] = r.Outcome
	}

	return m
}

func TestArmLightWithOnlyScreenTimeAuthorized(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	fakes[FocusMode].authorized = false

	results, err := c.ArmForFocus(context.Background(), cfg, focusState())
	require.NoError(t, err)

	assert.Equal(t, map[Kind]Outcome{
		ScreenTime: Armed,
		FocusMode:  SkippedUnauthorized,
		Network:    SkippedByLevel,
	}, outcomes(results))

	r, ok := results.Get(FocusMode)
	require.True(t, ok)
	assert.ErrorIs(t, r.Err, ErrAuthorizationDenied)

	st := c.Status()
	assert.Equal(t, StateArmed, st.State)
	require.NotNil(t, st.Session)
	assert.Equal(t, []Kind{ScreenTime}, st.Session.Armed)
	assert.Equal(t, []string{"discord"}, fakes[ScreenTime].targets.Apps)
}

func TestArmOffLevelCreatesNoSession(t *testing.T) {
	c, j, _, cfg := setup(Off)

	results, err := c.ArmForFocus(context.Background(), cfg, focusState())
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, SkippedByLevel, r.Outcome)
	}

	st := c.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Nil(t, st.Session)
	assert.Empty(t, j.all())
}

func TestFailureInOneLayerDoesNotStopOthers(t *testing.T) {
	c, _, fakes, cfg := setup(Maximum)
	fakes[FocusMode].enableErr = errors.New("bus went away")

	results, err := c.ArmForFocus(context.Background(), cfg, focusState())
	require.NoError(t, err)

	assert.Equal(t, map[Kind]Outcome{
		ScreenTime: Armed,
		FocusMode:  Failed,
		Network:    Armed,
	}, outcomes(results))

	r, _ := results.Get(FocusMode)
	assert.ErrorIs(t, r.Err, ErrEnforcementFailed)
}

func TestPermissionErrorIsUnauthorized(t *testing.T) {
	c, _, fakes, cfg := setup(Strict)
	fakes[Network].enableErr = ErrAuthorizationDenied.Fmt(Network)

	results, err := c.ArmForFocus(context.Background(), cfg, focusState())
	require.NoError(t, err)

	r, _ := results.Get(Network)
	assert.Equal(t, SkippedUnauthorized, r.Outcome)
}

func TestDisarmReverseOrderAndIdempotent(t *testing.T) {
	c, j, _, cfg := setup(Strict)
	ctx := context.Background()

	require.NoError(t, c.Disarm(ctx))
	require.NoError(t, c.Disarm(ctx))
	assert.Empty(t, j.all())
	assert.Equal(t, StateIdle, c.Status().State)

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	require.NoError(t, c.Disarm(ctx))

	calls := j.all()
	require.Len(t, calls, 6)
	assert.Equal(t, []string{
		"disable network",
		"disable focus_mode",
		"disable screen_time",
	}, calls[3:])

	first := c.Status()

	require.NoError(t, c.Disarm(ctx))

	assert.Equal(t, first, c.Status())
	assert.Len(t, j.all(), 6)
}

func TestDisarmJoinsLayerErrors(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	boom := errors.New("boom")
	fakes[ScreenTime].disableErr = boom

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	err = c.Disarm(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, fakes[FocusMode].disables)
	assert.Equal(t, StateIdle, c.Status().State)
}

func TestRearmKeepsArmedLayers(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	fakes[FocusMode].authorized = false

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	ok, err := c.RequestAuthorization(ctx, FocusMode)
	require.NoError(t, err)
	require.True(t, ok)

	results, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	assert.Equal(t, Armed, outcomes(results)[FocusMode])
	assert.Equal(t, 1, fakes[ScreenTime].enables)
	assert.Zero(t, fakes[ScreenTime].disables)
	assert.Equal(t, []Kind{ScreenTime, FocusMode}, c.Status().Session.Armed)
}

func TestFailedLayerRetriedOncePerEntry(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	fakes[FocusMode].enableErr = errors.New("transient")

	// first focus phase: fails, and a re-arm in the same phase does not retry
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 1, fakes[FocusMode].enables)

	require.NoError(t, c.Disarm(ctx))

	// second focus phase: retried once
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 2, fakes[FocusMode].enables)

	require.NoError(t, c.Disarm(ctx))

	// third focus phase: given up for the session
	results, _ := c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 2, fakes[FocusMode].enables)

	r, _ := results.Get(FocusMode)
	assert.Equal(t, Failed, r.Outcome)
	assert.ErrorIs(t, r.Err, errGaveUp)
}

func TestRecoveredLayerResetsFailureCount(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	fakes[FocusMode].enableErr = errors.New("transient")
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, c.Disarm(ctx))

	fakes[FocusMode].enableErr = nil
	results, _ := c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, Armed, outcomes(results)[FocusMode])
	require.NoError(t, c.Disarm(ctx))

	fakes[FocusMode].enableErr = errors.New("transient again")
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, c.Disarm(ctx))

	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 4, fakes[FocusMode].enables)
}

func TestEmergencyAccessThreshold(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	rec := &recorder{}
	c.events = rec

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	before := FocusProgress{Elapsed: 1199 * time.Second, Duration: 1500 * time.Second}
	assert.False(t, c.RequestEmergencyAccess(ctx, "too early", before))
	assert.Equal(t, StateArmed, c.Status().State)
	assert.Zero(t, fakes[ScreenTime].disables)
	assert.Empty(t, rec.events)

	at := FocusProgress{Elapsed: 1200 * time.Second, Duration: 1500 * time.Second}
	assert.True(t, c.RequestEmergencyAccess(ctx, "locked out of work chat", at))

	st := c.Status()
	require.NotNil(t, st.Session)
	assert.True(t, st.Session.EmergencyOverrideUsed)
	assert.Equal(t, "locked out of work chat", st.Session.OverrideReason)
	assert.Empty(t, st.Session.Armed)
	assert.Equal(t, 1, fakes[ScreenTime].disables)
	assert.Equal(t, 1, fakes[FocusMode].disables)

	// repeated in the same phase, even with less progress after a reset
	assert.True(t, c.RequestEmergencyAccess(ctx, "again", before))
	assert.Equal(t, 1, fakes[ScreenTime].disables)

	require.Len(t, rec.events, 1)
	assert.Equal(t, event.EmergencyAccessGranted, rec.events[0].Kind)

	// re-arming in the overridden phase keeps everything lifted
	results, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, SkippedOverride, r.Outcome)
	}

	assert.Equal(t, 1, fakes[ScreenTime].enables)
}

func TestEmergencyAccessResetsEachFocusPhase(t *testing.T) {
	c, _, _, cfg := setup(Light)
	ctx := context.Background()

	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	require.True(t, c.RequestEmergencyAccess(ctx, "x", FocusProgress{Elapsed: 25 * time.Minute, Duration: 25 * time.Minute}))

	// break
	require.NoError(t, c.Disarm(ctx))

	results, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)
	assert.Equal(t, Armed, outcomes(results)[ScreenTime])

	early := FocusProgress{Elapsed: time.Minute, Duration: 25 * time.Minute}
	assert.False(t, c.RequestEmergencyAccess(ctx, "x", early))
	assert.False(t, c.Status().Session.EmergencyOverrideUsed)
}

func TestEmergencyAccessUsesConfiguredFraction(t *testing.T) {
	c, _, _, cfg := setup(Light)
	ctx := context.Background()

	cfg.EmergencyAccessFraction = 0.5

	_, _ = c.ArmForFocus(ctx, cfg, focusState())

	half := FocusProgress{Elapsed: 750 * time.Second, Duration: 1500 * time.Second}
	assert.True(t, c.RequestEmergencyAccess(ctx, "half way", half))
}

func TestEmergencyAccessWithNothingArmed(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	rec := &recorder{}
	c.events = rec

	fakes[ScreenTime].authorized = false
	fakes[FocusMode].authorized = false

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)
	assert.Nil(t, c.Status().Session)

	late := FocusProgress{Elapsed: 1350 * time.Second, Duration: 1500 * time.Second}
	require.True(t, c.RequestEmergencyAccess(ctx, "need the docs site", late))

	st := c.Status()
	require.NotNil(t, st.Session)
	assert.True(t, st.Session.EmergencyOverrideUsed)
	assert.Equal(t, "need the docs site", st.Session.OverrideReason)

	require.Len(t, rec.events, 1)
	assert.Equal(t, event.EmergencyAccessGranted, rec.events[0].Kind)
	assert.Equal(t, "t", rec.events[0].TaskID)

	// authorization granted later in the same phase does not undo the override
	fakes[ScreenTime].authorized = true
	fakes[FocusMode].authorized = true

	results, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, SkippedOverride, r.Outcome)
	}

	assert.Zero(t, fakes[ScreenTime].enables)
	assert.Zero(t, fakes[FocusMode].enables)

	require.NoError(t, c.Disarm(ctx))

	results, err = c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)
	assert.Equal(t, Armed, outcomes(results)[ScreenTime])
}

func TestEmergencyAccessOutsideFocusPhase(t *testing.T) {
	c, _, _, cfg := setup(Light)
	ctx := context.Background()

	rec := &recorder{}
	c.events = rec

	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, c.Disarm(ctx))

	late := FocusProgress{Elapsed: 1350 * time.Second, Duration: 1500 * time.Second}
	assert.True(t, c.RequestEmergencyAccess(ctx, "x", late))
	assert.Nil(t, c.Status().Session)
	assert.Empty(t, rec.events)

	results, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)
	assert.Equal(t, Armed, outcomes(results)[ScreenTime])
}

func TestAllLayersFailedRetriedOncePerEntry(t *testing.T) {
	c, _, fakes, cfg := setup(Light)
	ctx := context.Background()

	fakes[ScreenTime].enableErr = errors.New("daemon unreachable")
	fakes[FocusMode].enableErr = errors.New("bus went away")

	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	_, _ = c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 1, fakes[ScreenTime].enables)
	assert.Equal(t, 1, fakes[FocusMode].enables)

	st := c.Status()
	assert.Equal(t, StateIdle, st.State)
	require.NotNil(t, st.Session)
	assert.Empty(t, st.Session.Armed)

	require.NoError(t, c.Disarm(ctx))

	results, _ := c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 2, fakes[ScreenTime].enables)

	r, _ := results.Get(ScreenTime)
	assert.Equal(t, Failed, r.Outcome)
	assert.NotErrorIs(t, r.Err, errGaveUp)

	require.NoError(t, c.Disarm(ctx))

	results, _ = c.ArmForFocus(ctx, cfg, focusState())
	assert.Equal(t, 2, fakes[ScreenTime].enables)
	assert.Equal(t, 2, fakes[FocusMode].enables)

	r, _ = results.Get(FocusMode)
	assert.ErrorIs(t, r.Err, errGaveUp)
}

func TestArmWaitsForInFlightDisarm(t *testing.T) {
	c, j, fakes, cfg := setup(Light)
	ctx := context.Background()

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	require.NoError(t, err)

	require.NoError(t, c.Disarm(ctx))

	fakes[ScreenTime].block = make(chan struct{})

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = c.ArmForFocus(ctx, cfg, focusState())
	}()

	require.Eventually(t, func() bool {
		return c.Status().State == StateArming
	}, time.Second, time.Millisecond)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	disarmed := make(chan error, 1)

	go func() {
		disarmed <- c.Disarm(cancelled)
	}()

	close(fakes[ScreenTime].block)

	<-done
	require.NoError(t, <-disarmed)

	calls := j.all()
	assert.Equal(t, "disable screen_time", calls[len(calls)-1])
	assert.Equal(t, StateIdle, c.Status().State)
	assert.False(t, fakes[ScreenTime].enabled)
}

func TestArmRespectsCancelledContextBeforeAcquire(t *testing.T) {
	c, j, _, cfg := setup(Light)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.sem.Acquire(context.Background(), 1))

	_, err := c.ArmForFocus(ctx, cfg, focusState())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, j.all())

	c.sem.Release(1)
}

func TestParseLevelAndKind(t *testing.T) {
	l, err := ParseLevel(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, Strict, l)
	assert.True(t, Off < Light && Light < Strict && Strict < Maximum)

	_, err = ParseLevel("extreme")
	assert.ErrorIs(t, err, errUnknownLevel)

	k, err := ParseKind("focus-mode")
	require.NoError(t, err)
	assert.Equal(t, FocusMode, k)

	_, err = ParseKind("firewall")
	assert.ErrorIs(t, err, errUnknownLayer)
}

func TestTargetsExpandCategories(t *testing.T) {
	cfg := &Config{
		Apps:       []string{"Steam", "discord"},
		Categories: []string{"social"},
		CategoryApps: map[string][]string{
			"social": {"discord", "telegram-desktop"},
			"games":  {"lutris"},
		},
	}

	assert.Equal(t,
		[]string{"discord", "steam", "telegram-desktop"},
		cfg.Targets().BlockedApps(),
	)
}
