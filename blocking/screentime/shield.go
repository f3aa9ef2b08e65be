// Package screentime blocks applications during focus phases by terminating
// matching processes as they appear
package screentime

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ayoisaiah/focusguard/blocking"
)

// DefaultInterval is how often the process table is scanned while the shield
// is up.
const DefaultInterval = 2 * time.Second

// comm names are truncated by the kernel.
const maxCommLen = 15

// Process is an entry in the process table.
type Process struct {
	Name string
	Exe  string
	PID  int
}

// ProcessTable lists and terminates processes.
type ProcessTable interface {
	Processes(ctx context.Context) ([]Process, error)
	Terminate(pid int) error
}

// Grants persists the user's decision about the layer.
type Grants interface {
	SetAuthorized(layer string, granted bool) error
}

// ConsentFunc asks the user whether applications may be blocked.
type ConsentFunc func(ctx context.Context) (bool, error)

// Shield is the screen-time blocking layer.
type Shield struct {
	table    ProcessTable
	grants   Grants
	consent  ConsentFunc
	cancel   context.CancelFunc
	done     chan struct{}
	apps     []string
	interval time.Duration
	self     int
	mu       sync.Mutex
}

// Option configures a Shield.
type Option func(*Shield)

// WithInterval sets the scan interval.
func WithInterval(d time.Duration) Option {
	return func(s *Shield) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithConsent sets how authorization is requested.
func WithConsent(f ConsentFunc) Option {
	return func(s *Shield) {
		s.consent = f
	}
}

// WithGrants persists authorization decisions to g.
func WithGrants(g Grants) Option {
	return func(s *Shield) {
		s.grants = g
	}
}

// New returns a shield backed by table.
func New(table ProcessTable, opts ...Option) *Shield {
	s := &Shield{
		table:    table,
		interval: DefaultInterval,
		self:     os.Getpid(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Shield) Kind() blocking.Kind {
	return blocking.ScreenTime
}

// Authorized reports the one-time grant recorded in the configuration.
func (s *Shield) Authorized(_ context.Context, cfg *blocking.Config) bool {
	return cfg.ScreenTimeAuthorized
}

// RequestAuthorization asks the user for consent and records the answer.
func (s *Shield) RequestAuthorization(ctx context.Context) (bool, error) {
	if s.consent == nil {
		return false, blocking.ErrAuthorizationDenied.Fmt(blocking.ScreenTime)
	}

	granted, err := s.consent(ctx)
	if err != nil {
		return false, err
	}

	if s.grants != nil {
		if err := s.grants.SetAuthorized(string(blocking.ScreenTime), granted); err != nil {
			return granted, err
		}
	}

	return granted, nil
}

// Enable raises the shield for the blocked apps in t. The first scan happens
// before Enable returns so an unreadable process table is reported to the
// caller. Enabling a raised shield replaces the app list.
func (s *Shield) Enable(ctx context.Context, t blocking.Targets) error {
	apps := t.BlockedApps()

	if err := s.sweep(ctx, apps); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apps = apps

	if s.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.watch(loopCtx, s.done)

	return nil
}

// Disable lowers the shield and waits for the scanner to stop.
func (s *Shield) Disable(_ context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.apps = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done

	return nil
}

// Active reports whether the shield is up.
func (s *Shield) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancel != nil
}

func (s *Shield) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			apps := s.apps
			s.mu.Unlock()

			if err := s.sweep(ctx, apps); err != nil {
				slog.WarnContext(ctx, "process scan failed", slog.Any("error", err))
			}
		}
	}
}

// sweep terminates every running process that matches apps.
func (s *Shield) sweep(ctx context.Context, apps []string) error {
	if len(apps) == 0 {
		return nil
	}

	procs, err := s.table.Processes(ctx)
	if err != nil {
		return err
	}

	for _, p := range procs {
		if p.PID == s.self || !matches(p, apps) {
			continue
		}

		err := s.table.Terminate(p.PID)
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.DebugContext(
				ctx,
				"unable to terminate blocked app",
				slog.Int("pid", p.PID),
				slog.String("name", p.Name),
				slog.Any("error", err),
			)

			continue
		}

		slog.InfoContext(
			ctx,
			"terminated blocked app",
			slog.Int("pid", p.PID),
			slog.String("name", p.Name),
		)
	}

	return nil
}

func matches(p Process, apps []string) bool {
	name := strings.ToLower(p.Name)
	exe := strings.ToLower(filepath.Base(p.Exe))

	return slices.ContainsFunc(apps, func(app string) bool {
		if name == app || (p.Exe != "" && exe == app) {
			return true
		}

		return len(app) > maxCommLen && name == app[:maxCommLen]
	})
}
