// Package focusmode silences desktop notifications during focus phases by
// holding a notification inhibition for the configured profile
package focusmode

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayoisaiah/focusguard/blocking"
)

const (
	hintProfile = "x-focusguard-profile"
	hintApps    = "x-focusguard-blocked-apps"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "focus"

// Inhibitor suppresses notifications until the returned cookie is released.
type Inhibitor interface {
	Available(ctx context.Context) bool
	Inhibit(ctx context.Context, reason string, hints map[string]any) (uint32, error)
	UnInhibit(ctx context.Context, cookie uint32) error
}

// Layer is the focus-mode blocking layer.
type Layer struct {
	inhibitor Inhibitor
	profile   string
	cookie    uint32
	active    bool
	mu        sync.Mutex
}

// New returns a focus-mode layer that uses inh.
func New(inh Inhibitor) *Layer {
	return &Layer{inhibitor: inh}
}

func (l *Layer) Kind() blocking.Kind {
	return blocking.FocusMode
}

// Authorized reports whether a notification service that supports
// inhibition is reachable.
func (l *Layer) Authorized(ctx context.Context, _ *blocking.Config) bool {
	return l.inhibitor.Available(ctx)
}

// RequestAuthorization needs no user consent; it only checks that the
// service is reachable.
func (l *Layer) RequestAuthorization(ctx context.Context) (bool, error) {
	if !l.inhibitor.Available(ctx) {
		return false, blocking.ErrAuthorizationDenied.Fmt(blocking.FocusMode)
	}

	return true, nil
}

// Enable activates the profile in t. An active inhibition for another
// profile is replaced.
func (l *Layer) Enable(ctx context.Context, t blocking.Targets) error {
	profile := t.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active && l.profile == profile {
		return nil
	}

	cookie, err := l.inhibitor.Inhibit(ctx, "focus session", map[string]any{
		hintProfile: profile,
		hintApps:    t.BlockedApps(),
	})
	if err != nil {
		return err
	}

	if l.active {
		if err := l.inhibitor.UnInhibit(ctx, l.cookie); err != nil {
			slog.DebugContext(
				ctx,
				"unable to release previous focus profile",
				slog.String("profile", l.profile),
				slog.Any("error", err),
			)
		}
	}

	l.cookie = cookie
	l.profile = profile
	l.active = true

	slog.DebugContext(
		ctx,
		"focus profile activated",
		slog.String("profile", profile),
		slog.Any("cookie", cookie),
	)

	return nil
}

// Disable releases the active profile, if any.
func (l *Layer) Disable(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}

	l.active = false

	return l.inhibitor.UnInhibit(ctx, l.cookie)
}

// Profile returns the active profile name.
func (l *Layer) Profile() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.profile, l.active
}
