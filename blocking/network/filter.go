// Package network blocks domains during focus phases through a managed block
// in the hosts file
package network

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/ayoisaiah/focusguard/blocking"
)

// nullRoute is what blocked domains resolve to without a sinkhole.
const nullRoute = "0.0.0.0"

// Filter is the network blocking layer. Its domain set can be edited at any
// time; while armed, edits are applied to the hosts file immediately.
type Filter struct {
	hosts    *Hosts
	history  History
	sinkhole *Sinkhole
	domains  []string
	armed    bool
	mu       sync.Mutex
}

// Option configures a Filter.
type Option func(*Filter)

// WithHistory records blocked attempts in h.
func WithHistory(h History) Option {
	return func(f *Filter) {
		f.history = h
	}
}

// WithSinkhole sends blocked domains to a local listener on addr that
// records every attempt in the filter's history.
func WithSinkhole(addr string) Option {
	return func(f *Filter) {
		f.sinkhole = NewSinkhole(addr, nil, f.Blocked)
	}
}

// New returns a filter that manages hosts.
func New(hosts *Hosts, opts ...Option) *Filter {
	f := &Filter{hosts: hosts}

	for _, opt := range opts {
		opt(f)
	}

	if f.history == nil {
		f.history = NewMemoryHistory(DefaultHistoryLimit)
	}

	if f.sinkhole != nil {
		f.sinkhole.history = f.history
	}

	return f
}

func (f *Filter) Kind() blocking.Kind {
	return blocking.Network
}

// Authorized reports whether the hosts file can be rewritten.
func (f *Filter) Authorized(_ context.Context, _ *blocking.Config) bool {
	return f.hosts.Writable()
}

// RequestAuthorization cannot elevate privileges; it reports whether the
// hosts file is writable.
func (f *Filter) RequestAuthorization(_ context.Context) (bool, error) {
	if !f.hosts.Writable() {
		return false, blocking.ErrAuthorizationDenied.Fmt(blocking.Network)
	}

	return true, nil
}

// Enable blocks the domains in t. They replace the live set. If the hosts
// file cannot be rewritten the filter is left disarmed.
func (f *Filter) Enable(ctx context.Context, t blocking.Targets) error {
	domains := make([]string, 0, len(t.Domains))

	for _, d := range t.Domains {
		if d, err := NormalizeDomain(d); err == nil && !slices.Contains(domains, d) {
			domains = append(domains, d)
		}
	}

	slices.Sort(domains)

	if f.sinkhole != nil {
		if err := f.sinkhole.Start(); err != nil {
			slog.WarnContext(
				ctx,
				"sinkhole unavailable, blocked attempts will not be recorded",
				slog.Any("error", err),
			)
		}
	}

	f.mu.Lock()

	err := f.hosts.Apply(f.address(), domains)

	switch {
	case err == nil:
		f.domains = domains
		f.armed = true
	case f.armed:
		// a failed replacement must not leave the previous block in force
		if rmErr := f.hosts.Remove(); rmErr != nil {
			slog.ErrorContext(
				ctx,
				"unable to remove previous hosts block",
				slog.Any("error", rmErr),
			)
		} else {
			f.armed = false
		}
	}

	armed := f.armed

	f.mu.Unlock()

	if err != nil && !armed {
		f.stopSinkhole(ctx)
	}

	return err
}

// Disable removes the managed block. The live set is kept.
func (f *Filter) Disable(ctx context.Context) error {
	f.mu.Lock()

	if !f.armed {
		f.mu.Unlock()
		return nil
	}

	err := f.hosts.Remove()
	f.armed = false

	f.mu.Unlock()

	// the sinkhole's handler takes f.mu, so it is stopped after unlocking
	f.stopSinkhole(ctx)

	return err
}

// AddBlockedDomain adds d to the live set.
func (f *Filter) AddBlockedDomain(_ context.Context, d string) error {
	d, err := NormalizeDomain(d)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if slices.Contains(f.domains, d) {
		return nil
	}

	domains := append(slices.Clone(f.domains), d)
	slices.Sort(domains)

	return f.replace(domains)
}

// RemoveBlockedDomain removes d from the live set.
func (f *Filter) RemoveBlockedDomain(_ context.Context, d string) error {
	d, err := NormalizeDomain(d)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !slices.Contains(f.domains, d) {
		return nil
	}

	domains := slices.DeleteFunc(slices.Clone(f.domains), func(v string) bool {
		return v == d
	})

	return f.replace(domains)
}

// replace must be called with f.mu held.
func (f *Filter) replace(domains []string) error {
	if f.armed {
		if err := f.hosts.Apply(f.address(), domains); err != nil {
			return err
		}
	}

	f.domains = domains

	return nil
}

// Domains returns the live set.
func (f *Filter) Domains() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.domains)
}

// Blocked reports whether host is covered by the live set.
func (f *Filter) Blocked(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.armed && slices.Contains(f.domains, host)
}

// History returns the log of blocked attempts.
func (f *Filter) History() History {
	return f.history
}

func (f *Filter) address() string {
	if f.sinkhole != nil && f.sinkhole.Addr() != "" {
		return f.sinkhole.IP()
	}

	return nullRoute
}

func (f *Filter) stopSinkhole(ctx context.Context) {
	if f.sinkhole == nil {
		return
	}

	if err := f.sinkhole.Stop(ctx); err != nil {
		slog.DebugContext(ctx, "unable to stop sinkhole", slog.Any("error", err))
	}
}

// NormalizeDomain reduces a domain or URL to a lower-case host name.
func NormalizeDomain(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))

	if strings.Contains(d, "://") {
		u, err := url.Parse(d)
		if err != nil {
			return "", errInvalidDomain.Fmt(s)
		}

		d = u.Host
	}

	if h, _, err := net.SplitHostPort(d); err == nil {
		d = h
	}

	d, _, _ = strings.Cut(d, "/")
	d = strings.TrimPrefix(strings.TrimSuffix(d, "."), "www.")

	if d == "" || !strings.Contains(d, ".") || net.ParseIP(d) != nil ||
		strings.ContainsFunc(d, invalidHostRune) {
		return "", errInvalidDomain.Fmt(s)
	}

	return d, nil
}

func invalidHostRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
		return false
	default:
		return true
	}
}
