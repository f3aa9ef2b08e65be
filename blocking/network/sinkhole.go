package network

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// DefaultSinkholeAddr is where blocked domains are sent when the sinkhole is
// enabled.
const DefaultSinkholeAddr = "127.0.0.1:80"

const shutdownTimeout = 2 * time.Second

const blockedPage = `<!doctype html>
<title>Blocked</title>
<p>%s is blocked until your focus session ends.</p>
`

// Sinkhole is a local HTTP listener that blocked domains resolve to. Every
// request for a blocked domain is recorded as an attempt.
type Sinkhole struct {
	history History
	blocked func(host string) bool
	now     func() time.Time
	srv     *http.Server
	ln      net.Listener
	addr    string
	mu      sync.Mutex
}

// NewSinkhole returns a stopped sinkhole that will listen on addr.
func NewSinkhole(addr string, h History, blocked func(host string) bool) *Sinkhole {
	if addr == "" {
		addr = DefaultSinkholeAddr
	}

	return &Sinkhole{
		addr:    addr,
		history: h,
		blocked: blocked,
		now:     time.Now,
	}
}

// IP returns the address blocked domains should resolve to.
func (s *Sinkhole) IP() string {
	host, _, err := net.SplitHostPort(s.addr)
	if err != nil || host == "" {
		return "127.0.0.1"
	}

	return host
}

// Start begins serving. Starting a running sinkhole does nothing.
func (s *Sinkhole) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.srv, s.ln = srv, ln

	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("sinkhole stopped", slog.Any("error", err))
		}
	}()

	return nil
}

// Stop shuts the listener down. Stopping a stopped sinkhole does nothing.
func (s *Sinkhole) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.ln = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Addr returns the address being listened on, or "" when stopped.
func (s *Sinkhole) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

func (s *Sinkhole) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if s.blocked != nil && s.blocked(host) && s.history != nil {
		a := models.BlockedAttempt{
			Domain: strings.TrimPrefix(host, "www."),
			Time:   s.now(),
		}

		if err := s.history.Record(r.Context(), a); err != nil {
			slog.WarnContext(
				r.Context(),
				"unable to record blocked attempt",
				slog.String("domain", a.Domain),
				slog.Any("error", err),
			)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusForbidden)

	fmt.Fprintf(w, blockedPage, html.EscapeString(host))
}
