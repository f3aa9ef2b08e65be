package blocking

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayoisaiah/focusguard/internal/event"
)

// FocusProgress is how far the current focus phase has run.
type FocusProgress struct {
	Elapsed  time.Duration
	Duration time.Duration
}

// Fraction returns the elapsed share of the phase.
func (p FocusProgress) Fraction() float64 {
	if p.Duration <= 0 {
		return 0
	}

	return p.Elapsed.Seconds() / p.Duration.Seconds()
}

// EmergencyAccessAllowed reports whether enough of the focus phase has
// elapsed for an override.
func EmergencyAccessAllowed(p FocusProgress, fraction float64) bool {
	if p.Duration <= 0 {
		return false
	}

	return p.Fraction() >= fraction
}

// RequestEmergencyAccess lifts every layer for the rest of the current focus
// phase once the configured share of it has elapsed. It returns false without
// side effects before that point. Once granted, further requests in the same
// phase return true and do nothing. The blocking policy itself is not
// changed: the next focus phase is armed as usual.
func (c *Coordinator) RequestEmergencyAccess(
	ctx context.Context,
	reason string,
	p FocusProgress,
) bool {
	opCtx := context.WithoutCancel(ctx)

	if err := c.sem.Acquire(opCtx, 1); err != nil {
		return false
	}
	defer c.sem.Release(1)

	c.mu.Lock()
	sess := c.session
	focus := c.focus
	fraction := c.cfg.EmergencyAccessFraction
	c.mu.Unlock()

	if sess != nil && sess.EmergencyOverrideUsed {
		return true
	}

	if fraction <= 0 {
		fraction = DefaultEmergencyAccessFraction
	}

	if !EmergencyAccessAllowed(p, fraction) {
		slog.InfoContext(
			ctx,
			"emergency access not yet available",
			slog.Float64("elapsed_fraction", p.Fraction()),
			slog.Float64("required_fraction", fraction),
		)

		return false
	}

	at := c.now()

	if sess == nil {
		if focus == nil {
			// outside a focus phase there is nothing to lift
			return true
		}

		// nothing was armed, but later arms in this phase must still be
		// skipped
		sess = &Session{StartedAt: at, Phase: *focus}

		c.mu.Lock()
		c.session = sess
		c.mu.Unlock()
	}

	_ = c.disarmLayers(opCtx)

	c.mu.Lock()
	sess.EmergencyOverrideUsed = true
	sess.OverrideReason = reason
	sess.OverrideAt = at
	c.mu.Unlock()

	slog.WarnContext(
		ctx,
		"emergency access granted",
		slog.Time("at", at),
		slog.String("reason", reason),
		slog.Float64("elapsed_fraction", p.Fraction()),
	)

	if c.events != nil {
		c.events.Publish(event.Event{
			Time:   at,
			Kind:   event.EmergencyAccessGranted,
			TaskID: sess.Phase.TaskID,
			From:   sess.Phase.Phase,
			To:     sess.Phase.Phase,
			Reason: reason,
		})
	}

	return true
}
