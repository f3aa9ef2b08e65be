// Package models defines the data shared between the timer, the blocking
// layers and the store
package models

import (
	"math"
	"time"
)

// Phase is the phase of a focus session.
type Phase string

const (
	Focus     Phase = "focus"
	Break     Phase = "break"
	Completed Phase = "completed"
)

// Task is a unit of work that sessions are performed against.
type Task struct {
	CreatedAt        time.Time `json:"created_at"`
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Tags             []string  `json:"tags"`
	TotalMinutes     int       `json:"total_minutes"`
	BlockMinutes     int       `json:"block_minutes"`
	BreakMinutes     int       `json:"break_minutes"`
	CompletedMinutes int       `json:"completed_minutes"`
}

// Valid reports whether the task durations can drive a session.
func (t *Task) Valid() bool {
	return t.BlockMinutes > 0 && t.BreakMinutes >= 0 && t.TotalMinutes > 0
}

// CompletionPercentage returns the share of the planned time that has been
// completed, clamped to [0, 100].
func (t *Task) CompletionPercentage() float64 {
	if t.TotalMinutes <= 0 {
		return 0
	}

	pct := float64(t.CompletedMinutes) / float64(t.TotalMinutes) * 100

	return math.Max(0, math.Min(100, pct))
}

// MaxIntervals is the number of focus intervals after which the task is
// considered complete regardless of credited minutes.
func (t *Task) MaxIntervals() int {
	if t.BlockMinutes <= 0 {
		return 0
	}

	return int(math.Ceil(float64(t.TotalMinutes) / float64(t.BlockMinutes)))
}

// Credit adds focus minutes to the task. Negative values are ignored and the
// result never exceeds TotalMinutes.
func (t *Task) Credit(minutes int) {
	if minutes <= 0 {
		return
	}

	t.CompletedMinutes = min(t.CompletedMinutes+minutes, t.TotalMinutes)
}

// SessionState is the live state of a timer run.
type SessionState struct {
	TaskID              string `json:"task_id"`
	Phase               Phase  `json:"phase"`
	SecondsRemaining    int    `json:"seconds_remaining"`
	CompletedIntervals  int    `json:"completed_interval_count"`
	ElapsedFocusSeconds int    `json:"elapsed_focus_seconds"`
	Running             bool   `json:"is_running"`
}

// BlockedAttempt is an attempt to reach a blocked domain.
type BlockedAttempt struct {
	Time   time.Time `json:"time"`
	Domain string    `json:"domain"`
}
