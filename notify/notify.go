// Package notify turns session events into desktop notifications and runs the
// user's session command. Both are best effort: failures are only logged.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/focusguard/internal/event"
	"github.com/ayoisaiah/focusguard/internal/models"
)

// Environment variables passed to the session command.
const (
	EnvEvent  = "FOCUSGUARD_EVENT"
	EnvTaskID = "FOCUSGUARD_TASK_ID"
	EnvFrom   = "FOCUSGUARD_FROM"
	EnvTo     = "FOCUSGUARD_TO"
)

type (
	// SendFunc shows a desktop notification.
	SendFunc func(title, message, icon string) error

	// RunFunc runs a command.
	RunFunc func(ctx context.Context, env []string, name string, args ...string) error
)

// Option configures a Notifier.
type Option func(*Notifier)

// WithDesktop enables desktop notifications with the given per-phase
// messages. Messages are keyed by the phase being entered.
func WithDesktop(messages map[models.Phase]string, icon string) Option {
	return func(n *Notifier) {
		n.desktop = true
		n.messages = messages
		n.icon = icon
	}
}

// WithCommand runs cmd after every phase change.
func WithCommand(cmd string) Option {
	return func(n *Notifier) {
		n.cmd = strings.TrimSpace(cmd)
	}
}

// WithSender replaces how desktop notifications are shown.
func WithSender(send SendFunc) Option {
	return func(n *Notifier) {
		n.send = send
	}
}

// WithRunner replaces how the session command is run.
func WithRunner(run RunFunc) Option {
	return func(n *Notifier) {
		n.run = run
	}
}

// Notifier reacts to session events.
type Notifier struct {
	send     SendFunc
	run      RunFunc
	messages map[models.Phase]string
	icon     string
	cmd      string
	desktop  bool
}

// New returns a Notifier that does nothing until configured with options.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		send: beeep.Notify,
		run:  runCommand,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Listen handles events until events is closed or ctx is done.
func (n *Notifier) Listen(ctx context.Context, events <-chan event.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			n.Handle(ctx, e)
		}
	}
}

// Handle reacts to a single event.
func (n *Notifier) Handle(ctx context.Context, e event.Event) {
	if n.desktop {
		title, msg := n.describe(e)

		if err := n.send(title, msg, n.icon); err != nil {
			slog.WarnContext(ctx, "unable to display notification", slog.Any("error", err))
		}
	}

	if n.cmd != "" && e.Kind == event.PhaseCompleted {
		if err := n.runSessionCmd(ctx, e); err != nil {
			slog.WarnContext(
				ctx,
				"session command failed",
				slog.String("cmd", n.cmd),
				slog.Any("error", err),
			)
		}
	}
}

func (n *Notifier) describe(e event.Event) (title, msg string) {
	switch e.Kind {
	case event.SessionCompleted:
		return "Session complete", "Well done! The task has been completed."
	case event.EmergencyAccessGranted:
		return "Blocking lifted", fmt.Sprintf(
			"Emergency access granted until the end of this focus phase: %s",
			e.Reason,
		)
	}

	switch e.From {
	case models.Focus:
		title = "Focus phase is finished"
	case models.Break:
		title = "Break is over"
	}

	return title, n.messages[e.To]
}

// runSessionCmd executes the session command with the event in its
// environment.
func (n *Notifier) runSessionCmd(ctx context.Context, e event.Event) error {
	cmdSlice, err := shellquote.Split(n.cmd)
	if err != nil {
		return errParseCmd.Wrap(err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	env := []string{
		EnvEvent + "=" + string(e.Kind),
		EnvTaskID + "=" + e.TaskID,
		EnvFrom + "=" + string(e.From),
		EnvTo + "=" + string(e.To),
	}

	return n.run(ctx, env, cmdSlice[0], cmdSlice[1:]...)
}

func runCommand(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)

	return cmd.Run()
}
