package timer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/models"
	"github.com/ayoisaiah/focusguard/internal/timeutil"
)

// formatTimeRemaining returns the remaining time formatted as "MM:SS".
func formatTimeRemaining(secs int) string {
	m, s := timeutil.SecsToMinsAndSecs(float64(secs))

	return fmt.Sprintf("%02d:%02d", m, s)
}

func (m *Model) phaseView(state models.SessionState, task models.Task) string {
	var s strings.Builder

	switch state.Phase {
	case models.Focus:
		s.WriteString(m.style.Focus.Render("Focus"))
	case models.Break:
		s.WriteString(m.style.Break.Render("Break"))
	}

	if state.Running {
		end := time.Now().Add(time.Duration(state.SecondsRemaining) * time.Second)
		s.WriteString(m.style.Hint.Render("until " + end.Format("15:04:05")))
	} else {
		s.WriteString(m.style.Secondary.Render("[Paused]"))
	}

	if state.Phase == models.Focus {
		s.WriteString(m.style.Hint.Render(fmt.Sprintf(
			" (%d/%d)",
			state.CompletedIntervals+1,
			task.MaxIntervals(),
		)))
	}

	return s.String()
}

func (m *Model) blockingView(phase models.Phase) string {
	if phase != models.Focus {
		return m.style.Hint.Render("blocking lifted for the break")
	}

	st := m.timer.Blocking()

	if st.Session != nil && st.Session.EmergencyOverrideUsed {
		return m.style.Warn.Render("blocking lifted by emergency access")
	}

	results := m.timer.Results()

	if st.State == blocking.StateArming || len(results) == 0 {
		return m.style.Hint.Render("arming blocking...")
	}

	lines := make([]string, 0, len(results))

	for _, r := range results {
		line := fmt.Sprintf("%-12s %s", r.Layer, r.Outcome)

		if r.Outcome == blocking.Armed {
			lines = append(lines, m.style.Secondary.Render(line))
			continue
		}

		lines = append(lines, m.style.Hint.Render(line))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) helpView(phase models.Phase) string {
	bindings := []key.Binding{defaultKeymap.togglePlay}

	if phase == models.Focus && m.timer.Strict() {
		bindings = nil
	}

	bindings = append(bindings, defaultKeymap.skip, defaultKeymap.reset)

	if phase == models.Focus {
		bindings = append(bindings, defaultKeymap.emergency, defaultKeymap.authorize)
	}

	bindings = append(bindings, defaultKeymap.quit)

	return m.help.ShortHelpView(bindings)
}

func (m *Model) View() string {
	if m.Completed {
		return ""
	}

	state := m.timer.State()
	task := m.timer.Task()

	var s strings.Builder

	s.WriteString(m.phaseView(state, task))

	if task.Title != "" {
		s.WriteString("\n\n" + m.style.Secondary.Render(task.Title))
	}

	s.WriteString("\n\n")
	s.WriteString(m.style.Main.Render(formatTimeRemaining(state.SecondsRemaining)))
	s.WriteString("\n\n")

	total := m.timer.PhaseSeconds()

	var percent float64
	if total > 0 {
		percent = 1 - float64(state.SecondsRemaining)/float64(total)
	}

	s.WriteString(m.progress.ViewAs(percent))
	s.WriteString("\n\n" + m.blockingView(state.Phase))

	if m.notice != "" {
		s.WriteString("\n\n" + m.style.Warn.Render(m.notice))
	}

	if m.askConsent {
		s.WriteString("\n\n" + m.style.Main.Render(
			"Allow focusguard to close blocked applications during focus phases?",
		))
		s.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{
			defaultKeymap.yes,
			defaultKeymap.no,
		}))
	} else if m.askReason {
		s.WriteString("\n\n" + m.reason.View())
		s.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{
			defaultKeymap.enter,
			defaultKeymap.esc,
		}))
	} else {
		s.WriteString("\n\n" + m.helpView(state.Phase))
	}

	return m.style.Base.Render(s.String())
}

// PrintPhase writes a summary of the current phase for sessions that run
// without the interactive view.
func PrintPhase(w io.Writer, t *Timer) {
	state := t.State()
	task := t.Task()

	var label string

	switch state.Phase {
	case models.Focus:
		label = pterm.LightGreen(fmt.Sprintf(
			"Focus %d/%d",
			state.CompletedIntervals+1,
			task.MaxIntervals(),
		))
	case models.Break:
		label = pterm.LightBlue("Break")
	case models.Completed:
		fmt.Fprintf(
			w,
			"%s %s: %.0f%% complete\n",
			pterm.Green("Completed"),
			task.Title,
			task.CompletionPercentage(),
		)

		return
	}

	end := time.Now().Add(time.Duration(state.SecondsRemaining) * time.Second)

	fmt.Fprintf(
		w,
		"%s %s (%s, until %s)\n",
		label,
		task.Title,
		formatTimeRemaining(state.SecondsRemaining),
		end.Format("15:04:05"),
	)

	if state.Phase == models.Focus {
		if results := t.Results(); len(results) > 0 {
			fmt.Fprintf(w, "  %s\n", pterm.Gray(results.String()))
		}
	}
}
