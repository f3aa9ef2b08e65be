package timer

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/models"
)

const (
	padding  = 2
	maxWidth = 80

	refreshInterval = 250 * time.Millisecond
)

// Theme holds the colours of the terminal view.
type Theme struct {
	FocusColor string
	BreakColor string
}

// Style is the set of lipgloss styles used by the terminal view.
type Style struct {
	Base      lipgloss.Style
	Main      lipgloss.Style
	Secondary lipgloss.Style
	Hint      lipgloss.Style
	Warn      lipgloss.Style
	Focus     lipgloss.Style
	Break     lipgloss.Style
}

// NewStyle builds the view styles from a theme.
func NewStyle(th Theme) Style {
	focus := lipgloss.Color(th.FocusColor)
	brk := lipgloss.Color(th.BreakColor)

	return Style{
		Base:      lipgloss.NewStyle().Padding(1, padding),
		Main:      lipgloss.NewStyle().Bold(true),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("#9B9B9B")),
		Hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8700")),
		Focus: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(focus).
			Padding(0, 1).
			MarginRight(1),
		Break: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(brk).
			Padding(0, 1).
			MarginRight(1),
	}
}

type (
	refreshMsg   time.Time
	completedMsg struct{}
	consentMsg   struct{}

	emergencyMsg struct {
		granted bool
	}

	authorizationMsg struct {
		err     error
		granted []blocking.Kind
	}
)

// Model is the interactive terminal view of a running timer.
type Model struct {
	ctx      context.Context
	timer    *Timer
	style    Style
	notice   string
	reason   textinput.Model
	help     help.Model
	progress progress.Model
	program  *tea.Program
	consent  chan bool
	// Completed is set when the view closed because the session ended
	Completed  bool
	askReason  bool
	askConsent bool
}

// NewModel returns a view of t.
func NewModel(ctx context.Context, t *Timer, th Theme) *Model {
	ti := textinput.New()
	ti.Prompt = "Reason: "
	ti.Placeholder = "why do you need access?"
	ti.CharLimit = 120
	ti.Width = 50

	return &Model{
		ctx:      ctx,
		timer:    t,
		style:    NewStyle(th),
		reason:   ti,
		help:     help.New(),
		progress: progress.New(progress.WithGradient(th.FocusColor, th.BreakColor)),
		consent:  make(chan bool, 1),
	}
}

// Attach connects the model to the program running it so that Consent can
// reach the view.
func (m *Model) Attach(p *tea.Program) {
	m.program = p
}

// Consent asks the user, inside the view, to allow focusguard to terminate
// blocked applications.
func (m *Model) Consent(ctx context.Context) (bool, error) {
	if m.program == nil {
		return false, nil
	}

	m.program.Send(consentMsg{})

	select {
	case ok := <-m.consent:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (m *Model) answerConsent(ok bool) {
	m.askConsent = false

	select {
	case m.consent <- ok:
	default:
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *Model) waitForCompletion() tea.Cmd {
	return func() tea.Msg {
		<-m.timer.Done()
		return completedMsg{}
	}
}

func (m *Model) requestEmergency(reason string) tea.Cmd {
	return func() tea.Msg {
		return emergencyMsg{granted: m.timer.EmergencyAccess(m.ctx, reason)}
	}
}

// requestAuthorization asks every layer that was skipped as unauthorized
// for permission again.
func (m *Model) requestAuthorization() tea.Cmd {
	var kinds []blocking.Kind

	for _, r := range m.timer.Results() {
		if r.Outcome == blocking.SkippedUnauthorized {
			kinds = append(kinds, r.Layer)
		}
	}

	if len(kinds) == 0 {
		return nil
	}

	return func() tea.Msg {
		var msg authorizationMsg

		for _, k := range kinds {
			ok, err := m.timer.RequestAuthorization(m.ctx, k)
			if err != nil {
				msg.err = err
				continue
			}

			if ok {
				msg.granted = append(msg.granted, k)
			}
		}

		return msg
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(refresh(), m.waitForCompletion())
}

func (m *Model) handleReasonKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.esc):
		m.askReason = false
		m.reason.Blur()
		m.reason.Reset()

		return m, nil
	case key.Matches(msg, defaultKeymap.enter):
		reason := strings.TrimSpace(m.reason.Value())
		if reason == "" {
			return m, nil
		}

		m.askReason = false
		m.reason.Blur()
		m.reason.Reset()

		return m, m.requestEmergency(reason)
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)

	return m, cmd
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.askConsent {
		switch {
		case key.Matches(msg, defaultKeymap.yes):
			m.answerConsent(true)
		case key.Matches(msg, defaultKeymap.no):
			m.answerConsent(false)
		case msg.Type == tea.KeyCtrlC:
			m.answerConsent(false)
			return m, tea.Quit
		}

		return m, nil
	}

	if m.askReason {
		return m.handleReasonKey(msg)
	}

	m.notice = ""

	switch {
	case key.Matches(msg, defaultKeymap.togglePlay):
		if err := m.timer.Toggle(); err != nil {
			m.notice = err.Error()
		}

	case key.Matches(msg, defaultKeymap.skip):
		m.timer.Skip(m.ctx)

	case key.Matches(msg, defaultKeymap.reset):
		m.timer.Reset()

	case key.Matches(msg, defaultKeymap.emergency):
		if m.timer.State().Phase != models.Focus {
			return m, nil
		}

		m.askReason = true

		return m, m.reason.Focus()

	case key.Matches(msg, defaultKeymap.authorize):
		cmd := m.requestAuthorization()
		if cmd == nil {
			m.notice = "every layer is already authorized"
		}

		return m, cmd

	case key.Matches(msg, defaultKeymap.quit):
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, refresh()

	case completedMsg:
		m.Completed = true

		return m, tea.Quit

	case consentMsg:
		m.askConsent = true

		return m, nil

	case authorizationMsg:
		switch {
		case msg.err != nil:
			m.notice = msg.err.Error()
		case len(msg.granted) == 0:
			m.notice = "no layer was authorized"
		default:
			m.notice = "authorized: " + joinKinds(msg.granted)
		}

		return m, nil

	case emergencyMsg:
		if msg.granted {
			m.notice = "blocking lifted until the end of this focus phase"
		} else {
			m.notice = "emergency access is not available yet"
		}

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}

		return m, nil
	}

	return m, nil
}

func joinKinds(kinds []blocking.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	return strings.Join(names, ", ")
}
