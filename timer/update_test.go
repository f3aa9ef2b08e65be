package timer

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/models"
)

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, opts ...Option) (*Model, *Timer, *fakeBlocker) {
	t.Helper()

	tm, _, blocker := newTimer(t, newTask(50, 25, 5), opts...)

	t.Cleanup(func() {
		_ = tm.Exit(context.Background())
	})

	tm.Start()

	return NewModel(context.Background(), tm, Theme{
		FocusColor: "#B0DB43",
		BreakColor: "#12EAEA",
	}), tm, blocker
}

func TestModelTogglesPause(t *testing.T) {
	m, tm, _ := newModel(t)

	m.Update(keyPress(" "))
	assert.False(t, tm.State().Running)

	m.Update(keyPress(" "))
	assert.True(t, tm.State().Running)
}

func TestModelShowsStrictModeNotice(t *testing.T) {
	m, tm, _ := newModel(t, WithPolicy(func() *blocking.Config {
		return &blocking.Config{Level: blocking.Maximum}
	}))

	m.Update(keyPress(" "))

	assert.True(t, tm.State().Running)
	assert.Contains(t, m.View(), "cannot be paused")
}

func TestModelSkipAndReset(t *testing.T) {
	m, tm, _ := newModel(t)

	tickTimer(tm, 30)
	m.Update(keyPress("r"))
	assert.Equal(t, 25*60, tm.State().SecondsRemaining)

	m.Update(keyPress("s"))
	assert.Equal(t, models.Break, tm.State().Phase)
	assert.Contains(t, m.View(), "blocking lifted for the break")
}

func TestModelEmergencyAccessNeedsReason(t *testing.T) {
	m, tm, blocker := newModel(t)

	tickTimer(tm, 20*60)

	m.Update(keyPress("e"))
	require.True(t, m.askReason)

	// an empty reason is not submitted
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	for _, r := range "deploy" {
		m.Update(keyPress(string(r)))
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.askReason)

	msg := cmd()
	assert.Equal(t, emergencyMsg{granted: true}, msg)
	assert.Equal(t, []string{"deploy"}, blocker.reasons)

	m.Update(msg)
	assert.Contains(t, m.View(), "blocking lifted until the end of this focus phase")
}

func TestModelEmergencyCancel(t *testing.T) {
	m, _, blocker := newModel(t)

	m.Update(keyPress("e"))
	m.Update(keyPress("x"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.askReason)
	assert.Empty(t, m.reason.Value())
	assert.Empty(t, blocker.reasons)
}

func TestModelConsent(t *testing.T) {
	m, _, _ := newModel(t)

	m.Update(consentMsg{})
	require.True(t, m.askConsent)
	assert.Contains(t, m.View(), "close blocked applications")

	m.Update(keyPress("y"))
	assert.False(t, m.askConsent)
	assert.True(t, <-m.consent)
}

func TestModelConsentWithoutProgram(t *testing.T) {
	m, _, _ := newModel(t)

	ok, err := m.Consent(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModelQuitsOnCompletion(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := m.Update(completedMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.Completed)
	assert.Empty(t, m.View())
}
