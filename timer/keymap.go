package timer

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	togglePlay key.Binding
	skip       key.Binding
	reset      key.Binding
	emergency  key.Binding
	authorize  key.Binding
	yes        key.Binding
	no         key.Binding
	enter      key.Binding
	esc        key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	togglePlay: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	skip: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "skip"),
	),
	reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	emergency: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "emergency access"),
	),
	authorize: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "authorize layers"),
	),
	yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "allow"),
	),
	no: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "deny"),
	),
	enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	esc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
