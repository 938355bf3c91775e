package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the sweep screen.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	ToggleCol   key.Binding
	Clean       key.Binding
	Dedupe      key.Binding
	FillMissing key.Binding
	Chart       key.Binding
	Target      key.Binding
	Convert     key.Binding
	NextFile    key.Binding
	PrevFile    key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ToggleCol: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "toggle column"),
		),
		Clean: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clean"),
		),
		Dedupe: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove duplicates"),
		),
		FillMissing: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fill missing"),
		),
		Chart: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "chart"),
		),
		Target: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "target"),
		),
		Convert: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "convert"),
		),
		NextFile: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next file"),
		),
		PrevFile: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev file"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HelpText returns a one-line summary of the bindings.
func (k KeyMap) HelpText() string {
	return "↑/↓ move • space column • c clean • d dedupe • f fill • v chart • t target • x convert • tab file • q quit"
}
