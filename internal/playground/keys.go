package playground

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the host-level keys. Everything else goes to the engine.
type KeyMap struct {
	Help      key.Binding
	ToggleLog key.Binding
	Quit      key.Binding
	CloseHelp key.Binding
}

// DefaultKeyMap returns the default host keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "keymap help"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "toggle log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc/q", "close help"),
		),
	}
}

// keyName converts a key message into the engine's key name.
// Multi-rune input (a paste) yields one name per rune.
func keyName(msg tea.KeyMsg) []string {
	switch msg.Type {
	case tea.KeyEscape:
		return []string{"escape"}
	case tea.KeySpace:
		return []string{"space"}
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		names := make([]string, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if r == ' ' {
				names = append(names, "space")
				continue
			}
			names = append(names, string(r))
		}
		return names
	}
	return []string{msg.String()}
}
