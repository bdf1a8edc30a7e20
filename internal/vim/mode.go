// Package vim implements a vim-style modal editing engine that drives an
// arbitrary host text buffer one key at a time.
package vim

// Mode represents the current vim editing mode.
type Mode int

const (
	// ModeNormal is the default mode for navigation and commands.
	ModeNormal Mode = iota
	// ModeInsert passes keys through to the host for text entry.
	ModeInsert
	// ModeVisual is character-wise selection.
	ModeVisual
	// ModeVisualLine is line-wise selection.
	ModeVisualLine
	// ModeVisualBlock is block selection. It has no default key binding.
	ModeVisualBlock
	// ModeOperatorPending waits for the motion or text object of an operator.
	ModeOperatorPending
	// ModeCommandLine edits an ex command after ':'.
	ModeCommandLine
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	case ModeVisualLine:
		return "VISUAL LINE"
	case ModeVisualBlock:
		return "VISUAL BLOCK"
	case ModeOperatorPending:
		return "OP PENDING"
	case ModeCommandLine:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// ShortString returns the compact status-line form of the mode.
func (m Mode) ShortString() string {
	switch m {
	case ModeNormal:
		return "N"
	case ModeInsert:
		return "I"
	case ModeVisual:
		return "V"
	case ModeVisualLine:
		return "VL"
	case ModeVisualBlock:
		return "VB"
	case ModeOperatorPending:
		return "OP"
	case ModeCommandLine:
		return "C"
	default:
		return "?"
	}
}

// IsVisual reports whether the mode keeps a selection anchor.
func (m Mode) IsVisual() bool {
	return m == ModeVisual || m == ModeVisualLine || m == ModeVisualBlock
}

// ParseMode converts a lowercase mode name as used in configuration.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "normal", "":
		return ModeNormal, true
	case "insert":
		return ModeInsert, true
	default:
		return ModeNormal, false
	}
}
