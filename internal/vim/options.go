package vim

// Option configures an Engine.
type Option func(*Engine)

// WithKeymap replaces the default keymap.
func WithKeymap(km *Keymap) Option {
	return func(e *Engine) {
		if km != nil {
			e.keymap = km
		}
	}
}

// WithListener adds a notification listener. It may be given more than once.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// WithClipboard backs the + and * registers with clip.
func WithClipboard(clip Clipboard) Option {
	return func(e *Engine) {
		e.state.registers.SetClipboard(clip)
	}
}

// WithIndentUnit sets the text the indent operators add and remove.
func WithIndentUnit(unit string) Option {
	return func(e *Engine) {
		e.state.SetIndentUnit(unit)
	}
}

// WithStartMode starts the engine in Normal or Insert mode.
func WithStartMode(mode Mode) Option {
	return func(e *Engine) {
		if mode == ModeInsert {
			e.state.mode = ModeInsert
		}
	}
}

// WithDotRepeat enables or disables the '.' command.
func WithDotRepeat(enabled bool) Option {
	return func(e *Engine) {
		e.dotRepeat = enabled
	}
}
