package vim

import (
	"github.com/zjrosen/modal/internal/grapheme"
	"github.com/zjrosen/modal/internal/log"
)

// KeyResult tells the host what a key did.
type KeyResult struct {
	// Consumed is false when the host should handle the key itself.
	Consumed        bool
	EnterInsert     bool
	ShowCommandLine bool
	// CommandText is the command line including the leading ':'.
	CommandText   string
	CommandAction CommandAction
	CommandArgs   string
	Message       string
	// Error marks Message as an error, e.g. an unknown ex command.
	Error bool
	// Mode is the mode after the key was handled.
	Mode Mode
}

var consumed = KeyResult{Consumed: true}

// Engine is the per-keystroke dispatcher for one editing session. It is
// not safe for concurrent use; the host calls HandleKey from its event loop.
type Engine struct {
	buf       Buffer
	state     *State
	keymap    *Keymap
	cmdline   CommandLine
	listeners multiListener

	// lineCursor is the logical cursor in VisualLine mode, where the
	// buffer cursor sits on a snapped line end.
	lineCursor Position

	dotRepeat  bool
	recording  []recordedKey
	lastChange []recordedKey
	changed    bool
	recordable bool
	replaying  bool
}

// New creates an engine editing buf.
func New(buf Buffer, opts ...Option) *Engine {
	e := &Engine{
		buf:        buf,
		state:      NewState(nil),
		keymap:     NewKeymap(),
		dotRepeat:  true,
		recordable: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode { return e.state.mode }

// State exposes the session state for inspection.
func (e *Engine) State() *State { return e.state }

// Keymap returns the active keymap.
func (e *Engine) Keymap() *Keymap { return e.keymap }

// SetKeymap swaps the keymap, e.g. after a configuration reload.
func (e *Engine) SetKeymap(km *Keymap) {
	if km != nil {
		e.keymap = km
	}
}

// SetIndentUnit changes the indent operators' unit.
func (e *Engine) SetIndentUnit(unit string) { e.state.SetIndentUnit(unit) }

// Register reads a register without changing the selection.
func (e *Engine) Register(name rune) (Register, bool) {
	return e.state.registers.Get(name)
}

// CommandText returns the command line while in CommandLine mode.
func (e *Engine) CommandText() string {
	return ":" + e.cmdline.Text()
}

// Selection returns the selected range while a visual mode is active.
func (e *Engine) Selection() (Range, bool) {
	anchor, ok := e.state.VisualAnchor()
	if !ok {
		return Range{}, false
	}
	r := Range{Start: anchor, End: e.cursor(), Kind: Inclusive}
	if e.state.mode == ModeVisualLine {
		r.Kind = Linewise
	}
	return r.Normalize(), true
}

// EnterInsert switches to Insert mode from any mode, for hosts that start
// editing on focus.
func (e *Engine) EnterInsert() {
	if e.state.mode.IsVisual() {
		e.exitVisual()
	}
	e.setMode(ModeInsert)
}

// EnterNormal returns to Normal mode from any mode.
func (e *Engine) EnterNormal() {
	switch {
	case e.state.mode.IsVisual():
		e.exitVisual()
	case e.state.mode == ModeInsert:
		e.exitInsert()
	default:
		e.setMode(ModeNormal)
		e.buf.MoveCursor(clampNormal(e.buf, e.buf.Cursor()), false)
	}
}

// HandleKey processes one key.
func (e *Engine) HandleKey(key string) KeyResult {
	// Inserted text never becomes part of a repeatable change.
	record := !e.replaying && e.state.mode != ModeInsert
	countLen := len(e.state.inputBuffer)

	var res KeyResult
	switch e.state.mode {
	case ModeNormal:
		res = e.handleNormal(key)
	case ModeInsert:
		res = e.handleInsert(key)
	case ModeVisual, ModeVisualLine:
		res = e.handleVisual(key)
	case ModeVisualBlock:
		res = e.handleVisualBlock(key)
	case ModeOperatorPending:
		res = e.handleOperatorPending(key)
	case ModeCommandLine:
		res = e.handleCommandLine(key)
	}
	res.Mode = e.state.mode

	if record {
		counted := len(e.state.inputBuffer) == countLen+1 && isDigitKey(key)
		e.recording = append(e.recording, recordedKey{key: key, count: counted})
	}
	if !e.replaying {
		e.finishChange()
	}
	return res
}

func (e *Engine) handleInsert(key string) KeyResult {
	if isEscape(key) {
		e.exitInsert()
		return consumed
	}
	return KeyResult{}
}

func (e *Engine) handleVisualBlock(key string) KeyResult {
	if isEscape(key) {
		e.exitVisual()
		return consumed
	}
	return KeyResult{}
}

// exitInsert returns to Normal, stepping the cursor left off the insert
// position as vim does.
func (e *Engine) exitInsert() {
	pos := e.buf.Cursor()
	if pos.Col > 0 {
		pos.Col--
	}
	e.setMode(ModeNormal)
	e.buf.MoveCursor(clampNormal(e.buf, pos), false)
}

func (e *Engine) setMode(mode Mode) {
	old := e.state.mode
	e.state.EnterMode(mode)
	switch mode {
	case ModeInsert, ModeVisual, ModeVisualLine, ModeVisualBlock, ModeCommandLine:
		if !e.replaying {
			e.recordable = false
		}
	}
	if old == mode {
		return
	}
	log.Debug(log.CatMode, "Mode changed", "from", old.String(), "to", mode.String())
	e.listeners.OnModeChange(mode)
}

// cursor returns the logical cursor, which differs from the buffer cursor
// only in VisualLine mode.
func (e *Engine) cursor() Position {
	if e.state.mode == ModeVisualLine {
		return e.lineCursor
	}
	return e.buf.Cursor()
}

func (e *Engine) moveNormal(pos Position) {
	e.buf.MoveCursor(clampNormal(e.buf, pos), false)
}

// idle reports whether no command is partially typed.
func (e *Engine) idle() bool {
	s := e.state
	return s.mode == ModeNormal && s.pendingOperator == nil && s.pendingArg == nil &&
		s.inputBuffer == "" && s.prefix == "" && s.currentRegister == RegUnnamed
}

func isEscape(key string) bool {
	switch key {
	case "escape", "ctrl+[", "ctrl+c":
		return true
	}
	return false
}

// charArg converts a key into the character it types, if any.
func charArg(key string) (string, bool) {
	switch key {
	case "space":
		return " ", true
	case "tab":
		return "\t", true
	}
	if grapheme.Count(key) == 1 {
		return key, true
	}
	return "", false
}
