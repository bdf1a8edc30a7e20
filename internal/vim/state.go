package vim

import (
	"strconv"
	"strings"
)

// FindKind identifies one of the f/F/t/T searches.
type FindKind int

const (
	FindForward  FindKind = iota // f
	FindBackward                 // F
	TillForward                  // t
	TillBackward                 // T
)

// Reverse returns the search in the opposite direction, used by ','.
func (k FindKind) Reverse() FindKind {
	switch k {
	case FindForward:
		return FindBackward
	case FindBackward:
		return FindForward
	case TillForward:
		return TillBackward
	default:
		return TillForward
	}
}

func (k FindKind) forward() bool { return k == FindForward || k == TillForward }

// CharSearch is the remembered f/F/t/T search replayed by ';' and ','.
type CharSearch struct {
	Char string
	Kind FindKind
}

// State is the mutable record of one editing session.
type State struct {
	mode Mode

	pendingOperator *Binding
	operatorCount   int
	motionCount     int

	currentRegister rune
	registers       *RegisterBank

	visualAnchor   *Position
	lastCharSearch *CharSearch

	// inputBuffer accumulates count digits; prefix holds a partially typed
	// multi-key sequence such as "g", "i" or "a".
	inputBuffer string
	prefix      string
	pendingArg  *Binding

	indentUnit string
}

// DefaultIndentUnit is the text '>' prepends to a line.
const DefaultIndentUnit = "    "

// NewState returns a session state in Normal mode.
func NewState(registers *RegisterBank) *State {
	if registers == nil {
		registers = NewRegisterBank(nil)
	}
	return &State{
		mode:            ModeNormal,
		operatorCount:   1,
		motionCount:     1,
		currentRegister: RegUnnamed,
		registers:       registers,
		indentUnit:      DefaultIndentUnit,
	}
}

// IndentUnit returns the text used by the indent operators.
func (s *State) IndentUnit() string { return s.indentUnit }

// SetIndentUnit changes the text used by the indent operators.
func (s *State) SetIndentUnit(unit string) {
	if unit != "" {
		s.indentUnit = unit
	}
}

// Mode returns the active mode.
func (s *State) Mode() Mode { return s.mode }

// Registers returns the register bank.
func (s *State) Registers() *RegisterBank { return s.registers }

// CurrentRegister returns the register selected for the next operation.
func (s *State) CurrentRegister() rune { return s.currentRegister }

// VisualAnchor returns the selection anchor while a visual mode is active.
func (s *State) VisualAnchor() (Position, bool) {
	if s.visualAnchor == nil {
		return Position{}, false
	}
	return *s.visualAnchor, true
}

// LastCharSearch returns the remembered character search.
func (s *State) LastCharSearch() (CharSearch, bool) {
	if s.lastCharSearch == nil {
		return CharSearch{}, false
	}
	return *s.lastCharSearch, true
}

// PendingKeys returns the keys typed toward an incomplete command, for
// display in a status line.
func (s *State) PendingKeys() string {
	var b strings.Builder
	if s.currentRegister != RegUnnamed {
		b.WriteByte('"')
		b.WriteRune(s.currentRegister)
	}
	if s.pendingOperator != nil {
		if s.operatorCount > 1 {
			b.WriteString(strconv.Itoa(s.operatorCount))
		}
		b.WriteString(s.pendingOperator.Keys)
	}
	b.WriteString(s.inputBuffer)
	b.WriteString(s.prefix)
	if s.pendingArg != nil {
		b.WriteString(s.pendingArg.Keys)
	}
	return b.String()
}

// EnterMode switches modes. Leaving OperatorPending drops the operator,
// leaving a visual mode drops the anchor, and any switch clears the count
// digits and key prefix.
func (s *State) EnterMode(mode Mode) {
	old := s.mode
	s.mode = mode
	if old == ModeOperatorPending && mode != ModeOperatorPending {
		s.ResetOperator()
	}
	if old.IsVisual() && !mode.IsVisual() {
		s.visualAnchor = nil
	}
	s.inputBuffer = ""
	s.prefix = ""
	s.pendingArg = nil
}

// ResetOperator clears the pending operator and both counts.
func (s *State) ResetOperator() {
	s.pendingOperator = nil
	s.operatorCount = 1
	s.motionCount = 1
}

// AccumulateDigit folds a digit key into the count buffer. A leading '0'
// is not a count digit.
func (s *State) AccumulateDigit(key string) bool {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return false
	}
	if key == "0" && s.inputBuffer == "" {
		return false
	}
	s.inputBuffer += key
	return true
}

// ConsumeCount returns the accumulated count, at least 1, and clears it.
func (s *State) ConsumeCount() int {
	n := s.peekCount()
	s.inputBuffer = ""
	return n
}

// HasCount reports whether count digits have been typed.
func (s *State) HasCount() bool {
	return s.inputBuffer != ""
}

func (s *State) peekCount() int {
	if s.inputBuffer == "" {
		return 1
	}
	n, err := strconv.Atoi(s.inputBuffer)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// EffectiveCount multiplies the operator and motion counts.
func (s *State) EffectiveCount() int {
	return s.operatorCount * s.motionCount
}

// StoreRegister routes yanked or deleted text through the bank and resets
// the register selection.
func (s *State) StoreRegister(text string, linewise, yank bool) {
	s.registers.Store(s.currentRegister, text, linewise, yank)
	s.currentRegister = RegUnnamed
}

// TakeRegister returns the selected register for a paste and resets the
// selection.
func (s *State) TakeRegister() (Register, bool) {
	name := s.currentRegister
	s.currentRegister = RegUnnamed
	return s.registers.Get(name)
}

func (s *State) setAnchor(p Position) {
	s.visualAnchor = &p
}
