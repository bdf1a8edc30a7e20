package vim

import "github.com/zjrosen/modal/internal/log"

// handleNormal dispatches a Normal mode key. Precedence: a pending
// character argument, a multi-key prefix, count digits, the keymap, and
// finally the start of a new prefix.
func (e *Engine) handleNormal(key string) KeyResult {
	s := e.state
	if s.pendingArg != nil {
		return e.completeArg(key)
	}
	if s.prefix != "" {
		seq := s.prefix + key
		s.prefix = ""
		if b, ok := e.keymap.Normal(seq); ok {
			return e.dispatchNormal(b)
		}
		if e.keymap.IsPrefix(ModeNormal, seq) {
			s.prefix = seq
			return consumed
		}
		log.Debug(log.CatKeymap, "Discarded key sequence", "keys", seq)
		s.inputBuffer = ""
		return consumed
	}
	if s.AccumulateDigit(key) {
		return consumed
	}
	if b, ok := e.keymap.Normal(key); ok {
		return e.dispatchNormal(b)
	}
	if e.keymap.IsPrefix(ModeNormal, key) {
		s.prefix = key
		return consumed
	}
	if isEscape(key) {
		s.inputBuffer = ""
		s.currentRegister = RegUnnamed
		return consumed
	}
	return KeyResult{}
}

func (e *Engine) dispatchNormal(b Binding) KeyResult {
	s := e.state
	switch b.Kind {
	case KindMotion:
		res := runMotion(newDocument(e.buf), s, b.Motion, e.buf.Cursor(), s.ConsumeCount())
		if !res.Failed {
			e.moveNormal(res.Pos)
		}
		return consumed
	case KindOperator:
		return e.startOperator(b)
	case KindAction:
		return e.runAction(b.Action)
	case KindModeSwitch:
		return e.switchMode(b.Target)
	case KindArg:
		s.pendingArg = &b
		return consumed
	}
	return KeyResult{}
}

func (e *Engine) startOperator(b Binding) KeyResult {
	s := e.state
	count := s.ConsumeCount()
	e.setMode(ModeOperatorPending)
	s.pendingOperator = &b
	s.operatorCount = count
	s.motionCount = 1
	return consumed
}

func (e *Engine) switchMode(target Mode) KeyResult {
	e.state.inputBuffer = ""
	switch target {
	case ModeVisual, ModeVisualLine:
		e.enterVisual(target)
		return consumed
	case ModeCommandLine:
		return e.startCommandLine()
	case ModeInsert:
		e.setMode(ModeInsert)
		return KeyResult{Consumed: true, EnterInsert: true}
	}
	e.setMode(ModeNormal)
	return consumed
}

// completeArg consumes key as the character argument of f/F/t/T, r or ".
// A key that does not type a character cancels the command.
func (e *Engine) completeArg(key string) KeyResult {
	s := e.state
	b := *s.pendingArg
	s.pendingArg = nil

	ch, ok := charArg(key)
	if !ok {
		s.inputBuffer = ""
		if s.mode == ModeOperatorPending {
			e.cancelOperator()
		}
		return consumed
	}

	switch b.Arg {
	case ArgFind:
		count := s.ConsumeCount()
		if s.mode == ModeOperatorPending {
			s.motionCount = count
			count = s.EffectiveCount()
		}
		res := findChar(newDocument(e.buf), e.cursor(), b.Find, ch, count)
		if !res.Failed {
			s.lastCharSearch = &CharSearch{Char: ch, Kind: b.Find}
		}
		return e.applyMotion(res, MotionRepeatFind)
	case ArgReplace:
		if s.mode != ModeNormal {
			return consumed
		}
		return e.replaceChars(ch, s.ConsumeCount())
	case ArgRegister:
		if r := []rune(ch); len(r) == 1 && ValidRegister(r[0]) {
			s.currentRegister = r[0]
		}
		return consumed
	}
	return consumed
}

// applyMotion uses a computed motion according to the mode: move the
// cursor, extend the selection, or feed the pending operator.
func (e *Engine) applyMotion(res MotionResult, kind MotionKind) KeyResult {
	switch e.state.mode {
	case ModeOperatorPending:
		return e.operateMotion(res, kind)
	case ModeVisual, ModeVisualLine:
		if !res.Failed {
			e.extendSelection(clampNormal(e.buf, res.Pos))
		}
		return consumed
	default:
		if !res.Failed {
			e.moveNormal(res.Pos)
		}
		return consumed
	}
}
