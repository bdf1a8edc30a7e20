package vim

import "github.com/zjrosen/modal/internal/log"

func (e *Engine) enterVisual(mode Mode) {
	cur := e.buf.Cursor()
	e.setMode(mode)
	e.state.setAnchor(cur)
	e.lineCursor = cur
	e.renderSelection(cur)
}

// exitVisual collapses the selection at the logical cursor.
func (e *Engine) exitVisual() {
	pos := e.cursor()
	e.setMode(ModeNormal)
	e.moveNormal(pos)
}

// extendSelection moves the far end of the selection to pos.
func (e *Engine) extendSelection(pos Position) {
	e.lineCursor = pos
	if e.state.mode == ModeVisual {
		e.buf.MoveCursor(pos, true)
		return
	}
	e.renderSelection(pos)
}

// renderSelection pushes the selection to the buffer. VisualLine snaps
// to whole lines; the endpoint on the smaller row takes column 0.
func (e *Engine) renderSelection(cur Position) {
	anchor, ok := e.state.VisualAnchor()
	if !ok {
		return
	}
	if e.state.mode != ModeVisualLine {
		e.buf.SetSelection(anchor, cur)
		return
	}
	if anchor.Row <= cur.Row {
		e.buf.SetSelection(Position{Row: anchor.Row}, Position{Row: cur.Row, Col: lineLen(e.buf, cur.Row)})
	} else {
		e.buf.SetSelection(Position{Row: anchor.Row, Col: lineLen(e.buf, anchor.Row)}, Position{Row: cur.Row})
	}
}

func (e *Engine) handleVisual(key string) KeyResult {
	s := e.state
	if s.pendingArg != nil {
		return e.completeArg(key)
	}
	if isEscape(key) {
		e.exitVisual()
		return consumed
	}
	if s.prefix != "" {
		seq := s.prefix + key
		s.prefix = ""
		if b, ok := e.keymap.Visual(seq); ok {
			return e.dispatchVisual(b)
		}
		if e.keymap.IsPrefix(s.mode, seq) {
			s.prefix = seq
			return consumed
		}
		log.Debug(log.CatKeymap, "Discarded key sequence", "keys", seq, "mode", s.mode.String())
		s.inputBuffer = ""
		return consumed
	}
	if s.AccumulateDigit(key) {
		return consumed
	}
	if b, ok := e.keymap.Visual(key); ok {
		return e.dispatchVisual(b)
	}
	if e.keymap.IsPrefix(s.mode, key) {
		s.prefix = key
		return consumed
	}
	return KeyResult{}
}

func (e *Engine) dispatchVisual(b Binding) KeyResult {
	s := e.state
	switch b.Kind {
	case KindMotion:
		res := runMotion(newDocument(e.buf), s, b.Motion, e.cursor(), s.ConsumeCount())
		return e.applyMotion(res, b.Motion)
	case KindOperator:
		s.inputBuffer = ""
		r, _ := e.Selection()
		e.setMode(ModeNormal)
		return e.applyOperator(b.Operator, e.includeLineBreak(r))
	case KindModeSwitch:
		switch {
		case b.Target == s.mode:
			e.exitVisual()
		case b.Target == ModeVisual || b.Target == ModeVisualLine:
			cur := e.cursor()
			e.setMode(b.Target)
			e.lineCursor = cur
			e.renderSelection(cur)
		case b.Target == ModeCommandLine:
			e.exitVisual()
			return e.startCommandLine()
		}
		return consumed
	case KindArg:
		if b.Arg != ArgReplace {
			s.pendingArg = &b
		}
		return consumed
	case KindAction:
		return e.visualAction(b.Action)
	}
	return KeyResult{}
}

// includeLineBreak extends a charwise selection that ends on the end of a
// line, as on an empty line, over the following line break.
func (e *Engine) includeLineBreak(r Range) Range {
	if r.Kind != Inclusive || r.End.Col < lineLen(e.buf, r.End.Row) || r.End.Row >= e.buf.LineCount()-1 {
		return r
	}
	return Range{Start: r.Start, End: Position{Row: r.End.Row + 1}, Kind: Exclusive}
}

func (e *Engine) visualAction(act ActionKind) KeyResult {
	s := e.state
	s.inputBuffer = ""
	r, ok := e.Selection()
	if !ok {
		return consumed
	}
	switch act {
	case ActVisualSwapAnchor:
		anchor, _ := s.VisualAnchor()
		cur := e.cursor()
		s.setAnchor(cur)
		e.lineCursor = anchor
		e.renderSelection(anchor)
		return consumed
	case ActVisualInsert:
		start := r.Start
		if r.Kind == Linewise {
			start.Col = 0
		}
		e.setMode(ModeInsert)
		e.buf.MoveCursor(clampInsert(e.buf, start), false)
		return KeyResult{Consumed: true, EnterInsert: true}
	case ActVisualAppend:
		end := r.End
		if r.Kind == Linewise {
			end.Col = lineLen(e.buf, end.Row)
		} else {
			end.Col++
		}
		e.setMode(ModeInsert)
		e.buf.MoveCursor(clampInsert(e.buf, end), false)
		return KeyResult{Consumed: true, EnterInsert: true}
	}
	return consumed
}
