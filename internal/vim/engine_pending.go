package vim

import "github.com/zjrosen/modal/internal/log"

// handleOperatorPending waits for the range of the pending operator.
func (e *Engine) handleOperatorPending(key string) KeyResult {
	s := e.state
	if s.pendingArg != nil {
		return e.completeArg(key)
	}
	if isEscape(key) {
		e.cancelOperator()
		return consumed
	}
	if s.prefix != "" {
		seq := s.prefix + key
		s.prefix = ""
		if b, ok := e.keymap.Pending(seq); ok {
			return e.dispatchPending(b)
		}
		if e.keymap.IsPrefix(ModeOperatorPending, seq) {
			s.prefix = seq
			return consumed
		}
		log.Debug(log.CatKeymap, "Discarded operator range", "keys", seq)
		e.cancelOperator()
		return consumed
	}
	if s.AccumulateDigit(key) {
		return consumed
	}
	// gUU, guu and g~~ repeat only the operator's last key.
	if op := s.pendingOperator; op != nil && len(op.Keys) > 1 && key == op.Keys[len(op.Keys)-1:] {
		s.motionCount = s.ConsumeCount()
		return e.lineOperator()
	}
	if b, ok := e.keymap.Pending(key); ok {
		return e.dispatchPending(b)
	}
	if e.keymap.IsPrefix(ModeOperatorPending, key) {
		s.prefix = key
		return consumed
	}
	e.cancelOperator()
	return consumed
}

func (e *Engine) dispatchPending(b Binding) KeyResult {
	s := e.state
	switch b.Kind {
	case KindOperator:
		if b.Operator != s.pendingOperator.Operator {
			e.cancelOperator()
			return consumed
		}
		s.motionCount = s.ConsumeCount()
		return e.lineOperator()
	case KindMotion:
		s.motionCount = s.ConsumeCount()
		res := runMotion(newDocument(e.buf), s, b.Motion, e.buf.Cursor(), s.EffectiveCount())
		return e.operateMotion(res, b.Motion)
	case KindArg:
		s.pendingArg = &b
		return consumed
	case KindTextObject:
		s.motionCount = s.ConsumeCount()
		res := runTextObject(newDocument(e.buf), b.Object, e.buf.Cursor(), s.EffectiveCount())
		if res.Failed {
			e.cancelOperator()
			return consumed
		}
		return e.applyOperator(s.pendingOperator.Operator, res.Range())
	}
	e.cancelOperator()
	return consumed
}

// lineOperator is the doubled-operator shortcut (dd, yy, >>): the
// operator applies to count whole lines from the cursor row.
func (e *Engine) lineOperator() KeyResult {
	s := e.state
	row := e.buf.Cursor().Row
	end := min(row+s.EffectiveCount()-1, e.buf.LineCount()-1)
	return e.applyOperator(s.pendingOperator.Operator, Range{
		Start: Position{Row: row},
		End:   Position{Row: end},
		Kind:  Linewise,
	})
}

// operateMotion applies the pending operator from the cursor to a motion
// target. A failed motion cancels the operator.
func (e *Engine) operateMotion(res MotionResult, kind MotionKind) KeyResult {
	s := e.state
	if res.Failed {
		e.cancelOperator()
		return consumed
	}
	op := s.pendingOperator.Operator
	from := e.buf.Cursor()
	r := Range{Start: from, End: res.Pos, Kind: res.Kind}

	if kind == MotionWordForward || kind == MotionBigWordForward {
		big := kind == MotionBigWordForward
		d := newDocument(e.buf)
		if op == OpChange && d.classAt(from, big) != classBlank && d.classAt(from, big) != classEmpty {
			// cw changes to the end of the word, like ce.
			r = Range{Start: from, End: changeWordEnd(d, from, big, s.EffectiveCount()), Kind: Inclusive}
		} else if r.End.Row > from.Row && r.End.Col <= d.firstNonBlank(r.End.Row) {
			// An exclusive motion ending at the start of a later line stops
			// at the end of the line before it.
			r.End = Position{Row: r.End.Row - 1, Col: d.lineLen(r.End.Row - 1)}
		}
	}
	return e.applyOperator(op, r)
}

// changeWordEnd returns the end of the current run, then count-1 further
// word ends.
func changeWordEnd(d *document, from Position, big bool, count int) Position {
	p := from
	cls := d.classAt(p, big)
	for p.Col+1 < d.lineLen(p.Row) && d.classAt(Position{Row: p.Row, Col: p.Col + 1}, big) == cls {
		p.Col++
	}
	for i := 1; i < count; i++ {
		q, ok := wordEndOnce(d, p, big)
		if !ok {
			break
		}
		p = q
	}
	return p
}

// applyOperator runs op over r and settles the mode: Insert for change,
// Normal otherwise.
func (e *Engine) applyOperator(op OperatorKind, r Range) KeyResult {
	res := ApplyOperator(e.buf, e.state, op, r.Start, r.End, r.Kind)
	if res.Changed {
		e.changed = true
	}
	if res.EnterInsert {
		e.setMode(ModeInsert)
		e.buf.MoveCursor(clampInsert(e.buf, e.buf.Cursor()), false)
		return KeyResult{Consumed: true, EnterInsert: true}
	}
	e.setMode(ModeNormal)
	e.moveNormal(e.buf.Cursor())
	return consumed
}

func (e *Engine) cancelOperator() {
	log.Debug(log.CatEngine, "Operator cancelled")
	e.state.currentRegister = RegUnnamed
	e.setMode(ModeNormal)
}
