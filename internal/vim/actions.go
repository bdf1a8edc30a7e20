package vim

import (
	"strings"

	"github.com/zjrosen/modal/internal/grapheme"
)

type actionFunc func(e *Engine, count int) KeyResult

var actionFuncs = [actionCount]actionFunc{
	ActInsert:           (*Engine).actInsert,
	ActInsertLineStart:  (*Engine).actInsertLineStart,
	ActAppend:           (*Engine).actAppend,
	ActAppendLineEnd:    (*Engine).actAppendLineEnd,
	ActOpenBelow:        (*Engine).actOpenBelow,
	ActOpenAbove:        (*Engine).actOpenAbove,
	ActSubstitute:       (*Engine).actSubstitute,
	ActSubstituteLine:   (*Engine).actSubstituteLine,
	ActChangeToEnd:      (*Engine).actChangeToEnd,
	ActDeleteToEnd:      (*Engine).actDeleteToEnd,
	ActUndo:             (*Engine).actUndo,
	ActRedo:             (*Engine).actRedo,
	ActPasteAfter:       (*Engine).actPasteAfter,
	ActPasteBefore:      (*Engine).actPasteBefore,
	ActDeleteChar:       (*Engine).actDeleteChar,
	ActDeleteCharBefore: (*Engine).actDeleteCharBefore,
	ActSwapCaseChar:     (*Engine).actSwapCaseChar,
	ActJoin:             (*Engine).actJoin,
}

// runAction executes an immediate Normal mode action.
func (e *Engine) runAction(act ActionKind) KeyResult {
	if act == ActRepeat {
		return e.repeatLastChange()
	}
	if act < 0 || act >= actionCount || actionFuncs[act] == nil {
		return consumed
	}
	return actionFuncs[act](e, e.state.ConsumeCount())
}

func (e *Engine) insertAt(pos Position) KeyResult {
	e.setMode(ModeInsert)
	e.buf.MoveCursor(clampInsert(e.buf, pos), false)
	return KeyResult{Consumed: true, EnterInsert: true}
}

func (e *Engine) actInsert(int) KeyResult {
	return e.insertAt(e.buf.Cursor())
}

func (e *Engine) actInsertLineStart(int) KeyResult {
	cur := e.buf.Cursor()
	return e.insertAt(Position{Row: cur.Row, Col: grapheme.FirstNonBlank(e.buf.Line(cur.Row))})
}

func (e *Engine) actAppend(int) KeyResult {
	cur := e.buf.Cursor()
	if lineLen(e.buf, cur.Row) > 0 {
		cur.Col++
	}
	return e.insertAt(cur)
}

func (e *Engine) actAppendLineEnd(int) KeyResult {
	row := e.buf.Cursor().Row
	return e.insertAt(Position{Row: row, Col: lineLen(e.buf, row)})
}

func (e *Engine) actOpenBelow(int) KeyResult {
	row := e.buf.Cursor().Row
	e.buf.MoveCursor(Position{Row: row, Col: lineLen(e.buf, row)}, false)
	e.buf.InsertText("\n")
	e.changed = true
	return e.insertAt(Position{Row: row + 1})
}

func (e *Engine) actOpenAbove(int) KeyResult {
	row := e.buf.Cursor().Row
	e.buf.MoveCursor(Position{Row: row}, false)
	e.buf.InsertText("\n")
	e.changed = true
	return e.insertAt(Position{Row: row})
}

func (e *Engine) actSubstitute(count int) KeyResult {
	cur := e.buf.Cursor()
	end := min(cur.Col+count, lineLen(e.buf, cur.Row))
	return e.applyOperator(OpChange, Range{Start: cur, End: Position{Row: cur.Row, Col: end}, Kind: Exclusive})
}

func (e *Engine) actSubstituteLine(count int) KeyResult {
	row := e.buf.Cursor().Row
	end := min(row+count-1, e.buf.LineCount()-1)
	return e.applyOperator(OpChange, Range{Start: Position{Row: row}, End: Position{Row: end}, Kind: Linewise})
}

func (e *Engine) toLineEnd(count int) Range {
	cur := e.buf.Cursor()
	res := motionLineEnd(newDocument(e.buf), e.state, cur, count)
	return Range{Start: cur, End: res.Pos, Kind: Inclusive}
}

func (e *Engine) actChangeToEnd(count int) KeyResult {
	return e.applyOperator(OpChange, e.toLineEnd(count))
}

func (e *Engine) actDeleteToEnd(count int) KeyResult {
	return e.applyOperator(OpDelete, e.toLineEnd(count))
}

// actUndo and actRedo clamp the cursor before and after delegating, since
// the buffer may shrink beneath it.
func (e *Engine) actUndo(count int) KeyResult {
	e.recordable = false
	e.moveNormal(e.buf.Cursor())
	for range count {
		e.buf.Undo()
		e.moveNormal(e.buf.Cursor())
	}
	return consumed
}

func (e *Engine) actRedo(count int) KeyResult {
	e.recordable = false
	e.moveNormal(e.buf.Cursor())
	for range count {
		e.buf.Redo()
		e.moveNormal(e.buf.Cursor())
	}
	return consumed
}

func (e *Engine) actPasteAfter(count int) KeyResult {
	return e.paste(true, count)
}

func (e *Engine) actPasteBefore(count int) KeyResult {
	return e.paste(false, count)
}

// paste inserts the selected register. Linewise text becomes whole lines
// below or above; charwise text goes inline after or at the cursor.
func (e *Engine) paste(after bool, count int) KeyResult {
	reg, ok := e.state.TakeRegister()
	if !ok || (reg.Content == "" && !reg.Linewise) {
		return consumed
	}
	cur := e.buf.Cursor()
	e.changed = true

	if reg.Linewise {
		text := strings.Repeat(reg.Content+"\n", count)
		text = strings.TrimSuffix(text, "\n")
		row := cur.Row
		if after {
			e.buf.MoveCursor(Position{Row: row, Col: lineLen(e.buf, row)}, false)
			e.buf.InsertText("\n" + text)
			row++
		} else {
			e.buf.MoveCursor(Position{Row: row}, false)
			e.buf.InsertText(text + "\n")
		}
		e.moveNormal(Position{Row: row, Col: grapheme.FirstNonBlank(e.buf.Line(row))})
		return consumed
	}

	text := strings.Repeat(reg.Content, count)
	at := cur
	if after && lineLen(e.buf, cur.Row) > 0 {
		at.Col++
	}
	e.buf.MoveCursor(at, false)
	e.buf.InsertText(text)
	if strings.Contains(text, "\n") {
		e.moveNormal(at)
	} else {
		e.moveNormal(Position{Row: at.Row, Col: at.Col + grapheme.Count(text) - 1})
	}
	return consumed
}

func (e *Engine) actDeleteChar(count int) KeyResult {
	cur := e.buf.Cursor()
	n := lineLen(e.buf, cur.Row)
	if n == 0 {
		e.state.currentRegister = RegUnnamed
		return consumed
	}
	end := min(cur.Col+count, n)
	return e.applyOperator(OpDelete, Range{Start: cur, End: Position{Row: cur.Row, Col: end}, Kind: Exclusive})
}

func (e *Engine) actDeleteCharBefore(count int) KeyResult {
	cur := e.buf.Cursor()
	if cur.Col == 0 {
		e.state.currentRegister = RegUnnamed
		return consumed
	}
	start := Position{Row: cur.Row, Col: max(0, cur.Col-count)}
	return e.applyOperator(OpDelete, Range{Start: start, End: cur, Kind: Exclusive})
}

// actSwapCaseChar toggles count characters and steps past them.
func (e *Engine) actSwapCaseChar(count int) KeyResult {
	cur := e.buf.Cursor()
	n := lineLen(e.buf, cur.Row)
	if n == 0 {
		return consumed
	}
	end := Position{Row: cur.Row, Col: min(cur.Col+count, n)}
	text := textBetween(e.buf, cur, end)
	if swapped := swapCase(text); swapped != text {
		e.buf.ReplaceRange(cur, end, swapped)
		e.changed = true
	}
	e.moveNormal(end)
	return consumed
}

// actJoin joins count lines (at least two). The break and the next
// line's indentation become one space, or nothing before a blank line.
func (e *Engine) actJoin(count int) KeyResult {
	row := e.buf.Cursor().Row
	joins := max(1, count-1)
	col := -1
	for range joins {
		if row+1 >= e.buf.LineCount() {
			break
		}
		cur := e.buf.Line(row)
		next := e.buf.Line(row + 1)
		indent := grapheme.Count(leadingWhitespace(next))
		sep := " "
		if grapheme.IsBlank(next) {
			sep = ""
		}
		col = grapheme.Count(cur)
		e.buf.ReplaceRange(Position{Row: row, Col: col}, Position{Row: row + 1, Col: indent}, sep)
		e.changed = true
	}
	if col >= 0 {
		e.moveNormal(Position{Row: row, Col: col})
	}
	return consumed
}

// replaceChars is 'r': count characters become ch, the cursor rests on
// the last one. It fails when the line is too short.
func (e *Engine) replaceChars(ch string, count int) KeyResult {
	cur := e.buf.Cursor()
	if cur.Col+count > lineLen(e.buf, cur.Row) {
		e.state.currentRegister = RegUnnamed
		return consumed
	}
	end := Position{Row: cur.Row, Col: cur.Col + count}
	e.buf.ReplaceRange(cur, end, strings.Repeat(ch, count))
	e.changed = true
	e.moveNormal(Position{Row: cur.Row, Col: end.Col - 1})
	return consumed
}
