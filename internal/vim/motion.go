package vim

import "github.com/zjrosen/modal/internal/log"

// MotionKind enumerates the motions.
type MotionKind int

const (
	MotionLeft MotionKind = iota
	MotionRight
	MotionUp
	MotionDown
	MotionLineStart
	MotionFirstNonBlank
	MotionLineEnd
	MotionLastNonBlank
	MotionWordForward
	MotionBigWordForward
	MotionWordEnd
	MotionBigWordEnd
	MotionWordBackward
	MotionBigWordBackward
	MotionDocumentStart
	MotionDocumentEnd
	MotionRepeatFind
	MotionRepeatFindReverse
	motionCount
)

// MotionResult is the target of a motion. A failed motion leaves the
// cursor where it was.
type MotionResult struct {
	Pos    Position
	Kind   RangeKind
	Failed bool
}

func failedMotion(from Position) MotionResult {
	return MotionResult{Pos: from, Failed: true}
}

type motionFunc func(d *document, s *State, from Position, count int) MotionResult

var motionFuncs = [motionCount]motionFunc{
	MotionLeft:              motionLeft,
	MotionRight:             motionRight,
	MotionUp:                motionUp,
	MotionDown:              motionDown,
	MotionLineStart:         motionLineStart,
	MotionFirstNonBlank:     motionFirstNonBlank,
	MotionLineEnd:           motionLineEnd,
	MotionLastNonBlank:      motionLastNonBlank,
	MotionWordForward:       wordForward(false),
	MotionBigWordForward:    wordForward(true),
	MotionWordEnd:           wordEnd(false),
	MotionBigWordEnd:        wordEnd(true),
	MotionWordBackward:      wordBackward(false),
	MotionBigWordBackward:   wordBackward(true),
	MotionDocumentStart:     motionDocumentStart,
	MotionDocumentEnd:       motionDocumentEnd,
	MotionRepeatFind:        repeatFind(false),
	MotionRepeatFindReverse: repeatFind(true),
}

// ExecuteMotion computes a motion from the buffer cursor. It never
// mutates the buffer.
func ExecuteMotion(b Buffer, s *State, kind MotionKind, count int) MotionResult {
	return runMotion(newDocument(b), s, kind, b.Cursor(), count)
}

func runMotion(d *document, s *State, kind MotionKind, from Position, count int) MotionResult {
	if kind < 0 || kind >= motionCount {
		return failedMotion(from)
	}
	if count < 1 {
		count = 1
	}
	res := motionFuncs[kind](d, s, from, count)
	if res.Failed {
		log.Debug(log.CatEngine, "Motion failed", "motion", int(kind), "from", from.String())
	}
	return res
}

func motionLeft(_ *document, _ *State, from Position, count int) MotionResult {
	if from.Col == 0 {
		return failedMotion(from)
	}
	return MotionResult{Pos: Position{Row: from.Row, Col: max(0, from.Col-count)}, Kind: Exclusive}
}

// motionRight may land one past the last character only while an
// operator waits, so that "dl" can reach the end of the line.
func motionRight(d *document, s *State, from Position, count int) MotionResult {
	limit := d.lineLen(from.Row) - 1
	if s != nil && s.mode == ModeOperatorPending {
		limit++
	}
	col := min(limit, from.Col+count)
	if col <= from.Col {
		return failedMotion(from)
	}
	return MotionResult{Pos: Position{Row: from.Row, Col: col}, Kind: Exclusive}
}

func verticalTarget(d *document, from Position, row int) MotionResult {
	row = max(0, min(row, d.lineCount()-1))
	if row == from.Row {
		return failedMotion(from)
	}
	col := min(from.Col, max(0, d.lineLen(row)-1))
	return MotionResult{Pos: Position{Row: row, Col: col}, Kind: Linewise}
}

func motionUp(d *document, _ *State, from Position, count int) MotionResult {
	return verticalTarget(d, from, from.Row-count)
}

func motionDown(d *document, _ *State, from Position, count int) MotionResult {
	return verticalTarget(d, from, from.Row+count)
}

func motionLineStart(_ *document, _ *State, from Position, _ int) MotionResult {
	return MotionResult{Pos: Position{Row: from.Row}, Kind: Exclusive}
}

func motionFirstNonBlank(d *document, _ *State, from Position, _ int) MotionResult {
	return MotionResult{Pos: Position{Row: from.Row, Col: d.firstNonBlank(from.Row)}, Kind: Exclusive}
}

// motionLineEnd with a count moves to the end of the count-1'th next line.
func motionLineEnd(d *document, _ *State, from Position, count int) MotionResult {
	row := min(from.Row+count-1, d.lineCount()-1)
	return MotionResult{Pos: Position{Row: row, Col: max(0, d.lineLen(row)-1)}, Kind: Inclusive}
}

func motionLastNonBlank(d *document, _ *State, from Position, count int) MotionResult {
	row := min(from.Row+count-1, d.lineCount()-1)
	return MotionResult{Pos: Position{Row: row, Col: d.lastNonBlank(row)}, Kind: Inclusive}
}

func motionDocumentStart(d *document, _ *State, _ Position, count int) MotionResult {
	row := 0
	if count > 1 {
		row = min(count-1, d.lineCount()-1)
	}
	return MotionResult{Pos: Position{Row: row, Col: d.firstNonBlank(row)}, Kind: Linewise}
}

func motionDocumentEnd(d *document, _ *State, _ Position, count int) MotionResult {
	row := d.lineCount() - 1
	if count > 1 {
		row = min(count-1, row)
	}
	return MotionResult{Pos: Position{Row: row, Col: d.firstNonBlank(row)}, Kind: Linewise}
}

// wordForward skips the rest of the current run, then whitespace and line
// breaks. An empty line is a stop of its own. At the end of the document
// the result is the slot past the last character.
func wordForward(big bool) motionFunc {
	return func(d *document, _ *State, from Position, count int) MotionResult {
		p := from
		for range count {
			var ok bool
			p, ok = wordForwardOnce(d, p, big)
			if !ok {
				break
			}
		}
		if p == from {
			return failedMotion(from)
		}
		return MotionResult{Pos: p, Kind: Exclusive}
	}
}

func wordForwardOnce(d *document, p Position, big bool) (Position, bool) {
	ok := true
	switch cls := d.classAt(p, big); cls {
	case classWord, classPunct:
		for ok && d.classAt(p, big) == cls {
			p, ok = d.next(p)
		}
	case classEmpty:
		p, ok = d.next(p)
	}
	for ok && d.classAt(p, big) == classBlank {
		p, ok = d.next(p)
	}
	return p, ok
}

// wordEnd advances at least one slot, skips whitespace and empty lines,
// then moves to the last character of the run it reached.
func wordEnd(big bool) motionFunc {
	return func(d *document, _ *State, from Position, count int) MotionResult {
		p := from
		for range count {
			q, ok := wordEndOnce(d, p, big)
			if !ok {
				break
			}
			p = q
		}
		if p == from {
			return failedMotion(from)
		}
		return MotionResult{Pos: p, Kind: Inclusive}
	}
}

func wordEndOnce(d *document, p Position, big bool) (Position, bool) {
	p, ok := d.next(p)
	if !ok {
		return p, false
	}
	for ok {
		cls := d.classAt(p, big)
		if cls != classBlank && cls != classEmpty {
			break
		}
		p, ok = d.next(p)
	}
	if !ok {
		return p, false
	}
	cls := d.classAt(p, big)
	for {
		q, more := d.next(p)
		if !more || q.Row != p.Row || d.classAt(q, big) != cls {
			return p, true
		}
		p = q
	}
}

// wordBackward steps back one slot, skips whitespace and line breaks,
// then moves to the first character of that run.
func wordBackward(big bool) motionFunc {
	return func(d *document, _ *State, from Position, count int) MotionResult {
		p := from
		for range count {
			q, ok := wordBackwardOnce(d, p, big)
			if !ok {
				break
			}
			p = q
		}
		if p == from {
			return failedMotion(from)
		}
		return MotionResult{Pos: p, Kind: Exclusive}
	}
}

func wordBackwardOnce(d *document, p Position, big bool) (Position, bool) {
	p, ok := d.prev(p)
	if !ok {
		return p, false
	}
	for ok && d.classAt(p, big) == classBlank {
		var q Position
		q, ok = d.prev(p)
		if !ok {
			break
		}
		p = q
	}
	cls := d.classAt(p, big)
	if cls == classEmpty || cls == classBlank {
		return p, true
	}
	for p.Col > 0 {
		q := Position{Row: p.Row, Col: p.Col - 1}
		if d.classAt(q, big) != cls {
			break
		}
		p = q
	}
	return p, true
}

// FindChar scans the cursor's line for the count-th occurrence of char.
// Forward searches are inclusive, backward searches exclusive.
func FindChar(b Buffer, kind FindKind, char string, count int) MotionResult {
	return findChar(newDocument(b), b.Cursor(), kind, char, count)
}

func findChar(d *document, from Position, kind FindKind, char string, count int) MotionResult {
	if count < 1 {
		count = 1
	}
	line := d.line(from.Row)
	found := -1
	if kind.forward() {
		for i := from.Col + 1; i < len(line); i++ {
			if line[i] == char {
				count--
				if count == 0 {
					found = i
					break
				}
			}
		}
	} else {
		for i := from.Col - 1; i >= 0; i-- {
			if line[i] == char {
				count--
				if count == 0 {
					found = i
					break
				}
			}
		}
	}
	if found < 0 {
		return failedMotion(from)
	}
	res := MotionResult{Pos: Position{Row: from.Row, Col: found}, Kind: Inclusive}
	switch kind {
	case TillForward:
		res.Pos.Col--
	case FindBackward:
		res.Kind = Exclusive
	case TillBackward:
		res.Pos.Col++
		res.Kind = Exclusive
	}
	return res
}

func repeatFind(reverse bool) motionFunc {
	return func(d *document, s *State, from Position, count int) MotionResult {
		if s == nil || s.lastCharSearch == nil {
			return failedMotion(from)
		}
		kind := s.lastCharSearch.Kind
		if reverse {
			kind = kind.Reverse()
		}
		return findChar(d, from, kind, s.lastCharSearch.Char, count)
	}
}
