package vim

import (
	"strings"
	"unicode"

	"github.com/zjrosen/modal/internal/grapheme"
)

// OperatorKind enumerates the operators.
type OperatorKind int

const (
	OpDelete OperatorKind = iota
	OpChange
	OpYank
	OpIndent
	OpDedent
	OpLower
	OpUpper
	OpSwapCase
	operatorCount
)

func (op OperatorKind) String() string {
	switch op {
	case OpDelete:
		return "delete"
	case OpChange:
		return "change"
	case OpYank:
		return "yank"
	case OpIndent:
		return "indent"
	case OpDedent:
		return "dedent"
	case OpLower:
		return "lowercase"
	case OpUpper:
		return "uppercase"
	case OpSwapCase:
		return "swapcase"
	default:
		return "unknown"
	}
}

// OperatorResult reports what an operator did.
type OperatorResult struct {
	// Text is the text removed, yanked or rewritten.
	Text        string
	Changed     bool
	EnterInsert bool
}

// span is a range resolved against the buffer: [start, end) charwise, or
// rows startRow..endRow when linewise.
type span struct {
	start, end       Position
	linewise         bool
	startRow, endRow int
}

func resolve(b Buffer, r Range) span {
	r = r.Normalize()
	if r.Kind == Linewise {
		last := max(0, b.LineCount()-1)
		s := span{linewise: true, startRow: min(r.Start.Row, last), endRow: min(r.End.Row, last)}
		s.start = Position{Row: s.startRow}
		s.end = Position{Row: s.endRow, Col: lineLen(b, s.endRow)}
		return s
	}
	start, end := r.Start, r.End
	if r.Kind == Inclusive && end.Col < lineLen(b, end.Row) {
		end.Col++
	}
	return span{start: start, end: end, startRow: start.Row, endRow: end.Row}
}

type operatorFunc func(b Buffer, s *State, sp span) OperatorResult

var operatorFuncs = [operatorCount]operatorFunc{
	OpDelete:   opDelete,
	OpChange:   opChange,
	OpYank:     opYank,
	OpIndent:   opIndent,
	OpDedent:   opDedent,
	OpLower:    caseOperator(strings.ToLower),
	OpUpper:    caseOperator(strings.ToUpper),
	OpSwapCase: caseOperator(swapCase),
}

// ApplyOperator normalizes [start, end] of the given kind and applies op.
func ApplyOperator(b Buffer, s *State, op OperatorKind, start, end Position, kind RangeKind) OperatorResult {
	if op < 0 || op >= operatorCount {
		return OperatorResult{}
	}
	return operatorFuncs[op](b, s, resolve(b, Range{Start: start, End: end, Kind: kind}))
}

// textBetween extracts [start, end) without mutating the buffer.
func textBetween(b Buffer, start, end Position) string {
	if !start.Less(end) {
		return ""
	}
	if start.Row == end.Row {
		return grapheme.Slice(b.Line(start.Row), start.Col, end.Col)
	}
	var sb strings.Builder
	first := b.Line(start.Row)
	sb.WriteString(grapheme.Slice(first, start.Col, grapheme.Count(first)))
	for row := start.Row + 1; row < end.Row && row < b.LineCount(); row++ {
		sb.WriteByte('\n')
		sb.WriteString(b.Line(row))
	}
	sb.WriteByte('\n')
	if end.Row < b.LineCount() {
		sb.WriteString(grapheme.Slice(b.Line(end.Row), 0, end.Col))
	}
	return sb.String()
}

func linesText(b Buffer, from, to int) string {
	lines := make([]string, 0, to-from+1)
	for row := from; row <= to; row++ {
		lines = append(lines, b.Line(row))
	}
	return strings.Join(lines, "\n")
}

// deleteLines removes whole rows, taking the following line break, or the
// preceding one when the last row goes. The last remaining line is
// emptied rather than removed.
func deleteLines(b Buffer, from, to int) string {
	text := linesText(b, from, to)
	switch {
	case to+1 < b.LineCount():
		b.DeleteRange(Position{Row: from}, Position{Row: to + 1})
	case from > 0:
		b.DeleteRange(Position{Row: from - 1, Col: lineLen(b, from-1)}, Position{Row: to, Col: lineLen(b, to)})
	default:
		b.DeleteRange(Position{}, Position{Row: to, Col: lineLen(b, to)})
	}
	return text
}

func opDelete(b Buffer, s *State, sp span) OperatorResult {
	if sp.linewise {
		text := deleteLines(b, sp.startRow, sp.endRow)
		s.StoreRegister(text, true, false)
		row := min(sp.startRow, b.LineCount()-1)
		b.MoveCursor(Position{Row: row, Col: grapheme.FirstNonBlank(b.Line(row))}, false)
		return OperatorResult{Text: text, Changed: true}
	}
	if !sp.start.Less(sp.end) {
		s.currentRegister = RegUnnamed
		return OperatorResult{}
	}
	text := b.DeleteRange(sp.start, sp.end)
	s.StoreRegister(text, false, false)
	b.MoveCursor(clampNormal(b, sp.start), false)
	return OperatorResult{Text: text, Changed: true}
}

// opChange deletes the range and requests Insert mode. Linewise changes
// keep one line holding the first line's indentation.
func opChange(b Buffer, s *State, sp span) OperatorResult {
	if sp.linewise {
		text := linesText(b, sp.startRow, sp.endRow)
		indent := leadingWhitespace(b.Line(sp.startRow))
		b.ReplaceRange(sp.start, sp.end, indent)
		s.StoreRegister(text, true, false)
		b.MoveCursor(Position{Row: sp.startRow, Col: grapheme.Count(indent)}, false)
		return OperatorResult{Text: text, Changed: true, EnterInsert: true}
	}
	if !sp.start.Less(sp.end) {
		s.currentRegister = RegUnnamed
		b.MoveCursor(sp.start, false)
		return OperatorResult{EnterInsert: true}
	}
	text := b.DeleteRange(sp.start, sp.end)
	s.StoreRegister(text, false, false)
	b.MoveCursor(sp.start, false)
	return OperatorResult{Text: text, Changed: true, EnterInsert: true}
}

func opYank(b Buffer, s *State, sp span) OperatorResult {
	if sp.linewise {
		text := linesText(b, sp.startRow, sp.endRow)
		s.StoreRegister(text, true, true)
		cur := b.Cursor()
		if cur.Row != sp.startRow {
			b.MoveCursor(clampNormal(b, Position{Row: sp.startRow, Col: cur.Col}), false)
		}
		return OperatorResult{Text: text}
	}
	text := textBetween(b, sp.start, sp.end)
	s.StoreRegister(text, false, true)
	b.MoveCursor(clampNormal(b, sp.start), false)
	return OperatorResult{Text: text}
}

func opIndent(b Buffer, s *State, sp span) OperatorResult {
	changed := false
	for row := sp.startRow; row <= sp.endRow; row++ {
		if b.Line(row) == "" {
			continue
		}
		b.ReplaceRange(Position{Row: row}, Position{Row: row}, s.indentUnit)
		changed = true
	}
	b.MoveCursor(Position{Row: sp.startRow, Col: grapheme.FirstNonBlank(b.Line(sp.startRow))}, false)
	return OperatorResult{Changed: changed}
}

// opDedent strips a leading tab, or up to one indent unit of spaces.
func opDedent(b Buffer, s *State, sp span) OperatorResult {
	width := len(s.indentUnit)
	if strings.Trim(s.indentUnit, " ") != "" {
		width = 4
	}
	changed := false
	for row := sp.startRow; row <= sp.endRow; row++ {
		line := b.Line(row)
		n := 0
		if strings.HasPrefix(line, "\t") {
			n = 1
		} else {
			for n < width && n < len(line) && line[n] == ' ' {
				n++
			}
		}
		if n == 0 {
			continue
		}
		b.DeleteRange(Position{Row: row}, Position{Row: row, Col: n})
		changed = true
	}
	b.MoveCursor(Position{Row: sp.startRow, Col: grapheme.FirstNonBlank(b.Line(sp.startRow))}, false)
	return OperatorResult{Changed: changed}
}

func caseOperator(transform func(string) string) operatorFunc {
	return func(b Buffer, s *State, sp span) OperatorResult {
		cur := b.Cursor()
		text := textBetween(b, sp.start, sp.end)
		if sp.linewise {
			text = linesText(b, sp.startRow, sp.endRow)
		}
		out := transform(text)
		if out != text {
			b.ReplaceRange(sp.start, sp.end, out)
		}
		if sp.linewise {
			if cur.Row < sp.startRow || cur.Row > sp.endRow {
				cur = Position{Row: sp.startRow}
			}
			b.MoveCursor(clampNormal(b, cur), false)
		} else {
			b.MoveCursor(clampNormal(b, sp.start), false)
		}
		return OperatorResult{Text: out, Changed: out != text}
	}
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		default:
			return r
		}
	}, s)
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
