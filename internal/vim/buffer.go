package vim

import "github.com/zjrosen/modal/internal/grapheme"

// Buffer is the text surface the engine edits. Hosts implement it over
// their own widget; internal/textbuf provides an in-memory version.
//
// Columns are grapheme indices. Positions passed to DeleteRange and
// ReplaceRange may address one past the last grapheme of a line, and
// (row+1, 0) addresses the start of the following line, so a range can
// swallow line breaks.
type Buffer interface {
	Text() string
	Line(row int) string
	LineCount() int

	Cursor() Position
	// MoveCursor places the cursor. With selectText the selection is
	// extended to pos instead of collapsed.
	MoveCursor(pos Position, selectText bool)
	// SetSelection atomically sets both selection endpoints; the cursor
	// ends up at cursor.
	SetSelection(anchor, cursor Position)

	// InsertText inserts at the cursor and leaves the cursor after the
	// inserted text.
	InsertText(text string)
	// DeleteRange removes [start, end) and returns the removed text.
	DeleteRange(start, end Position) string
	// ReplaceRange replaces [start, end) with text.
	ReplaceRange(start, end Position, text string)

	// Undo and Redo are best effort and may leave the buffer shorter.
	Undo()
	Redo()
}

// lineLen returns the grapheme length of a row, 0 for rows out of range.
func lineLen(b Buffer, row int) int {
	if row < 0 || row >= b.LineCount() {
		return 0
	}
	return grapheme.Count(b.Line(row))
}

// clampNormal clamps pos to the Normal/Visual mode bounds.
func clampNormal(b Buffer, pos Position) Position {
	pos = clampRow(b, pos)
	maxCol := lineLen(b, pos.Row) - 1
	if pos.Col > maxCol {
		pos.Col = maxCol
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	return pos
}

// clampInsert clamps pos to the Insert mode bounds.
func clampInsert(b Buffer, pos Position) Position {
	pos = clampRow(b, pos)
	if n := lineLen(b, pos.Row); pos.Col > n {
		pos.Col = n
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	return pos
}

func clampRow(b Buffer, pos Position) Position {
	last := b.LineCount() - 1
	if last < 0 {
		last = 0
	}
	if pos.Row > last {
		pos.Row = last
	}
	if pos.Row < 0 {
		pos.Row = 0
	}
	return pos
}
