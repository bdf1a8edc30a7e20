// Package textbuf is an in-memory text buffer with a cursor, a selection
// and grouped undo/redo. It implements vim.Buffer.
package textbuf

import (
	"strings"

	"github.com/zjrosen/modal/internal/grapheme"
	"github.com/zjrosen/modal/internal/vim"
)

// DefaultUndoLimit caps the number of undo groups kept.
const DefaultUndoLimit = 1000

// Buffer holds lines of text. Columns are grapheme indices.
type Buffer struct {
	lines   []string
	cursor  vim.Position
	anchor  *vim.Position
	history *history
}

var _ vim.Buffer = (*Buffer)(nil)

// New creates a buffer holding text.
func New(text string) *Buffer {
	b := &Buffer{history: newHistory(DefaultUndoLimit)}
	b.lines = splitLines(text)
	return b
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Text returns the whole buffer.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// SetText replaces the content, moves the cursor home and forgets history.
func (b *Buffer) SetText(text string) {
	b.lines = splitLines(text)
	b.cursor = vim.Position{}
	b.anchor = nil
	b.history.clear()
}

// Line returns one row, or "" out of range.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// LineCount is always at least 1.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Cursor returns the cursor position.
func (b *Buffer) Cursor() vim.Position { return b.cursor }

// MoveCursor places the cursor, extending the selection when selectText is set.
func (b *Buffer) MoveCursor(pos vim.Position, selectText bool) {
	if selectText {
		if b.anchor == nil {
			a := b.cursor
			b.anchor = &a
		}
	} else {
		b.anchor = nil
	}
	b.cursor = b.clamp(pos)
}

// SetSelection sets both selection ends.
func (b *Buffer) SetSelection(anchor, cursor vim.Position) {
	a := b.clamp(anchor)
	b.anchor = &a
	b.cursor = b.clamp(cursor)
}

// Selection returns the selection ends in the order they were set.
func (b *Buffer) Selection() (anchor, cursor vim.Position, ok bool) {
	if b.anchor == nil {
		return vim.Position{}, b.cursor, false
	}
	return *b.anchor, b.cursor, true
}

// InsertText inserts at the cursor and moves the cursor past the text.
func (b *Buffer) InsertText(text string) {
	end := b.replace(b.cursor, b.cursor, text, true)
	b.anchor = nil
	b.cursor = end
}

// DeleteRange removes [start, end), leaving the cursor at start.
func (b *Buffer) DeleteRange(start, end vim.Position) string {
	start, end = b.order(start, end)
	removed := b.slice(start, end)
	b.replace(start, end, "", true)
	b.anchor = nil
	b.cursor = b.clamp(start)
	return removed
}

// ReplaceRange swaps [start, end) for text, leaving the cursor at start.
func (b *Buffer) ReplaceRange(start, end vim.Position, text string) {
	start, end = b.order(start, end)
	b.replace(start, end, text, true)
	b.anchor = nil
	b.cursor = b.clamp(start)
}

// Undo reverts the latest edit group.
func (b *Buffer) Undo() {
	g, ok := b.history.undoGroup()
	if !ok {
		return
	}
	for i := len(g) - 1; i >= 0; i-- {
		e := g[i]
		b.replace(e.at, b.endOf(e.at, e.inserted), e.removed, false)
		b.cursor = b.clamp(e.cursor)
	}
	b.anchor = nil
}

// Redo reapplies the next edit group.
func (b *Buffer) Redo() {
	g, ok := b.history.redoGroup()
	if !ok {
		return
	}
	for _, e := range g {
		b.replace(e.at, b.endOf(e.at, e.removed), e.inserted, false)
	}
	b.cursor = b.clamp(g[0].at)
	b.anchor = nil
}

// CanUndo reports whether Undo would change anything.
func (b *Buffer) CanUndo() bool { return b.history.canUndo() }

// CanRedo reports whether Redo would change anything.
func (b *Buffer) CanRedo() bool { return b.history.canRedo() }

// BeginGroup starts collecting edits into one undo step, e.g. for an
// Insert mode session.
func (b *Buffer) BeginGroup() { b.history.begin() }

// EndGroup closes the current undo step.
func (b *Buffer) EndGroup() { b.history.end() }

func (b *Buffer) order(start, end vim.Position) (vim.Position, vim.Position) {
	if end.Less(start) {
		start, end = end, start
	}
	return b.clampEdit(start), b.clampEdit(end)
}

// clamp keeps a cursor inside the text, allowing one past the end of a line.
func (b *Buffer) clamp(p vim.Position) vim.Position {
	p.Row = max(0, min(p.Row, len(b.lines)-1))
	p.Col = max(0, min(p.Col, grapheme.Count(b.lines[p.Row])))
	return p
}

// clampEdit additionally maps (LineCount, 0) to the end of the last line.
func (b *Buffer) clampEdit(p vim.Position) vim.Position {
	if p.Row >= len(b.lines) {
		last := len(b.lines) - 1
		return vim.Position{Row: last, Col: grapheme.Count(b.lines[last])}
	}
	return b.clamp(p)
}

func (b *Buffer) slice(start, end vim.Position) string {
	if !start.Less(end) {
		return ""
	}
	if start.Row == end.Row {
		return grapheme.Slice(b.lines[start.Row], start.Col, end.Col)
	}
	parts := make([]string, 0, end.Row-start.Row+1)
	first := b.lines[start.Row]
	parts = append(parts, grapheme.Slice(first, start.Col, grapheme.Count(first)))
	parts = append(parts, b.lines[start.Row+1:end.Row]...)
	parts = append(parts, grapheme.Slice(b.lines[end.Row], 0, end.Col))
	return strings.Join(parts, "\n")
}

// endOf returns where text ends when it starts at p.
func (b *Buffer) endOf(p vim.Position, text string) vim.Position {
	n := strings.Count(text, "\n")
	if n == 0 {
		return vim.Position{Row: p.Row, Col: p.Col + grapheme.Count(text)}
	}
	last := text[strings.LastIndex(text, "\n")+1:]
	return vim.Position{Row: p.Row + n, Col: grapheme.Count(last)}
}

// replace swaps [start, end) for text and returns the end of the new
// text. With record, the edit is pushed onto the undo history.
func (b *Buffer) replace(start, end vim.Position, text string, record bool) vim.Position {
	start, end = b.clampEdit(start), b.clampEdit(end)
	if record {
		removed := b.slice(start, end)
		if removed == "" && text == "" {
			return start
		}
		b.history.push(edit{at: start, removed: removed, inserted: text, cursor: b.cursor})
	}

	firstLine := b.lines[start.Row]
	lastLine := b.lines[end.Row]
	prefix := grapheme.Slice(firstLine, 0, start.Col)
	suffix := grapheme.Slice(lastLine, end.Col, grapheme.Count(lastLine))
	replacement := splitLines(prefix + text + suffix)

	lines := make([]string, 0, len(b.lines)-(end.Row-start.Row+1)+len(replacement))
	lines = append(lines, b.lines[:start.Row]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[end.Row+1:]...)
	b.lines = lines

	return b.endOf(start, text)
}
