package textbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/modal/internal/vim"
)

func pos(row, col int) vim.Position { return vim.Position{Row: row, Col: col} }

func TestNew_SplitsLines(t *testing.T) {
	b := New("a\nbc\n")
	require.Equal(t, 3, b.LineCount())
	require.Equal(t, "bc", b.Line(1))
	require.Equal(t, "", b.Line(2))
	require.Equal(t, "", b.Line(9))
	require.Equal(t, "a\nbc\n", b.Text())
}

func TestNew_EmptyHasOneLine(t *testing.T) {
	b := New("")
	require.Equal(t, 1, b.LineCount())
	require.Equal(t, "", b.Text())
}

func TestInsertText_MovesCursorPastText(t *testing.T) {
	b := New("hello")
	b.MoveCursor(pos(0, 2), false)
	b.InsertText("XY\nZ")
	require.Equal(t, "heXY\nZllo", b.Text())
	require.Equal(t, pos(1, 1), b.Cursor())
}

func TestDeleteRange_AcrossLines(t *testing.T) {
	b := New("one\ntwo\nthree")
	removed := b.DeleteRange(pos(0, 1), pos(2, 2))
	require.Equal(t, "ne\ntwo\nth", removed)
	require.Equal(t, "oree", b.Text())
	require.Equal(t, pos(0, 1), b.Cursor())
}

func TestDeleteRange_SwallowsLineBreak(t *testing.T) {
	b := New("one\ntwo")
	removed := b.DeleteRange(pos(0, 0), pos(1, 0))
	require.Equal(t, "one\n", removed)
	require.Equal(t, "two", b.Text())
}

func TestDeleteRange_PastLastLineClamps(t *testing.T) {
	b := New("one\ntwo")
	removed := b.DeleteRange(pos(1, 0), pos(2, 0))
	require.Equal(t, "two", removed)
	require.Equal(t, "one\n", b.Text())
}

func TestReplaceRange_Graphemes(t *testing.T) {
	b := New("a😀b")
	b.ReplaceRange(pos(0, 1), pos(0, 2), "xy")
	require.Equal(t, "axyb", b.Text())
}

func TestSelection(t *testing.T) {
	b := New("abc\ndef")
	b.MoveCursor(pos(0, 1), false)
	b.MoveCursor(pos(1, 2), true)
	anchor, cursor, ok := b.Selection()
	require.True(t, ok)
	require.Equal(t, pos(0, 1), anchor)
	require.Equal(t, pos(1, 2), cursor)

	b.SetSelection(pos(1, 3), pos(0, 0))
	anchor, cursor, ok = b.Selection()
	require.True(t, ok)
	require.Equal(t, pos(1, 3), anchor)
	require.Equal(t, pos(0, 0), cursor)

	b.MoveCursor(pos(0, 0), false)
	_, _, ok = b.Selection()
	require.False(t, ok)
}

func TestMoveCursor_Clamps(t *testing.T) {
	b := New("ab\nc")
	b.MoveCursor(pos(7, 9), false)
	require.Equal(t, pos(1, 1), b.Cursor())
	b.MoveCursor(pos(-1, -1), false)
	require.Equal(t, pos(0, 0), b.Cursor())
}

func TestUndoRedo(t *testing.T) {
	b := New("hello world")
	b.DeleteRange(pos(0, 0), pos(0, 6))
	require.Equal(t, "world", b.Text())
	b.MoveCursor(pos(0, 5), false)
	b.InsertText("!")
	require.Equal(t, "world!", b.Text())

	b.Undo()
	require.Equal(t, "world", b.Text())
	b.Undo()
	require.Equal(t, "hello world", b.Text())
	require.False(t, b.CanUndo())
	b.Undo()
	require.Equal(t, "hello world", b.Text())

	b.Redo()
	require.Equal(t, "world", b.Text())
	b.Redo()
	require.Equal(t, "world!", b.Text())
	require.False(t, b.CanRedo())
}

func TestUndo_NewEditDropsRedo(t *testing.T) {
	b := New("abc")
	b.DeleteRange(pos(0, 0), pos(0, 1))
	b.Undo()
	require.True(t, b.CanRedo())
	b.InsertText("x")
	require.False(t, b.CanRedo())
	require.Equal(t, "xabc", b.Text())
}

func TestGroup_UndoesAsOne(t *testing.T) {
	b := New("")
	b.BeginGroup()
	b.InsertText("a")
	b.InsertText("b")
	b.InsertText("\nc")
	b.EndGroup()
	require.Equal(t, "ab\nc", b.Text())
	b.Undo()
	require.Equal(t, "", b.Text())
	b.Redo()
	require.Equal(t, "ab\nc", b.Text())
}

func TestSetText_ClearsHistory(t *testing.T) {
	b := New("abc")
	b.InsertText("x")
	b.SetText("new")
	require.False(t, b.CanUndo())
	require.Equal(t, pos(0, 0), b.Cursor())
}

func TestProperty_UndoRestoresText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{0,8}`), 1, 4).Draw(t, "lines")
		b := New(joinLines(lines))
		original := b.Text()

		edits := rapid.IntRange(1, 5).Draw(t, "edits")
		for i := 0; i < edits; i++ {
			row := rapid.IntRange(0, b.LineCount()-1).Draw(t, "row")
			col := rapid.IntRange(0, len(b.Line(row))).Draw(t, "col")
			b.MoveCursor(pos(row, col), false)
			if rapid.Bool().Draw(t, "insert") {
				b.InsertText(rapid.StringMatching(`[a-z\n]{1,3}`).Draw(t, "text"))
			} else {
				endRow := rapid.IntRange(row, b.LineCount()-1).Draw(t, "endRow")
				b.DeleteRange(pos(row, col), pos(endRow, len(b.Line(endRow))))
			}
		}
		for b.CanUndo() {
			b.Undo()
		}
		require.Equal(t, original, b.Text())
	})
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
