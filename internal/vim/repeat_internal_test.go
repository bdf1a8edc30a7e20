package vim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceBuffer is a bare ASCII Buffer; textbuf cannot be imported here.
type sliceBuffer struct {
	lines  []string
	cursor Position
}

func (b *sliceBuffer) Text() string                         { return strings.Join(b.lines, "\n") }
func (b *sliceBuffer) Line(row int) string                  { return b.lines[row] }
func (b *sliceBuffer) LineCount() int                       { return len(b.lines) }
func (b *sliceBuffer) Cursor() Position                     { return b.cursor }
func (b *sliceBuffer) MoveCursor(pos Position, _ bool)      { b.cursor = pos }
func (b *sliceBuffer) SetSelection(_, cursor Position)      { b.cursor = cursor }
func (b *sliceBuffer) InsertText(string)                    {}
func (b *sliceBuffer) DeleteRange(_, _ Position) string     { return "" }
func (b *sliceBuffer) ReplaceRange(_, _ Position, _ string) {}
func (b *sliceBuffer) Undo()                                {}
func (b *sliceBuffer) Redo()                                {}

func newInsertEngine(t *testing.T) *Engine {
	t.Helper()
	return New(&sliceBuffer{lines: []string{""}}, WithStartMode(ModeInsert))
}

func TestRecording_SkipsInsertKeys(t *testing.T) {
	e := newInsertEngine(t)
	for range 1000 {
		e.HandleKey("a")
	}
	require.Empty(t, e.recording)

	e.HandleKey("escape")
	require.Equal(t, ModeNormal, e.Mode())
	require.Empty(t, e.recording)
	require.Empty(t, e.lastChange)
}

func TestRecording_MarksCountDigits(t *testing.T) {
	e := New(&sliceBuffer{lines: []string{"a b c d e f g h"}})
	for _, k := range []string{`"`, "a", "1", "0", "d", "2", "f"} {
		e.HandleKey(k)
	}
	require.Equal(t, []recordedKey{
		{key: `"`}, {key: "a"},
		{key: "1", count: true}, {key: "0", count: true},
		{key: "d"},
		{key: "2", count: true},
		{key: "f"},
	}, e.recording)
}
