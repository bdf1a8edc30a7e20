package vim_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/modal/internal/textbuf"
	"github.com/zjrosen/modal/internal/vim"
)

func TestNormalModeEdits(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		at     vim.Position
		keys   string
		want   string
		cursor vim.Position
	}{
		{"dw", "foo bar", pos(0, 0), "dw", "bar", pos(0, 0)},
		{"dw on last word", "foo bar", pos(0, 4), "dw", "foo ", pos(0, 3)},
		{"dw stops at line end", "foo\n  bar", pos(0, 0), "dw", "\n  bar", pos(0, 0)},
		{"d2w", "a b c d", pos(0, 0), "d2w", "c d", pos(0, 0)},
		{"2d3w multiplies counts", "a b c d e f g h", pos(0, 0), "2d3w", "g h", pos(0, 0)},
		{"de", "foo bar", pos(0, 0), "de", " bar", pos(0, 0)},
		{"db", "foo bar", pos(0, 4), "db", "bar", pos(0, 0)},
		{"d$", "foo bar", pos(0, 2), "d$", "fo", pos(0, 1)},
		{"d0", "foo bar", pos(0, 4), "d0", "bar", pos(0, 0)},
		{"dl at line end", "abc", pos(0, 2), "dl", "ab", pos(0, 1)},
		{"dfc", "abcd", pos(0, 0), "dfc", "d", pos(0, 0)},
		{"dtc", "abcd", pos(0, 0), "dtc", "cd", pos(0, 0)},
		{"dFa", "abcd", pos(0, 3), "dFa", "d", pos(0, 0)},
		{"dd on last line", "a\nb", pos(1, 0), "dd", "a", pos(0, 0)},
		{"dd on only line", "abc", pos(0, 1), "dd", "", pos(0, 0)},
		{"dj", "a\nb\nc", pos(0, 0), "dj", "c", pos(0, 0)},
		{"dG", "a\nb\nc", pos(1, 0), "dG", "a", pos(0, 0)},
		{"dgg", "a\nb\nc", pos(1, 0), "dgg", "c", pos(0, 0)},
		{"x", "abc", pos(0, 1), "x", "ac", pos(0, 1)},
		{"3x", "abcdef", pos(0, 0), "3x", "def", pos(0, 0)},
		{"x on last char", "abc", pos(0, 2), "x", "ab", pos(0, 1)},
		{"X", "abcd", pos(0, 3), "X", "abd", pos(0, 2)},
		{"X at column 0", "abc", pos(0, 0), "X", "abc", pos(0, 0)},
		{"D", "abc", pos(0, 1), "D", "a", pos(0, 0)},
		{"~", "abc", pos(0, 0), "~", "Abc", pos(0, 1)},
		{"3~", "abcd", pos(0, 0), "3~", "ABCd", pos(0, 3)},
		{"r", "abc", pos(0, 0), "rx", "xbc", pos(0, 0)},
		{"r with count", "abcd", pos(0, 0), "3rx", "xxxd", pos(0, 2)},
		{"r with count too long", "abc", pos(0, 0), "5rx", "abc", pos(0, 0)},
		{"J", "foo\n   bar\nbaz", pos(0, 0), "J", "foo bar\nbaz", pos(0, 3)},
		{"3J", "foo\nbar\nbaz", pos(0, 0), "3J", "foo bar baz", pos(0, 7)},
		{"J before blank line", "foo\n\nbar", pos(0, 0), "J", "foo\nbar", pos(0, 2)},
		{"J on last line", "foo", pos(0, 1), "J", "foo", pos(0, 1)},
		{">>", "foo", pos(0, 0), ">>", "    foo", pos(0, 4)},
		{"2>>", "a\n\nb", pos(0, 0), "2>>", "    a\n\nb", pos(0, 4)},
		{"<<", "      foo", pos(0, 0), "<<", "  foo", pos(0, 2)},
		{"<< with tab", "\tfoo", pos(0, 0), "<<", "foo", pos(0, 0)},
		{">j", "a\nb", pos(0, 0), ">j", "    a\n    b", pos(0, 4)},
		{"gUiw", "foo bar", pos(0, 1), "gUiw", "FOO bar", pos(0, 0)},
		{"gUU", "foo bar", pos(0, 4), "gUU", "FOO BAR", pos(0, 4)},
		{"guu", "FOO", pos(0, 0), "guu", "foo", pos(0, 0)},
		{"g~~", "Foo", pos(0, 0), "g~~", "fOO", pos(0, 0)},
		{"gUgU", "ab", pos(0, 0), "gUgU", "AB", pos(0, 0)},
		{"yank leaves text", "foo bar", pos(0, 4), "yb", "foo bar", pos(0, 0)},
		{"mismatched operator cancels", "abc", pos(0, 0), "dy", "abc", pos(0, 0)},
		{"unknown range cancels", "abc", pos(0, 0), "dz", "abc", pos(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, buf := newEngine(t, tt.text)
			buf.MoveCursor(tt.at, false)
			typeKeys(e, tt.keys)
			require.Equal(t, tt.want, buf.Text())
			require.Equal(t, tt.cursor, buf.Cursor())
			require.Equal(t, vim.ModeNormal, e.Mode())
		})
	}
}

func TestOperatorPending_EscapeCancels(t *testing.T) {
	e, buf := newEngine(t, "abc")
	typeKeys(e, "2d")
	require.Equal(t, vim.ModeOperatorPending, e.Mode())
	press(e, "escape")
	require.Equal(t, vim.ModeNormal, e.Mode())
	require.Equal(t, "abc", buf.Text())

	// The count is gone with the operator.
	typeKeys(e, "x")
	require.Equal(t, "bc", buf.Text())
}

func TestChangeEdits(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		at     vim.Position
		keys   string
		want   string
		cursor vim.Position
	}{
		{"cw acts like ce", "foo bar", pos(0, 0), "cw", " bar", pos(0, 0)},
		{"c2w", "foo bar baz", pos(0, 0), "c2w", " baz", pos(0, 0)},
		{"cw on whitespace", "a   b", pos(0, 1), "cw", "ab", pos(0, 1)},
		{"cc keeps indentation", "    foo\nbar", pos(0, 5), "cc", "    \nbar", pos(0, 4)},
		{"S", "  foo", pos(0, 3), "S", "  ", pos(0, 2)},
		{"C", "foo bar", pos(0, 4), "C", "foo ", pos(0, 4)},
		{"s", "abc", pos(0, 1), "s", "ac", pos(0, 1)},
		{"2s", "abcd", pos(0, 1), "2s", "ad", pos(0, 1)},
		{"c$", "foo", pos(0, 0), "c$", "", pos(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, buf := newEngine(t, tt.text)
			buf.MoveCursor(tt.at, false)
			res := typeKeys(e, tt.keys)
			require.True(t, res.EnterInsert)
			require.Equal(t, vim.ModeInsert, e.Mode())
			require.Equal(t, tt.want, buf.Text())
			require.Equal(t, tt.cursor, buf.Cursor())
		})
	}
}

func TestYankPasteRoundTrip(t *testing.T) {
	t.Run("linewise after", func(t *testing.T) {
		e, buf := newEngine(t, "foo bar")
		typeKeys(e, "yyp")
		require.Equal(t, "foo bar\nfoo bar", buf.Text())
		require.Equal(t, pos(1, 0), buf.Cursor())
	})
	t.Run("linewise before", func(t *testing.T) {
		e, buf := newEngine(t, "a\n  b")
		buf.MoveCursor(pos(1, 2), false)
		typeKeys(e, "yyk")
		typeKeys(e, "P")
		require.Equal(t, "  b\na\n  b", buf.Text())
		require.Equal(t, pos(0, 2), buf.Cursor())
	})
	t.Run("charwise after", func(t *testing.T) {
		e, buf := newEngine(t, "foo bar")
		typeKeys(e, "yiwp")
		require.Equal(t, "ffoooo bar", buf.Text())
		require.Equal(t, pos(0, 3), buf.Cursor())
	})
	t.Run("charwise before with count", func(t *testing.T) {
		e, buf := newEngine(t, "ab")
		typeKeys(e, "yl2P")
		require.Equal(t, "aaab", buf.Text())
		require.Equal(t, pos(0, 1), buf.Cursor())
	})
	t.Run("delete then paste restores", func(t *testing.T) {
		e, buf := newEngine(t, "one\ntwo\nthree")
		typeKeys(e, "ddp")
		require.Equal(t, "two\none\nthree", buf.Text())
		require.Equal(t, pos(1, 0), buf.Cursor())
	})
	t.Run("paste with empty register", func(t *testing.T) {
		e, buf := newEngine(t, "abc")
		typeKeys(e, "p")
		require.Equal(t, "abc", buf.Text())
	})
}

func TestRegisterRouting(t *testing.T) {
	e, _ := newEngine(t, "foo bar")

	typeKeys(e, "yiw")
	yank, _ := e.Register(vim.RegYank)
	require.Equal(t, "foo", yank.Content)

	typeKeys(e, "dw")
	unnamed, _ := e.Register(vim.RegUnnamed)
	require.Equal(t, "foo ", unnamed.Content)
	small, _ := e.Register(vim.RegSmallDelete)
	require.Equal(t, "foo ", small.Content)
	yank, _ = e.Register(vim.RegYank)
	require.Equal(t, "foo", yank.Content, "deletes leave register 0 alone")
}

func TestRegisterRouting_Named(t *testing.T) {
	e, buf := newEngine(t, "one\ntwo\nthree")

	typeKeys(e, `"ayyj"Ayy`)
	reg, ok := e.Register('a')
	require.True(t, ok)
	require.Equal(t, "one\ntwo", reg.Content)
	require.True(t, reg.Linewise)

	typeKeys(e, "G")
	typeKeys(e, `"ap`)
	require.Equal(t, "one\ntwo\nthree\none\ntwo", buf.Text())
	require.Equal(t, vim.RegUnnamed, e.State().CurrentRegister())
}

func TestRegisterRouting_BlackHole(t *testing.T) {
	e, buf := newEngine(t, "one\ntwo")
	typeKeys(e, "yyj")
	typeKeys(e, `"_dd`)
	require.Equal(t, "one", buf.Text())

	reg, _ := e.Register(vim.RegUnnamed)
	require.Equal(t, "one", reg.Content)
	_, ok := e.Register(vim.RegBlackHole)
	require.False(t, ok)
}

func TestRegisterRouting_InvalidNameIgnored(t *testing.T) {
	e, _ := newEngine(t, "abc")
	typeKeys(e, `"!`)
	require.Equal(t, vim.RegUnnamed, e.State().CurrentRegister())
	typeKeys(e, "x")
	reg, _ := e.Register(vim.RegUnnamed)
	require.Equal(t, "a", reg.Content)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) Get() (string, error) { return c.text, c.err }

func (c *fakeClipboard) Set(content string) error {
	if c.err != nil {
		return c.err
	}
	c.text = content
	return nil
}

func TestRegisterRouting_Clipboard(t *testing.T) {
	clip := &fakeClipboard{}
	e, buf := newEngine(t, "foo\nbar", vim.WithClipboard(clip))

	typeKeys(e, `"+yy`)
	require.Equal(t, "foo\n", clip.text)

	clip.text = "baz"
	typeKeys(e, "j")
	typeKeys(e, `"+P`)
	require.Equal(t, "foo\nbazbar", buf.Text())
	require.Equal(t, pos(1, 2), buf.Cursor())
}

func TestDotRepeat(t *testing.T) {
	tests := []struct {
		name string
		text string
		keys string
		want string
	}{
		{"x", "abcd", "x.", "cd"},
		{"dw", "a b c", "dw.", "c"},
		{"count replaces original count", "abcdefgh", "2x3.", "fgh"},
		{"dd", "1\n2\n3\n4", "dd.", "3\n4"},
		{">>", "a", ">>.", "        a"},
		{"with find", "a,b,c,d", "dt,.", ",c,d"},
		{"register selection", "a b", `"adw.`, ""},
		{"nothing to repeat", "abc", ".", "abc"},
		{"motions are not changes", "abc", "xl.", "b"},
		{"count after register replaced", "0123456789", `"a2x3.`, "56789"},
		{"count after operator replaced", "a b c d e f g h i j k", "d2w3.", "f g h i j k"},
		{"count after operator kept without new count", "a b c d e f", "d2w.", "e f"},
		{"multi-digit count replaced", "abcdefghijklmnop", "12x2.", "op"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, buf := newEngine(t, tt.text)
			typeKeys(e, tt.keys)
			require.Equal(t, tt.want, buf.Text())
			require.Equal(t, vim.ModeNormal, e.Mode())
		})
	}
}

func TestDotRepeat_SkipsInsertChanges(t *testing.T) {
	e, buf := newEngine(t, "abc")
	typeKeys(e, "x")
	typeKeys(e, "o")
	press(e, "escape")
	require.Equal(t, "bc\n", buf.Text())

	// The last repeatable change is still the x.
	typeKeys(e, "k.")
	require.Equal(t, "c\n", buf.Text())
}

func TestDotRepeat_Disabled(t *testing.T) {
	e, buf := newEngine(t, "abcd", vim.WithDotRepeat(false))
	typeKeys(e, "x.")
	require.Equal(t, "bcd", buf.Text())
}

func TestDotRepeat_UndoNotRecorded(t *testing.T) {
	e, buf := newEngine(t, "abcd")
	typeKeys(e, "xu.")
	require.Equal(t, "bcd", buf.Text())
}

func TestApplyOperator_Direct(t *testing.T) {
	buf := textbuf.New("hello world")
	s := vim.NewState(nil)

	res := vim.ApplyOperator(buf, s, vim.OpUpper, pos(0, 0), pos(0, 4), vim.Inclusive)
	require.True(t, res.Changed)
	require.Equal(t, "HELLO", res.Text)
	require.Equal(t, "HELLO world", buf.Text())

	res = vim.ApplyOperator(buf, s, vim.OpYank, pos(0, 10), pos(0, 6), vim.Inclusive)
	require.False(t, res.Changed)
	require.Equal(t, "world", res.Text)
	require.Equal(t, pos(0, 6), buf.Cursor())

	res = vim.ApplyOperator(buf, s, vim.OpDelete, pos(0, 3), pos(0, 3), vim.Exclusive)
	require.False(t, res.Changed)
	require.Equal(t, "HELLO world", buf.Text())
}

func TestApplyOperator_IndentUnit(t *testing.T) {
	buf := textbuf.New("a\n\tb")
	s := vim.NewState(nil)
	s.SetIndentUnit("\t")

	vim.ApplyOperator(buf, s, vim.OpIndent, pos(0, 0), pos(1, 0), vim.Linewise)
	require.Equal(t, "\ta\n\t\tb", buf.Text())

	vim.ApplyOperator(buf, s, vim.OpDedent, pos(0, 0), pos(1, 0), vim.Linewise)
	require.Equal(t, "a\n\tb", buf.Text())
}
