package vim_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/modal/internal/vim"
)

func TestKeymap_Lookups(t *testing.T) {
	km := vim.NewKeymap()

	b, ok := km.Normal("w")
	require.True(t, ok)
	require.Equal(t, vim.KindMotion, b.Kind)
	require.Equal(t, vim.MotionWordForward, b.Motion)

	b, ok = km.Normal("gU")
	require.True(t, ok)
	require.Equal(t, vim.OpUpper, b.Operator)

	_, ok = km.Normal("iw")
	require.False(t, ok, "text objects only resolve while an operator waits")

	b, ok = km.Pending("iw")
	require.True(t, ok)
	require.Equal(t, vim.ObjInnerWord, b.Object)

	_, ok = km.Pending("x")
	require.False(t, ok, "actions do not complete an operator")

	b, ok = km.Pending("f")
	require.True(t, ok)
	require.Equal(t, vim.ArgFind, b.Arg)

	_, ok = km.Pending("r")
	require.False(t, ok)

	b, ok = km.Visual("x")
	require.True(t, ok)
	require.Equal(t, vim.KindOperator, b.Kind)

	b, ok = km.Visual("o")
	require.True(t, ok)
	require.Equal(t, vim.ActVisualSwapAnchor, b.Action)

	_, ok = km.Visual("p")
	require.False(t, ok)

	_, ok = km.Normal("ctrl+v")
	require.False(t, ok, "visual block has no entry key")
}

func TestKeymap_IsPrefix(t *testing.T) {
	km := vim.NewKeymap()
	require.True(t, km.IsPrefix(vim.ModeNormal, "g"))
	require.False(t, km.IsPrefix(vim.ModeNormal, "i"))
	require.True(t, km.IsPrefix(vim.ModeOperatorPending, "i"))
	require.True(t, km.IsPrefix(vim.ModeOperatorPending, "a"))
	require.False(t, km.IsPrefix(vim.ModeNormal, "gg"))
}

func TestKeymap_Remap(t *testing.T) {
	km := vim.NewKeymap()
	require.NoError(t, km.Remap("Q", "motion_word_forward"))

	b, ok := km.Normal("Q")
	require.True(t, ok)
	require.Equal(t, "Q", b.Keys)
	require.Equal(t, vim.MotionWordForward, b.Motion)

	e, buf := newEngine(t, "foo bar", vim.WithKeymap(km))
	typeKeys(e, "Q")
	require.Equal(t, pos(0, 4), buf.Cursor())
	typeKeys(e, "dQ")
	require.Equal(t, "foo ", buf.Text())
}

func TestKeymap_RemapTextObject(t *testing.T) {
	km := vim.NewKeymap()
	require.NoError(t, km.Remap("iq", "textobject_inner_double_quote"))

	e, buf := newEngine(t, `say "hi"`, vim.WithKeymap(km))
	buf.MoveCursor(pos(0, 5), false)
	typeKeys(e, "diq")
	require.Equal(t, `say ""`, buf.Text())
}

func TestKeymap_RemapNop(t *testing.T) {
	km := vim.NewKeymap()
	require.NoError(t, km.Remap("x", "nop"))
	_, ok := km.Normal("x")
	require.False(t, ok)

	e, buf := newEngine(t, "abc", vim.WithKeymap(km))
	res := typeKeys(e, "x")
	require.False(t, res.Consumed)
	require.Equal(t, "abc", buf.Text())
}

func TestKeymap_RemapErrors(t *testing.T) {
	km := vim.NewKeymap()

	err := km.Remap("Q", "motion_teleport")
	require.ErrorIs(t, err, vim.ErrUnknownHandler)

	err = km.Remap("", "motion_left")
	require.Error(t, err)

	_, ok := km.Normal("Q")
	require.False(t, ok)
}

func TestKeymap_CloneIsIndependent(t *testing.T) {
	km := vim.NewKeymap()
	clone := km.Clone()
	require.NoError(t, clone.Remap("w", "nop"))

	_, ok := km.Normal("w")
	require.True(t, ok)
	_, ok = clone.Normal("w")
	require.False(t, ok)
}

func TestEngine_SetKeymap(t *testing.T) {
	e, buf := newEngine(t, "foo bar")
	km := vim.NewKeymap()
	require.NoError(t, km.Remap("n", "motion_word_forward"))
	e.SetKeymap(km)
	typeKeys(e, "n")
	require.Equal(t, pos(0, 4), buf.Cursor())

	e.SetKeymap(nil)
	require.Same(t, km, e.Keymap())
}

func TestParseHandler(t *testing.T) {
	b, err := vim.ParseHandler("operator_delete")
	require.NoError(t, err)
	require.Equal(t, vim.KindOperator, b.Kind)
	require.Equal(t, vim.OpDelete, b.Operator)
	require.Empty(t, b.Keys)

	_, err = vim.ParseHandler("bogus")
	require.ErrorIs(t, err, vim.ErrUnknownHandler)
}

func TestHandlerNames(t *testing.T) {
	names := vim.HandlerNames()
	require.True(t, slices.IsSorted(names))
	require.Contains(t, names, "motion_word_forward")
	require.Contains(t, names, "textobject_inner_paren")
	require.Contains(t, names, "action_repeat")
	require.Equal(t, len(slices.Compact(slices.Clone(names))), len(names))

	for _, name := range names {
		_, err := vim.ParseHandler(name)
		require.NoError(t, err, name)
	}
}

func TestKeymap_BindingsSortedForHelp(t *testing.T) {
	km := vim.NewKeymap()
	all := km.Bindings()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		require.LessOrEqual(t, int(all[i-1].Kind), int(all[i].Kind))
	}
	require.Len(t, km.VisualBindings(), len(vim.DefaultVisualBindings()))
}
