package vim

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zjrosen/modal/internal/log"
)

// ErrUnknownHandler is returned when a remap names a handler that does not exist.
var ErrUnknownHandler = errors.New("unknown handler")

// BindingKind selects which engine a binding dispatches to.
type BindingKind int

const (
	KindMotion BindingKind = iota
	KindOperator
	KindTextObject
	KindAction
	KindModeSwitch
	KindArg
)

func (k BindingKind) String() string {
	switch k {
	case KindMotion:
		return "motion"
	case KindOperator:
		return "operator"
	case KindTextObject:
		return "textobject"
	case KindAction:
		return "action"
	case KindModeSwitch:
		return "mode"
	case KindArg:
		return "pending"
	default:
		return "unknown"
	}
}

// ArgKind identifies commands that wait for one character argument.
type ArgKind int

const (
	ArgFind ArgKind = iota
	ArgReplace
	ArgRegister
)

// ActionKind enumerates immediate actions.
type ActionKind int

const (
	ActInsert ActionKind = iota
	ActInsertLineStart
	ActAppend
	ActAppendLineEnd
	ActOpenBelow
	ActOpenAbove
	ActSubstitute
	ActSubstituteLine
	ActChangeToEnd
	ActDeleteToEnd
	ActUndo
	ActRedo
	ActPasteAfter
	ActPasteBefore
	ActDeleteChar
	ActDeleteCharBefore
	ActSwapCaseChar
	ActJoin
	ActRepeat
	ActVisualSwapAnchor
	ActVisualInsert
	ActVisualAppend
	actionCount
)

// Binding maps a key sequence to a typed handler. Only the field matching
// Kind is meaningful.
type Binding struct {
	Keys string
	Name string
	Kind BindingKind
	Desc string

	Motion   MotionKind
	Operator OperatorKind
	Object   TextObjectKind
	Action   ActionKind
	Target   Mode
	Arg      ArgKind
	Find     FindKind
}

func motion(keys, name string, m MotionKind, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindMotion, Motion: m, Desc: desc}
}

func operator(keys, name string, op OperatorKind, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindOperator, Operator: op, Desc: desc}
}

func object(keys, name string, obj TextObjectKind, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindTextObject, Object: obj, Desc: desc}
}

func action(keys, name string, act ActionKind, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindAction, Action: act, Desc: desc}
}

func modeSwitch(keys, name string, target Mode, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindModeSwitch, Target: target, Desc: desc}
}

func findArg(keys, name string, kind FindKind, desc string) Binding {
	return Binding{Keys: keys, Name: name, Kind: KindArg, Arg: ArgFind, Find: kind, Desc: desc}
}

// DefaultBindings returns the Normal, OperatorPending and Visual bindings.
func DefaultBindings() []Binding {
	return []Binding{
		motion("h", "motion_left", MotionLeft, "left"),
		motion("left", "motion_left", MotionLeft, "left"),
		motion("backspace", "motion_left", MotionLeft, "left"),
		motion("l", "motion_right", MotionRight, "right"),
		motion("right", "motion_right", MotionRight, "right"),
		motion("space", "motion_right", MotionRight, "right"),
		motion("j", "motion_down", MotionDown, "down"),
		motion("down", "motion_down", MotionDown, "down"),
		motion("k", "motion_up", MotionUp, "up"),
		motion("up", "motion_up", MotionUp, "up"),
		motion("0", "motion_line_start", MotionLineStart, "start of line"),
		motion("^", "motion_first_non_blank", MotionFirstNonBlank, "first non-blank"),
		motion("$", "motion_line_end", MotionLineEnd, "end of line"),
		motion("g_", "motion_last_non_blank", MotionLastNonBlank, "last non-blank"),
		motion("w", "motion_word_forward", MotionWordForward, "next word"),
		motion("W", "motion_WORD_forward", MotionBigWordForward, "next WORD"),
		motion("e", "motion_word_end", MotionWordEnd, "end of word"),
		motion("E", "motion_WORD_end", MotionBigWordEnd, "end of WORD"),
		motion("b", "motion_word_backward", MotionWordBackward, "previous word"),
		motion("B", "motion_WORD_backward", MotionBigWordBackward, "previous WORD"),
		motion("gg", "motion_document_start", MotionDocumentStart, "first line"),
		motion("G", "motion_document_end", MotionDocumentEnd, "last line"),
		motion(";", "motion_repeat_find", MotionRepeatFind, "repeat find"),
		motion(",", "motion_repeat_find_reverse", MotionRepeatFindReverse, "repeat find backward"),

		findArg("f", "pending_find_forward", FindForward, "find char"),
		findArg("F", "pending_find_backward", FindBackward, "find char backward"),
		findArg("t", "pending_till_forward", TillForward, "till char"),
		findArg("T", "pending_till_backward", TillBackward, "till char backward"),
		{Keys: "r", Name: "pending_replace", Kind: KindArg, Arg: ArgReplace, Desc: "replace char"},
		{Keys: `"`, Name: "pending_register", Kind: KindArg, Arg: ArgRegister, Desc: "select register"},

		operator("d", "operator_delete", OpDelete, "delete"),
		operator("c", "operator_change", OpChange, "change"),
		operator("y", "operator_yank", OpYank, "yank"),
		operator(">", "operator_indent", OpIndent, "indent"),
		operator("<", "operator_dedent", OpDedent, "dedent"),
		operator("gu", "operator_lowercase", OpLower, "lowercase"),
		operator("gU", "operator_uppercase", OpUpper, "uppercase"),
		operator("g~", "operator_swap_case", OpSwapCase, "swap case"),

		object("iw", "textobject_inner_word", ObjInnerWord, "inner word"),
		object("aw", "textobject_a_word", ObjAWord, "a word"),
		object("iW", "textobject_inner_WORD", ObjInnerBigWord, "inner WORD"),
		object("aW", "textobject_a_WORD", ObjABigWord, "a WORD"),
		object(`i"`, "textobject_inner_double_quote", ObjInnerDoubleQuote, `inner ""`),
		object(`a"`, "textobject_a_double_quote", ObjADoubleQuote, `a ""`),
		object("i'", "textobject_inner_single_quote", ObjInnerSingleQuote, "inner ''"),
		object("a'", "textobject_a_single_quote", ObjASingleQuote, "a ''"),
		object("i`", "textobject_inner_backtick", ObjInnerBacktick, "inner ``"),
		object("a`", "textobject_a_backtick", ObjABacktick, "a ``"),
		object("i(", "textobject_inner_paren", ObjInnerParen, "inner ()"),
		object("i)", "textobject_inner_paren", ObjInnerParen, "inner ()"),
		object("ib", "textobject_inner_paren", ObjInnerParen, "inner ()"),
		object("a(", "textobject_a_paren", ObjAParen, "a ()"),
		object("a)", "textobject_a_paren", ObjAParen, "a ()"),
		object("ab", "textobject_a_paren", ObjAParen, "a ()"),
		object("i[", "textobject_inner_bracket", ObjInnerBracket, "inner []"),
		object("i]", "textobject_inner_bracket", ObjInnerBracket, "inner []"),
		object("a[", "textobject_a_bracket", ObjABracket, "a []"),
		object("a]", "textobject_a_bracket", ObjABracket, "a []"),
		object("i{", "textobject_inner_brace", ObjInnerBrace, "inner {}"),
		object("i}", "textobject_inner_brace", ObjInnerBrace, "inner {}"),
		object("iB", "textobject_inner_brace", ObjInnerBrace, "inner {}"),
		object("a{", "textobject_a_brace", ObjABrace, "a {}"),
		object("a}", "textobject_a_brace", ObjABrace, "a {}"),
		object("aB", "textobject_a_brace", ObjABrace, "a {}"),
		object("i<", "textobject_inner_angle", ObjInnerAngle, "inner <>"),
		object("i>", "textobject_inner_angle", ObjInnerAngle, "inner <>"),
		object("a<", "textobject_a_angle", ObjAAngle, "a <>"),
		object("a>", "textobject_a_angle", ObjAAngle, "a <>"),

		action("i", "action_insert", ActInsert, "insert before cursor"),
		action("I", "action_insert_line_start", ActInsertLineStart, "insert at first non-blank"),
		action("a", "action_append", ActAppend, "append after cursor"),
		action("A", "action_append_line_end", ActAppendLineEnd, "append at end of line"),
		action("o", "action_open_below", ActOpenBelow, "open line below"),
		action("O", "action_open_above", ActOpenAbove, "open line above"),
		action("s", "action_substitute", ActSubstitute, "substitute char"),
		action("S", "action_substitute_line", ActSubstituteLine, "substitute line"),
		action("C", "action_change_to_end", ActChangeToEnd, "change to end of line"),
		action("D", "action_delete_to_end", ActDeleteToEnd, "delete to end of line"),
		action("u", "action_undo", ActUndo, "undo"),
		action("ctrl+r", "action_redo", ActRedo, "redo"),
		action("p", "action_paste_after", ActPasteAfter, "paste after"),
		action("P", "action_paste_before", ActPasteBefore, "paste before"),
		action("x", "action_delete_char", ActDeleteChar, "delete char"),
		action("X", "action_delete_char_before", ActDeleteCharBefore, "delete char before"),
		action("~", "action_swap_case_char", ActSwapCaseChar, "swap case of char"),
		action("J", "action_join", ActJoin, "join lines"),
		action(".", "action_repeat", ActRepeat, "repeat last change"),

		modeSwitch("v", "mode_visual", ModeVisual, "visual"),
		modeSwitch("V", "mode_visual_line", ModeVisualLine, "visual line"),
		modeSwitch(":", "mode_command_line", ModeCommandLine, "command line"),
	}
}

// DefaultVisualBindings returns keys that mean something different while
// a selection is active.
func DefaultVisualBindings() []Binding {
	return []Binding{
		action("o", "action_visual_swap_anchor", ActVisualSwapAnchor, "swap selection ends"),
		action("i", "action_visual_insert", ActVisualInsert, "insert at selection start"),
		action("I", "action_visual_insert", ActVisualInsert, "insert at selection start"),
		action("a", "action_visual_append", ActVisualAppend, "append after selection"),
		action("A", "action_visual_append", ActVisualAppend, "append after selection"),
		operator("x", "operator_delete", OpDelete, "delete selection"),
		operator("s", "operator_change", OpChange, "change selection"),
		operator("u", "operator_lowercase", OpLower, "lowercase selection"),
		operator("U", "operator_uppercase", OpUpper, "uppercase selection"),
		operator("~", "operator_swap_case", OpSwapCase, "swap case of selection"),
	}
}

// Keymap resolves keys to bindings per mode. Lookups are typed: the
// handler identity is an enum, never a string.
type Keymap struct {
	normal  map[string]Binding
	objects map[string]Binding
	visual  map[string]Binding
}

// NewKeymap builds a keymap from the default bindings.
func NewKeymap() *Keymap {
	km := &Keymap{
		normal:  make(map[string]Binding),
		objects: make(map[string]Binding),
		visual:  make(map[string]Binding),
	}
	for _, b := range DefaultBindings() {
		km.bind(b)
	}
	for _, b := range DefaultVisualBindings() {
		km.visual[b.Keys] = b
	}
	return km
}

func (km *Keymap) bind(b Binding) {
	if b.Kind == KindTextObject {
		km.objects[b.Keys] = b
		return
	}
	km.normal[b.Keys] = b
}

// Clone returns an independent copy.
func (km *Keymap) Clone() *Keymap {
	return &Keymap{
		normal:  maps.Clone(km.normal),
		objects: maps.Clone(km.objects),
		visual:  maps.Clone(km.visual),
	}
}

// Normal resolves a key typed in Normal mode.
func (km *Keymap) Normal(keys string) (Binding, bool) {
	b, ok := km.normal[keys]
	return b, ok
}

// Visual resolves a key typed in a visual mode; visual-only bindings win.
func (km *Keymap) Visual(keys string) (Binding, bool) {
	if b, ok := km.visual[keys]; ok {
		return b, true
	}
	b, ok := km.normal[keys]
	if !ok {
		return Binding{}, false
	}
	switch b.Kind {
	case KindMotion, KindOperator, KindModeSwitch, KindArg:
		return b, true
	}
	return Binding{}, false
}

// Pending resolves a key typed while an operator waits for its range.
func (km *Keymap) Pending(keys string) (Binding, bool) {
	if b, ok := km.objects[keys]; ok {
		return b, true
	}
	b, ok := km.normal[keys]
	if !ok {
		return Binding{}, false
	}
	if b.Kind == KindMotion || b.Kind == KindOperator || (b.Kind == KindArg && b.Arg == ArgFind) {
		return b, true
	}
	return Binding{}, false
}

// IsPrefix reports whether keys starts a longer binding valid in mode.
func (km *Keymap) IsPrefix(mode Mode, keys string) bool {
	tables := []map[string]Binding{km.normal}
	switch mode {
	case ModeOperatorPending:
		tables = append(tables, km.objects)
	case ModeVisual, ModeVisualLine, ModeVisualBlock:
		tables = append(tables, km.visual)
	}
	for _, t := range tables {
		for k := range t {
			if len(k) > len(keys) && strings.HasPrefix(k, keys) {
				return true
			}
		}
	}
	return false
}

// Remap binds keys to the handler with the given name, replacing any
// previous binding of keys. The name "nop" removes the binding.
func (km *Keymap) Remap(keys, handler string) error {
	if keys == "" {
		return fmt.Errorf("remap %q: empty key", handler)
	}
	if handler == "nop" {
		delete(km.normal, keys)
		delete(km.objects, keys)
		delete(km.visual, keys)
		log.Debug(log.CatKeymap, "Key unmapped", "keys", keys)
		return nil
	}
	b, err := ParseHandler(handler)
	if err != nil {
		return err
	}
	b.Keys = keys
	delete(km.normal, keys)
	delete(km.objects, keys)
	km.bind(b)
	log.Debug(log.CatKeymap, "Key remapped", "keys", keys, "handler", handler)
	return nil
}

// Bindings returns all bindings sorted by kind then keys, for help output.
func (km *Keymap) Bindings() []Binding {
	all := slices.Collect(maps.Values(km.normal))
	all = slices.AppendSeq(all, maps.Values(km.objects))
	slices.SortFunc(all, func(a, b Binding) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.Keys, b.Keys)
	})
	return all
}

// VisualBindings returns the visual-only bindings sorted by keys.
func (km *Keymap) VisualBindings() []Binding {
	all := slices.Collect(maps.Values(km.visual))
	slices.SortFunc(all, func(a, b Binding) int { return strings.Compare(a.Keys, b.Keys) })
	return all
}

var handlersByName = func() map[string]Binding {
	m := make(map[string]Binding)
	for _, b := range DefaultBindings() {
		b.Keys = ""
		m[b.Name] = b
	}
	return m
}()

// ParseHandler resolves a handler name such as "motion_word_forward" into
// a typed binding without keys.
func ParseHandler(name string) (Binding, error) {
	b, ok := handlersByName[name]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return b, nil
}

// HandlerNames lists every name accepted by ParseHandler.
func HandlerNames() []string {
	names := slices.Collect(maps.Keys(handlersByName))
	slices.Sort(names)
	return names
}
