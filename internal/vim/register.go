package vim

import (
	"strings"
	"unicode"

	"github.com/zjrosen/modal/internal/log"
)

// Register names with special behaviour.
const (
	RegUnnamed     = '"'
	RegYank        = '0'
	RegSmallDelete = '-'
	RegClipboard   = '+'
	RegSelection   = '*'
	RegBlackHole   = '_'
)

// Register holds text from a yank or delete.
type Register struct {
	Content  string
	Linewise bool
}

// Clipboard backs the + and * registers with a system clipboard.
type Clipboard interface {
	Get() (string, error)
	Set(content string) error
}

// ValidRegister reports whether name can be selected with '"'.
func ValidRegister(name rune) bool {
	switch {
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return true
	}
	switch name {
	case RegUnnamed, RegYank, RegSmallDelete, RegClipboard, RegSelection, RegBlackHole:
		return true
	}
	return false
}

// RegisterBank stores the registers of one editing session.
type RegisterBank struct {
	regs      map[rune]Register
	clipboard Clipboard
}

// NewRegisterBank creates an empty bank. clip may be nil.
func NewRegisterBank(clip Clipboard) *RegisterBank {
	return &RegisterBank{
		regs:      make(map[rune]Register),
		clipboard: clip,
	}
}

// Get returns the register content. Uppercase names read the lowercase
// register; + and * read through the clipboard when one is configured.
func (rb *RegisterBank) Get(name rune) (Register, bool) {
	name = unicode.ToLower(name)
	if name == RegBlackHole {
		return Register{}, false
	}
	if (name == RegClipboard || name == RegSelection) && rb.clipboard != nil {
		text, err := rb.clipboard.Get()
		if err == nil {
			if text == "" {
				return Register{}, false
			}
			if strings.HasSuffix(text, "\n") {
				return Register{Content: strings.TrimSuffix(text, "\n"), Linewise: true}, true
			}
			return Register{Content: text}, true
		}
		log.ErrorErr(log.CatEngine, "clipboard read failed", err, "register", string(name))
	}
	reg, ok := rb.regs[name]
	return reg, ok
}

// Set writes a register directly. Uppercase names append.
func (rb *RegisterBank) Set(name rune, reg Register) {
	if name == RegBlackHole {
		return
	}
	if unicode.IsUpper(name) {
		name = unicode.ToLower(name)
		if prev, ok := rb.regs[name]; ok && prev.Content != "" {
			sep := ""
			if prev.Linewise || reg.Linewise {
				sep = "\n"
			}
			reg = Register{
				Content:  strings.TrimSuffix(prev.Content, "\n") + sep + reg.Content,
				Linewise: prev.Linewise || reg.Linewise,
			}
		}
	}
	rb.regs[name] = reg
	if (name == RegClipboard || name == RegSelection) && rb.clipboard != nil {
		content := reg.Content
		if reg.Linewise {
			content += "\n"
		}
		if err := rb.clipboard.Set(content); err != nil {
			log.ErrorErr(log.CatEngine, "clipboard write failed", err, "register", string(name))
		}
	}
}

// Store routes yanked or deleted text.
//
// The unnamed register always receives the text unless the black hole was
// selected. Register 0 receives yanks only. A single-line charwise delete
// with no explicit register goes to the small delete register. An explicit
// selection receives the text as well.
func (rb *RegisterBank) Store(selected rune, text string, linewise, yank bool) {
	if selected == RegBlackHole {
		return
	}
	reg := Register{Content: text, Linewise: linewise}
	rb.regs[RegUnnamed] = reg
	if yank {
		rb.regs[RegYank] = reg
	} else if selected == RegUnnamed && !linewise && !strings.Contains(text, "\n") {
		rb.regs[RegSmallDelete] = reg
	}
	switch selected {
	case RegUnnamed:
	case RegYank, RegSmallDelete:
		rb.regs[selected] = reg
	default:
		rb.Set(selected, reg)
		if unicode.IsUpper(selected) {
			rb.regs[RegUnnamed] = rb.regs[unicode.ToLower(selected)]
		}
	}
}

// SetClipboard replaces the clipboard provider.
func (rb *RegisterBank) SetClipboard(clip Clipboard) {
	rb.clipboard = clip
}
