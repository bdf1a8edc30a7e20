package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/modal/internal/vim"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

var kindTitles = map[vim.BindingKind]string{
	vim.KindMotion:     "Motions",
	vim.KindOperator:   "Operators",
	vim.KindTextObject: "Text objects",
	vim.KindAction:     "Actions",
	vim.KindModeSwitch: "Modes",
	vim.KindArg:        "Pending argument",
}

// helpMarkdown lists the active keymap, the visual bindings, the ex
// commands and the playground keys as markdown tables.
func helpMarkdown(km *vim.Keymap, host KeyMap) string {
	var b strings.Builder
	b.WriteString("# Keymap\n")

	bindings := km.Bindings()
	for i, bind := range bindings {
		if i == 0 || bindings[i-1].Kind != bind.Kind {
			fmt.Fprintf(&b, "\n## %s\n\n| Keys | Handler | Description |\n|---|---|---|\n", kindTitles[bind.Kind])
		}
		writeBindingRow(&b, bind)
	}

	b.WriteString("\n## Visual mode\n\n| Keys | Handler | Description |\n|---|---|---|\n")
	for _, bind := range km.VisualBindings() {
		writeBindingRow(&b, bind)
	}

	b.WriteString("\n## Commands\n\n| Command | Description |\n|---|---|\n")
	b.WriteString("| `:w [file]` | save to history (and file) |\n")
	b.WriteString("| `:q` | quit, refused with unsaved edits |\n")
	b.WriteString("| `:q!` | discard edits and quit |\n")
	b.WriteString("| `:wq` | save and quit |\n")

	b.WriteString("\n## Playground\n\n| Key | Description |\n|---|---|\n")
	for _, bind := range []key.Binding{host.Help, host.ToggleLog, host.Quit} {
		fmt.Fprintf(&b, "| %s | %s |\n", code(bind.Help().Key), bind.Help().Desc)
	}
	return b.String()
}

func writeBindingRow(b *strings.Builder, bind vim.Binding) {
	fmt.Fprintf(b, "| %s | %s | %s |\n", code(bind.Keys), bind.Name, bind.Desc)
}

// code formats keys as inline code that survives a table cell.
func code(keys string) string {
	keys = strings.ReplaceAll(keys, "|", `\|`)
	if strings.Contains(keys, "`") {
		return "`` " + keys + " ``"
	}
	return "`" + keys + "`"
}

// renderHelp renders markdown with a glamour standard style.
func renderHelp(markdown string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
