package playground

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/modal/internal/grapheme"
	"github.com/zjrosen/modal/internal/vim"
)

const (
	tabDisplay      = "    "
	maxMessageLines = 3
	logPaneHeight   = 6
)

// renderEditor renders every buffer row with a line number gutter, the
// cursor and the visual selection. Lines are cut to width.
func (m Model) renderEditor() string {
	cursor := m.buf.Cursor()
	sel, hasSel := m.engine.Selection()
	showCursor := m.engine.Mode() != vim.ModeCommandLine

	count := m.buf.LineCount()
	gutterWidth := len(strconv.Itoa(count))

	lines := make([]string, count)
	for row := range count {
		gutter := gutterStyle.Render(fmt.Sprintf("%*d ", gutterWidth, row+1))
		line := renderLine(m.buf.Line(row), row, cursor, sel, hasSel, showCursor)
		lines[row] = ansi.Truncate(gutter+line, m.width, "")
	}
	return strings.Join(lines, "\n")
}

// renderLine draws one row. The cursor is reverse video; the selection a
// dim background. A cursor or selection past the last cluster is drawn on
// a trailing blank.
func renderLine(line string, row int, cursor vim.Position, sel vim.Range, hasSel, showCursor bool) string {
	clusters := grapheme.Split(line)
	start, end, selected := selectedCols(row, len(clusters), sel, hasSel)
	onCursorRow := showCursor && row == cursor.Row

	var b strings.Builder
	inSel := false
	for i, g := range clusters {
		isSel := selected && i >= start && i < end
		if isSel != inSel {
			if isSel {
				b.WriteString(selectionOn)
			} else {
				b.WriteString(selectionOff)
			}
			inSel = isSel
		}
		if g == "\t" {
			g = tabDisplay
		}
		if onCursorRow && i == cursor.Col {
			b.WriteString(cursorOn + g + cursorOff)
			continue
		}
		b.WriteString(g)
	}
	if inSel {
		b.WriteString(selectionOff)
	}

	switch {
	case onCursorRow && cursor.Col >= len(clusters):
		b.WriteString(cursorOn + " " + cursorOff)
	case selected && end > len(clusters):
		b.WriteString(selectionOn + " " + selectionOff)
	}
	return b.String()
}

// selectedCols returns the selected cluster columns [start, end) of a row.
// end may exceed n by one to mark the line break as selected.
func selectedCols(row, n int, sel vim.Range, hasSel bool) (start, end int, ok bool) {
	if !hasSel {
		return 0, 0, false
	}
	sel = sel.Normalize()
	if row < sel.Start.Row || row > sel.End.Row {
		return 0, 0, false
	}
	if sel.Kind == vim.Linewise {
		return 0, n + 1, true
	}
	end = n + 1
	if row == sel.Start.Row {
		start = sel.Start.Col
	}
	if row == sel.End.Row {
		end = sel.End.Col
		if sel.Kind == vim.Inclusive {
			end++
		}
	}
	return start, end, true
}

// renderStatusBar draws the mode badge, pending keys, buffer name, dirty
// marker and cursor position on one line.
func (m Model) renderStatusBar() string {
	mode := m.engine.Mode()
	left := badge(mode)
	if pending := m.engine.State().PendingKeys(); pending != "" {
		left += pendingStyle.Render(" " + pending)
	}

	dirty := ""
	if m.Dirty() {
		dirty = " [+]"
	}
	cursor := m.buf.Cursor()
	right := pendingStyle.Render(fmt.Sprintf(" %s%s  %d:%d ", m.name, dirty, cursor.Row+1, cursor.Col+1))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return ansi.Truncate(left+right, m.width, "…")
	}
	return left + statusStyle.Render(strings.Repeat(" ", gap)) + right
}

// renderMessage draws the command line while it is open, otherwise the
// last message wrapped to the width.
func (m Model) renderMessage() string {
	if m.engine.Mode() == vim.ModeCommandLine {
		return ansi.Truncate(m.engine.CommandText()+cursorOn+" "+cursorOff, m.width, "")
	}
	if m.message == "" {
		return ""
	}
	lines := strings.Split(wordwrap.String(m.message, max(m.width, 1)), "\n")
	if len(lines) > maxMessageLines {
		lines = lines[:maxMessageLines]
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "…")
	}
	style := messageStyle
	if m.messageErr {
		style = errorStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderLogPane draws the most recent log entries in a bordered box.
func (m Model) renderLogPane() string {
	inner := max(m.width-2, 1)
	lines := []string{logTitleStyle.Render("Log")}
	start := max(len(m.logLines)-(logPaneHeight-1), 0)
	for _, line := range m.logLines[start:] {
		lines = append(lines, ansi.Truncate(line, inner, "…"))
	}
	for len(lines) < logPaneHeight {
		lines = append(lines, "")
	}
	return logPaneStyle.Width(inner).Render(strings.Join(lines, "\n"))
}
