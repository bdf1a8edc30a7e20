package playground

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/modal/internal/vim"
)

// Cursor uses reverse video, selection a dim background.
const (
	cursorOn     = "\x1b[7m"
	cursorOff    = "\x1b[27m"
	selectionOn  = "\x1b[48;5;238;38;5;255m"
	selectionOff = "\x1b[49;39m"
)

var (
	textMutedColor   = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#696969"}
	statusBgColor    = lipgloss.AdaptiveColor{Light: "#E4E4E4", Dark: "#262626"}
	statusErrorColor = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	borderColor      = lipgloss.AdaptiveColor{Light: "#BCBCBC", Dark: "#444444"}

	visualColor = lipgloss.AdaptiveColor{Light: "#AF5F00", Dark: "#FFAF5F"}

	modeColors = map[vim.Mode]lipgloss.AdaptiveColor{
		vim.ModeNormal:          {Light: "#005FAF", Dark: "#5FAFFF"},
		vim.ModeInsert:          {Light: "#008700", Dark: "#87D787"},
		vim.ModeVisual:          visualColor,
		vim.ModeVisualLine:      visualColor,
		vim.ModeVisualBlock:     visualColor,
		vim.ModeOperatorPending: {Light: "#8700AF", Dark: "#D787FF"},
		vim.ModeCommandLine:     {Light: "#5F5F5F", Dark: "#BCBCBC"},
	}

	gutterStyle = lipgloss.NewStyle().Foreground(textMutedColor)

	statusStyle = lipgloss.NewStyle().Background(statusBgColor)

	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#000000"})

	pendingStyle = lipgloss.NewStyle().Background(statusBgColor).Foreground(textMutedColor)

	messageStyle = lipgloss.NewStyle()

	errorStyle = lipgloss.NewStyle().Foreground(statusErrorColor)

	logPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	logTitleStyle = lipgloss.NewStyle().Foreground(textMutedColor).Bold(true)
)

// badge renders the mode indicator.
func badge(mode vim.Mode) string {
	color, ok := modeColors[mode]
	if !ok {
		color = modeColors[vim.ModeNormal]
	}
	return badgeStyle.Background(color).Render(mode.String())
}
