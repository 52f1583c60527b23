package tui

import (
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/eventnotify/server/internal/notifier"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorSuccess   = lipgloss.Color("#23D160")
	colorDanger    = lipgloss.Color("#FF3860")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray)

	localStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Italic(true)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

func kindStyle(kind notifier.Kind) lipgloss.Style {
	if kind == notifier.KindDanger {
		return dangerStyle
	}

	return successStyle
}

func kindIcon(kind notifier.Kind) string {
	if kind == notifier.KindDanger {
		return "✗"
	}

	return "✓"
}
