package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#7C3AED")
	muted   = lipgloss.Color("#6B7280")
	accent  = lipgloss.Color("#10B981")
	white   = lipgloss.Color("#FFFFFF")

	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)

	pathStyle = lipgloss.NewStyle()

	selectedPathStyle = lipgloss.NewStyle().Background(primary).Foreground(white).Bold(true)

	valueStyle = lipgloss.NewStyle().Foreground(accent)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(primary).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(muted)
)
