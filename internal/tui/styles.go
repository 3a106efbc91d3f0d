package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors so the screen reads on both light and dark terminals.
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	colorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	colorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	colorBorderActive = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleStateOn  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleStateOff = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleInfo     = lipgloss.NewStyle().Foreground(colorInfo)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleSelected = lipgloss.NewStyle().Reverse(true)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	stylePaneActive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorderActive)

	styleStatusKey = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
)
