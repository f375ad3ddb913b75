// Package theme holds the colors and styles shared by the browser panes.
package theme

import "github.com/charmbracelet/lipgloss"

// 256-color codes, so the browser looks the same in the terminals Studio
// users typically run.
var (
	ColorPrimary   = lipgloss.Color("33")  // admin bar blue
	ColorSuccess   = lipgloss.Color("42")
	ColorWarning   = lipgloss.Color("214") // outside changes, read-only mode
	ColorError     = lipgloss.Color("196")
	ColorBorder    = lipgloss.Color("238")
	ColorMuted     = lipgloss.Color("245")
	ColorHighlight = lipgloss.Color("229") // selected table, row or candidate

	colorBarBackground = lipgloss.Color("236")
	colorBarText       = lipgloss.Color("252")
)

func pane(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(c)
}

func text(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	// StyleBorder frames an unfocused pane; StyleActiveBorder the focused one.
	StyleBorder       = pane(ColorBorder)
	StyleActiveBorder = pane(ColorPrimary)

	StyleTitle    = text(ColorPrimary).Bold(true).Padding(0, 1)
	StyleSelected = text(ColorHighlight).Bold(true)
	StyleMuted    = text(ColorMuted)
	StyleError    = text(ColorError)
	StyleWarning  = text(ColorWarning)
	StyleSuccess  = text(ColorSuccess)

	StyleStatusBar = lipgloss.NewStyle().
			Background(colorBarBackground).
			Foreground(colorBarText).
			Padding(0, 1)
)
