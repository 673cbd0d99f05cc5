// Package tui is the terminal display for handcalc: it shows the live
// expression and results and drives the app from the keyboard.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary  = lipgloss.Color("#3498DB") // Blue - digits, title
	ColorNext     = lipgloss.Color("#F1C40F") // Yellow - "next"
	ColorOperator = lipgloss.Color("#2ECC71") // Green - operators
	ColorError    = lipgloss.Color("#E74C3C") // Red - errors, "="
	ColorMuted    = lipgloss.Color("#666666") // Gray - help text
	ColorText     = lipgloss.Color("#f1faee")
	ColorBg       = lipgloss.Color("#1a1a2e")
	ColorBgAlt    = lipgloss.Color("#2d3436")
	ColorBorder   = lipgloss.Color("#3d5a80")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorBg).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Bold(true).
			Width(12)

	expressionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorNext).
			Background(ColorBgAlt).
			Padding(0, 2)

	resultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOperator)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	historyStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	onStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorOperator)

	offStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)
)
