package tui

import (
	"charm.land/lipgloss/v2"
)

// Color palette — calm, readable, study-room rather than arcade
var (
	colorPrimary = lipgloss.Color("#6366F1") // Indigo
	colorAccent  = lipgloss.Color("#F59E0B") // Amber
	colorText    = lipgloss.Color("#F8FAFC") // White
	colorDim     = lipgloss.Color("#94A3B8") // Slate
	colorBorder  = lipgloss.Color("#334155") // Slate
	colorBgCard  = lipgloss.Color("#1E293B") // Dark Slate
	colorError   = lipgloss.Color("#F43F5E") // Rose
)

var (
	styleHeader = lipgloss.NewStyle().
			Background(colorBgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleBrand = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleYou = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleTutor = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleBody = lipgloss.NewStyle().
			Foreground(colorText)

	styleHint = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleInputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)
