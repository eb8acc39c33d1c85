package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorDim     = lipgloss.Color("#6B7280")
	ColorText    = lipgloss.Color("#E5E7EB")
	ColorBorder  = lipgloss.Color("#374151")
	ColorError   = lipgloss.Color("#EF4444")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorAccent  = lipgloss.Color("#06B6D4")
	ColorWarn    = lipgloss.Color("#F59E0B")
)

// Styles.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarn)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// Pad cells
	CellStyle = lipgloss.NewStyle().
			Width(padCellWidth).
			Align(lipgloss.Center).
			Foreground(ColorDim)

	SelectedCellStyle = lipgloss.NewStyle().
				Width(padCellWidth).
				Align(lipgloss.Center).
				Foreground(ColorPrimary).
				Bold(true)
)
