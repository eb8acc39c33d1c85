package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhubert/reword/internal/rewrite"
)

const (
	padCellWidth  = 9
	padLabelWidth = 14
	padMarker     = "●"
	padEmpty      = "·"
)

// padRows lists tones top to bottom, matching rewrite.PadSelect where a
// small y is Professional.
var padRows = []rewrite.Tone{rewrite.Professional, rewrite.Neutral, rewrite.Casual}

// RenderPad draws the 3×3 tone and length grid with the current selection
// marked, followed by its label.
func RenderPad(tone rewrite.Tone, length rewrite.Length) string {
	label := lipgloss.NewStyle().Width(padLabelWidth)

	var header strings.Builder
	header.WriteString(label.Render(""))
	for _, l := range rewrite.Lengths() {
		header.WriteString(CellStyle.Render(l.String()))
	}

	rows := []string{header.String()}
	for _, t := range padRows {
		var row strings.Builder
		row.WriteString(label.Render(t.String()))
		for _, l := range rewrite.Lengths() {
			if t == tone && l == length {
				row.WriteString(SelectedCellStyle.Render(padMarker))
			} else {
				row.WriteString(CellStyle.Render(padEmpty))
			}
		}
		rows = append(rows, row.String())
	}

	grid := BorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	caption := HeaderStyle.Render(rewrite.SelectionLabel(tone, length))
	return lipgloss.JoinVertical(lipgloss.Left, grid, caption)
}
