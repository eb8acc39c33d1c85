package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownStyle is the glamour theme used on terminals.
const markdownStyle = "tokyo-night"

// RenderMarkdown styles markdown for a terminal of the given width. When
// styled is false, or glamour fails, the text is returned unchanged.
func RenderMarkdown(content string, width int, styled bool) string {
	if !styled {
		return content
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(markdownStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}
