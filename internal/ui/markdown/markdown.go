// Package markdown provides styled markdown rendering for the TUI.
package markdown

import (
	"github.com/charmbracelet/glamour"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with the editor's configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a markdown renderer with the given width. style is "dark",
// "light", or "" to detect from the terminal background.
func New(width int, style string) (*Renderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style == "dark" || style == "light" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the configured style name.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
