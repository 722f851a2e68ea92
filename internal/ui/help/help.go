// Package help contains the help overlay component.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/csvedit/internal/delimited"
	"github.com/zjrosen/csvedit/internal/keys"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/ui/markdown"
	"github.com/zjrosen/csvedit/internal/ui/overlay"
	"github.com/zjrosen/csvedit/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	keys          keys.KeyMap
	meta          delimited.Meta
	markdownStyle string
	width         int
	height        int
}

// New creates a help view describing a file with the given conventions.
func New(meta delimited.Meta, markdownStyle string) Model {
	return Model{
		keys:          keys.DefaultKeyMap(),
		meta:          meta,
		markdownStyle: markdownStyle,
	}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// SetMeta updates the file conventions shown in the format section.
func (m Model) SetMeta(meta delimited.Meta) Model {
	m.meta = meta
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	helpBox := m.renderContent()

	if background == "" {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			helpBox,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, helpBox, background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var navCol strings.Builder
	navCol.WriteString(sectionStyle.Render("Navigation"))
	navCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.NextCell, m.keys.PrevCell} {
		navCol.WriteString(renderBinding(b))
	}

	var structCol strings.Builder
	structCol.WriteString(sectionStyle.Render("Rows & Columns"))
	structCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.LineBreak, m.keys.AddRowAfter, m.keys.AddRowBefore, m.keys.AddColumnAfter, m.keys.AddColumnBefore, m.keys.DeleteRow, m.keys.DeleteColumn, m.keys.DeleteAll} {
		structCol.WriteString(renderBinding(b))
	}

	var generalCol strings.Builder
	generalCol.WriteString(sectionStyle.Render("General"))
	generalCol.WriteString("\n")
	for _, b := range []key.Binding{m.keys.Save, m.keys.ToggleControls, m.keys.ToggleStatus, m.keys.Help, m.keys.Quit} {
		generalCol.WriteString(renderBinding(b))
	}

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(navCol.String()),
		columnStyle.Render(structCol.String()),
		generalCol.String(),
	)
	columnsWidth := lipgloss.Width(columns)
	boxWidth := columnsWidth + 4

	format := sectionStyle.Render("File Format") + "\n" + m.renderFormat(columnsWidth)

	body := contentStyle.Render(columns + "\n" + format + "\n" + footerStyle.Render("Press F1 or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

// renderFormat renders the file conventions through glamour, falling back to
// the raw markdown when rendering fails.
func (m Model) renderFormat(width int) string {
	md := FormatMarkdown(m.meta)
	r, err := markdown.New(width, m.markdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to create markdown renderer", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to render help markdown", err)
		return md
	}
	return strings.Trim(out, "\n")
}

// FormatMarkdown describes how the open file will be written back.
func FormatMarkdown(meta delimited.Meta) string {
	trailing := "no"
	if meta.TrailingLineBreak {
		trailing = "yes"
	}
	return fmt.Sprintf(
		"- Delimiter: `%s`\n- Quote: `%s`\n- Line break: `%s`\n- Trailing line break: %s\n",
		RuneName(meta.Delimiter),
		RuneName(meta.QuoteChar),
		LineBreakName(meta.LineBreak),
		trailing,
	)
}

// RuneName returns a readable name for delimiter and quote characters.
func RuneName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ' ':
		return "space"
	default:
		return string(r)
	}
}

// LineBreakName returns "CRLF" or "LF".
func LineBreakName(lb string) string {
	if lb == delimited.CRLF {
		return "CRLF"
	}
	return "LF"
}

func renderBinding(b key.Binding) string {
	help := b.Help()
	return keyStyle.Render(help.Key) + descStyle.Render(help.Desc) + "\n"
}
