package help

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/csvedit/internal/delimited"
)

func TestHelp_SetSize(t *testing.T) {
	m := New(delimited.DefaultMeta(), "dark")
	m = m.SetSize(120, 40)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "expected original model width unchanged")
}

func TestHelp_View_ContainsSections(t *testing.T) {
	view := ansi.Strip(New(delimited.DefaultMeta(), "dark").SetSize(140, 50).View())

	assert.Contains(t, view, "Navigation")
	assert.Contains(t, view, "Rows & Columns")
	assert.Contains(t, view, "General")
	assert.Contains(t, view, "File Format")
	assert.Contains(t, view, "ctrl+s")
	assert.Contains(t, view, "insert row below")
}

func TestHelp_View_DescribesFile(t *testing.T) {
	meta := delimited.Meta{Delimiter: '\t', QuoteChar: '"', LineBreak: "\r\n", TrailingLineBreak: true}
	view := ansi.Strip(New(delimited.DefaultMeta(), "light").SetMeta(meta).SetSize(140, 50).View())

	assert.Contains(t, view, "tab")
	assert.Contains(t, view, "CRLF")
}

func TestHelp_Overlay(t *testing.T) {
	m := New(delimited.DefaultMeta(), "dark").SetSize(140, 50)
	bg := ""
	for i := 0; i < 50; i++ {
		bg += "................................................................................................................................................\n"
	}
	out := m.Overlay(bg)
	assert.Contains(t, ansi.Strip(out), "Keybindings")
}

func TestFormatMarkdown(t *testing.T) {
	md := FormatMarkdown(delimited.Meta{Delimiter: ';', QuoteChar: '\'', LineBreak: "\n", TrailingLineBreak: false})

	require.Contains(t, md, "Delimiter: `;`")
	require.Contains(t, md, "Quote: `'`")
	require.Contains(t, md, "Line break: `LF`")
	require.Contains(t, md, "Trailing line break: no")
}

func TestRuneName(t *testing.T) {
	require.Equal(t, "tab", RuneName('\t'))
	require.Equal(t, "space", RuneName(' '))
	require.Equal(t, "|", RuneName('|'))
	require.Equal(t, "CRLF", LineBreakName("\r\n"))
	require.Equal(t, "LF", LineBreakName("\n"))
}
