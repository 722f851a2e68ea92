package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/csvedit/internal/ui/help"
	"github.com/zjrosen/csvedit/internal/ui/styles"
)

// renderStatusBar shows the file, its shape and its conventions on one line.
//
//	data.csv [+]  3×4  R2 C1  ; · CRLF              F1 help
func (m Model) renderStatusBar() string {
	name := filepath.Base(m.path)
	switch {
	case m.dirty:
		name += " " + styles.StatusDirtyStyle.Render("[+]")
	case m.isNew:
		name += " [new]"
	}

	cursor := m.grid.Cursor()
	meta := m.sheet.Meta()
	parts := []string{
		name,
		fmt.Sprintf("%d×%d", m.sheet.Rows(), m.sheet.Cols()),
		fmt.Sprintf("R%d C%d", cursor.Row+1, cursor.Col+1),
		help.RuneName(meta.Delimiter) + " · " + help.LineBreakName(meta.LineBreak),
	}
	left := strings.Join(parts, "  ")
	right := "F1 help"

	width := m.width - styles.StatusBarStyle.GetHorizontalFrameSize()
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return styles.StatusBarStyle.Render(left)
	}
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
