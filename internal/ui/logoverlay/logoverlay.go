// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/ui/overlay"
	"github.com/zjrosen/csvedit/internal/ui/styles"
)

const (
	viewportMaxHeight = 25  // Fixed viewport height in lines
	viewportMinHeight = 5   // Minimum viewport height for very small screens
	boxMaxWidth       = 160 // Maximum box width in characters
	boxMinWidth       = 40  // Minimum box width in characters

	// MaxEntries bounds the retained log history.
	MaxEntries = 1000
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a new log overlay model.
func New() Model {
	return Model{
		minLevel: log.LevelDebug,
	}
}

// Append records a log entry, dropping the oldest beyond MaxEntries.
func (m Model) Append(entry string) Model {
	m.entries = append(m.entries, strings.TrimSuffix(entry, "\n"))
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = append([]string(nil), m.entries[over:]...)
	}
	if m.visible {
		m.refreshViewport()
	}
	return m
}

// Entries returns the retained entries, oldest first.
func (m Model) Entries() []string {
	return m.entries
}

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.entries = nil
			m.refreshViewport()
			return m, nil

		case "d":
			m.minLevel = log.LevelDebug
			m.refreshViewport()
			return m, nil

		case "i":
			m.minLevel = log.LevelInfo
			m.refreshViewport()
			return m, nil

		case "w":
			m.minLevel = log.LevelWarn
			m.refreshViewport()
			return m, nil

		case "e":
			m.minLevel = log.LevelError
			m.refreshViewport()
			return m, nil

		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil

		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil

		case "g", "home":
			m.viewport.GotoTop()
			return m, nil

		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil

		case "f12", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshViewport()
	}

	return m, nil
}

// View renders the log overlay content.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	dividerStyle := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var result strings.Builder
	result.WriteString(titleStyle.Render("Logs"))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.viewport.View())
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.buildFilterHint())

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth)

	return boxStyle.Render(result.String())
}

func (m Model) filteredEntries() []string {
	var filtered []string
	for _, entry := range m.entries {
		if m.matchesLevel(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func (m Model) buildLogContent(contentWidth int) string {
	filtered := m.filteredEntries()
	if len(filtered) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true)
		return emptyStyle.Render("No logs to display")
	}

	lines := make([]string, 0, len(filtered))
	for _, entry := range filtered {
		lines = append(lines, m.colorizeEntry(entry, contentWidth))
	}
	return strings.Join(lines, "\n")
}

// refreshViewport rebuilds the viewport and keeps it scrolled to the newest entry.
func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := m.contentWidth()

	// header (2 lines), footer (2 lines), borders (2 lines)
	viewportHeight := min(viewportMaxHeight, m.height-6)
	viewportHeight = max(viewportHeight, viewportMinHeight)

	m.viewport = viewport.New(contentWidth, viewportHeight)
	m.viewport.SetContent(m.buildLogContent(contentWidth))
	m.viewport.GotoBottom()
}

// Overlay renders the log overlay centered on the given background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// Toggle toggles the overlay visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
	}
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the overlay's knowledge of viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

// MinLevel returns the active filter.
func (m Model) MinLevel() log.Level {
	return m.minLevel
}

// matchesLevel reports whether entry is at or above the filter level.
// Entries without a recognizable level are always shown.
func (m Model) matchesLevel(entry string) bool {
	level, ok := entryLevel(entry)
	return !ok || level >= m.minLevel
}

func entryLevel(entry string) (log.Level, bool) {
	switch {
	case strings.Contains(entry, "[ERROR]"):
		return log.LevelError, true
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn, true
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo, true
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug, true
	}
	return 0, false
}

func (m Model) colorizeEntry(entry string, maxWidth int) string {
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth-3, "...")
	}

	style := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if level, ok := entryLevel(entry); ok {
		switch level {
		case log.LevelError:
			style = lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
		case log.LevelWarn:
			style = lipgloss.NewStyle().Foreground(styles.StatusWarningColor)
		case log.LevelInfo:
			style = lipgloss.NewStyle().Foreground(styles.ToastBorderInfoColor)
		default:
			style = lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		}
	}
	return style.Render(entry)
}

// buildFilterHint renders the footer with the active filter in bold.
func (m Model) buildFilterHint() string {
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Bold(true)

	hints := []string{hintStyle.Render("[c] Clear")}
	for _, f := range []struct {
		label string
		level log.Level
	}{
		{"[d] Debug", log.LevelDebug},
		{"[i] Info", log.LevelInfo},
		{"[w] Warn", log.LevelWarn},
		{"[e] Error", log.LevelError},
	} {
		if m.minLevel == f.level {
			hints = append(hints, activeStyle.Render(f.label))
		} else {
			hints = append(hints, hintStyle.Render(f.label))
		}
	}
	return strings.Join(hints, "  ")
}
