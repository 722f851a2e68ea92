// Package modal provides a confirmation dialog rendered over the current view.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/csvedit/internal/keys"
	"github.com/zjrosen/csvedit/internal/ui/overlay"
	"github.com/zjrosen/csvedit/internal/ui/styles"
)

// ButtonVariant controls the styling of the confirm button.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota // Blue (default)
	ButtonDanger                       // Red (for destructive actions)
)

// Config controls modal appearance and behavior.
type Config struct {
	Title          string        // e.g. "Delete Row"
	Message        string        // prompt text
	ConfirmLabel   string        // default "Confirm"
	CancelLabel    string        // default "Cancel"
	ConfirmVariant ButtonVariant // default ButtonPrimary
	MinWidth       int           // 0 = 40
	// Tag is handed back in SubmitMsg and CancelMsg so the caller knows
	// which pending action was answered.
	Tag any
}

// SubmitMsg is sent when the user confirms.
type SubmitMsg struct {
	Tag any
}

// CancelMsg is sent when the user cancels.
type CancelMsg struct {
	Tag any
}

// Field identifies which button is focused.
type Field int

const (
	FieldConfirm Field = iota
	FieldCancel
)

// Model is the modal component state.
type Model struct {
	config  Config
	keys    keys.ConfirmKeyMap
	focused Field
	zoneID  string
	width   int
	height  int
}

// New creates a confirmation modal focused on the confirm button.
func New(cfg Config) Model {
	if cfg.ConfirmLabel == "" {
		cfg.ConfirmLabel = "Confirm"
	}
	if cfg.CancelLabel == "" {
		cfg.CancelLabel = "Cancel"
	}
	return Model{
		config:  cfg,
		keys:    keys.DefaultConfirmKeyMap(),
		focused: FieldConfirm,
		zoneID:  zone.NewPrefix(),
	}
}

// Init returns no command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m, m.submit()
		case key.Matches(msg, m.keys.No):
			return m, m.cancel()
		case key.Matches(msg, m.keys.Select):
			if m.focused == FieldCancel {
				return m, m.cancel()
			}
			return m, m.submit()
		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
			// two buttons: next and previous both toggle
			if m.focused == FieldConfirm {
				m.focused = FieldCancel
			} else {
				m.focused = FieldConfirm
			}
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if z := zone.Get(m.zoneID + "confirm"); z != nil && z.InBounds(msg) {
			return m, m.submit()
		}
		if z := zone.Get(m.zoneID + "cancel"); z != nil && z.InBounds(msg) {
			return m, m.cancel()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) submit() tea.Cmd {
	tag := m.config.Tag
	return func() tea.Msg { return SubmitMsg{Tag: tag} }
}

func (m Model) cancel() tea.Cmd {
	tag := m.config.Tag
	return func() tea.Msg { return CancelMsg{Tag: tag} }
}

// View renders the modal box (without overlay).
func (m Model) View() string {
	contentWidth := max(40, m.config.MinWidth, lipgloss.Width(m.config.Title))
	boxWidth := contentWidth + 2

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	if m.config.Message != "" {
		msgStyle := lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor).
			Width(contentWidth)
		content.WriteString(msgStyle.Render(m.config.Message))
		content.WriteString("\n\n")
	}
	content.WriteString(m.renderButtons())

	var result strings.Builder
	result.WriteString(titleStyle.Render(m.config.Title))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().Padding(1, 1).Render(content.String()))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth)

	return boxStyle.Render(result.String())
}

func (m Model) renderButtons() string {
	confirmStyle := styles.PrimaryButtonStyle
	if m.config.ConfirmVariant == ButtonDanger {
		confirmStyle = styles.DangerButtonStyle
	}
	if m.focused == FieldConfirm {
		confirmStyle = styles.PrimaryButtonFocusedStyle
		if m.config.ConfirmVariant == ButtonDanger {
			confirmStyle = styles.DangerButtonFocusedStyle
		}
	}

	cancelStyle := styles.SecondaryButtonStyle
	if m.focused == FieldCancel {
		cancelStyle = styles.SecondaryButtonFocusedStyle
	}

	confirmBtn := zone.Mark(m.zoneID+"confirm", confirmStyle.Render(m.config.ConfirmLabel))
	cancelBtn := zone.Mark(m.zoneID+"cancel", cancelStyle.Render(m.config.CancelLabel))
	return confirmBtn + "  " + cancelBtn
}

// Overlay renders the modal centered on the given background.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// SetSize updates the modal's knowledge of viewport size for overlay centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focused returns the focused button.
func (m Model) Focused() Field {
	return m.focused
}

// Tag returns the caller-supplied tag.
func (m Model) Tag() any {
	return m.config.Tag
}
