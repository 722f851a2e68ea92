package modal

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type deleteRow struct{ row int }

func press(m Model, k string) (Model, tea.Msg) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestNew_Defaults(t *testing.T) {
	m := New(Config{Title: "Delete Row"})

	require.Equal(t, FieldConfirm, m.Focused())
	require.Equal(t, "Confirm", m.config.ConfirmLabel)
	require.Equal(t, "Cancel", m.config.CancelLabel)
	require.Nil(t, m.Init())
}

func TestUpdate_EnterConfirmsWithTag(t *testing.T) {
	m := New(Config{Title: "Delete Row", Tag: deleteRow{row: 3}})

	_, msg := press(m, "enter")

	require.Equal(t, SubmitMsg{Tag: deleteRow{row: 3}}, msg)
}

func TestUpdate_EnterOnCancelCancels(t *testing.T) {
	m := New(Config{Title: "Delete Row", Tag: "x"})

	m, msg := press(m, "tab")
	require.Nil(t, msg)
	require.Equal(t, FieldCancel, m.Focused())

	_, msg = press(m, "enter")
	require.Equal(t, CancelMsg{Tag: "x"}, msg)
}

func TestUpdate_ShortcutKeys(t *testing.T) {
	m := New(Config{Title: "Delete All", Tag: 1})

	_, msg := press(m, "y")
	require.Equal(t, SubmitMsg{Tag: 1}, msg)

	_, msg = press(m, "n")
	require.Equal(t, CancelMsg{Tag: 1}, msg)

	_, msg = press(m, "esc")
	require.Equal(t, CancelMsg{Tag: 1}, msg)
}

func TestUpdate_NavigationToggles(t *testing.T) {
	m := New(Config{})

	m, _ = press(m, "tab")
	require.Equal(t, FieldCancel, m.Focused())
	m, _ = press(m, "left")
	require.Equal(t, FieldConfirm, m.Focused())
}

func TestUpdate_IgnoresOtherKeys(t *testing.T) {
	m := New(Config{})
	m, msg := press(m, "q")
	require.Nil(t, msg)
	require.Equal(t, FieldConfirm, m.Focused())
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	m := New(Config{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Equal(t, 80, m.width)
	require.Equal(t, 24, m.height)
}

func TestView_ShowsMessageAndButtons(t *testing.T) {
	m := New(Config{
		Title:          "Delete Column",
		Message:        "DELETE THIS COLUMN?",
		ConfirmLabel:   "Delete",
		ConfirmVariant: ButtonDanger,
	})

	view := zone.Scan(m.View())

	require.Contains(t, view, "Delete Column")
	require.Contains(t, view, "DELETE THIS COLUMN?")
	require.Contains(t, view, "Delete")
	require.Contains(t, view, "Cancel")
}

func TestOverlay_CentersOnBackground(t *testing.T) {
	m := New(Config{Title: "T", Message: "M"})
	m.SetSize(80, 20)

	bg := strings.Repeat(strings.Repeat(".", 80)+"\n", 19) + strings.Repeat(".", 80)
	out := zone.Scan(m.Overlay(bg))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 20)
	require.True(t, strings.HasPrefix(lines[0], "....."), "top rows keep the background")
	require.Contains(t, out, "M")
}

func TestTag(t *testing.T) {
	m := New(Config{Tag: deleteRow{row: 1}})
	require.Equal(t, deleteRow{row: 1}, m.Tag())
}
