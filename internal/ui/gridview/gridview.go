// Package gridview renders a sheet as an editable grid of cells.
//
// The cell under the cursor is edited in place through a single-line text
// input. Line breaks and tabs inside a value are shown and edited as control
// pictures (see styles.Escape) and written back as the real characters. A
// picture that is part of the value is edited behind a backslash.
package gridview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/csvedit/internal/config"
	"github.com/zjrosen/csvedit/internal/keys"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/navigation"
	"github.com/zjrosen/csvedit/internal/sheet"
	"github.com/zjrosen/csvedit/internal/ui/modal"
	"github.com/zjrosen/csvedit/internal/ui/styles"
)

// Config controls grid behavior.
type Config struct {
	ShowControls bool
	WarnOnDelete bool
	Labels       config.ControlLabels
	MaxCellWidth int // 0 = no limit
}

// NoticeMsg reports an edit the sheet refused.
type NoticeMsg struct {
	Text string
}

// ControlsToggledMsg is sent when the row/column controls are shown or hidden.
type ControlsToggledMsg struct {
	Show bool
}

type deleteKind int

const (
	deleteRow deleteKind = iota
	deleteColumn
	deleteAll
)

// pendingDelete is the modal tag for a delete awaiting confirmation.
type pendingDelete struct {
	kind  deleteKind
	index int
}

// Model is the grid editor state.
type Model struct {
	sheet   *sheet.Sheet
	keys    keys.KeyMap
	cfg     Config
	cursor  navigation.Address
	input   textinput.Model
	confirm *modal.Model
	zoneID  string

	width     int
	height    int
	rowOffset int
	colOffset int
}

// New creates a grid over s with the cursor at the end of the first cell.
func New(s *sheet.Sheet, cfg Config) Model {
	cfg.Labels = cfg.Labels.WithDefaults()

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.TextStyle = styles.CursorCellStyle
	ti.Focus()

	m := Model{
		sheet:  s,
		keys:   keys.DefaultKeyMap(),
		cfg:    cfg,
		input:  ti,
		zoneID: zone.NewPrefix(),
	}
	m.focusEnd(navigation.Address{})
	return m
}

// Init starts the caret blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the grid.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case modal.SubmitMsg:
		p, ok := msg.Tag.(pendingDelete)
		if !ok || m.confirm == nil {
			return m, nil
		}
		m.confirm = nil
		return m.applyDelete(p)

	case modal.CancelMsg:
		if _, ok := msg.Tag.(pendingDelete); ok {
			m.confirm = nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.handleMouse(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	confirm, cmd := m.confirm.Update(msg)
	m.confirm = &confirm
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveVertical(navigation.Up), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveVertical(navigation.Down), nil
	case key.Matches(msg, m.keys.Left):
		return m.moveHorizontal(navigation.Left, msg)
	case key.Matches(msg, m.keys.Right):
		return m.moveHorizontal(navigation.Right, msg)
	case key.Matches(msg, m.keys.NextCell):
		return m.step(1), nil
	case key.Matches(msg, m.keys.PrevCell):
		return m.step(-1), nil

	case key.Matches(msg, m.keys.LineBreak):
		return m.insertLineBreak(), nil

	case key.Matches(msg, m.keys.AddRowAfter):
		m.focusEnd(navigation.InsertRowOnEnter(m.sheet, m.cursor, false))
		return m, nil
	case key.Matches(msg, m.keys.AddRowBefore):
		m.focusEnd(navigation.InsertRowOnEnter(m.sheet, m.cursor, true))
		return m, nil
	case key.Matches(msg, m.keys.AddColumnAfter):
		col := m.sheet.AddColumnAfter(m.cursor.Col)
		m.focusEnd(navigation.Address{Row: m.cursor.Row, Col: col})
		return m, nil
	case key.Matches(msg, m.keys.AddColumnBefore):
		col := m.sheet.AddColumnBefore(m.cursor.Col)
		m.focusEnd(navigation.Address{Row: m.cursor.Row, Col: col})
		return m, nil

	case key.Matches(msg, m.keys.DeleteRow):
		return m.requestDelete(pendingDelete{kind: deleteRow, index: m.cursor.Row})
	case key.Matches(msg, m.keys.DeleteColumn):
		return m.requestDelete(pendingDelete{kind: deleteColumn, index: m.cursor.Col})
	case key.Matches(msg, m.keys.DeleteAll):
		return m.requestDelete(pendingDelete{kind: deleteAll})

	case key.Matches(msg, m.keys.ToggleControls):
		m.cfg.ShowControls = !m.cfg.ShowControls
		m.scrollToCursor()
		show := m.cfg.ShowControls
		return m, func() tea.Msg { return ControlsToggledMsg{Show: show} }
	}

	return m.edit(msg)
}

// edit forwards msg to the text input and writes the value back only when
// it actually changed.
func (m Model) edit(msg tea.Msg) (Model, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.writeBack(after)
	}
	return m, cmd
}

func (m *Model) writeBack(value string) {
	if err := m.sheet.SetCell(m.cursor.Row, m.cursor.Col, styles.Unescape(value)); err != nil {
		log.ErrorErr(log.CatUI, "write cell failed", err, "row", m.cursor.Row, "col", m.cursor.Col)
		return
	}
	m.scrollToCursor()
}

func (m Model) insertLineBreak() Model {
	runes := []rune(m.input.Value())
	pos := min(m.input.Position(), len(runes))
	value := string(runes[:pos]) + styles.LineFeedSymbol + string(runes[pos:])
	m.input.SetValue(value)
	m.input.SetCursor(pos + 1)
	m.writeBack(value)
	return m
}

func (m Model) moveVertical(dir navigation.Direction) Model {
	if target, ok := navigation.ResolveVertical(m.sheet, m.cursor, dir); ok {
		m.moveTo(target, dir)
	}
	return m
}

// moveHorizontal crosses into the neighbouring cell when the caret is on
// the matching edge and otherwise lets the input move the caret.
func (m Model) moveHorizontal(dir navigation.Direction, msg tea.KeyMsg) (Model, tea.Cmd) {
	value := m.input.Value()
	caret := navigation.RuneToGrapheme(value, m.input.Position())
	pos := navigation.ClassifyCursor(value, navigation.Caret(caret))
	if target, ok := navigation.ResolveHorizontal(m.sheet, m.cursor, dir, pos); ok {
		m.moveTo(target, dir)
		return m, nil
	}
	return m.edit(msg)
}

// step moves to the next or previous cell in reading order, wrapping across
// rows but not past either end of the grid.
func (m Model) step(delta int) Model {
	cols := m.sheet.Cols()
	idx := m.cursor.Row*cols + m.cursor.Col + delta
	if idx < 0 || idx >= m.sheet.Rows()*cols {
		return m
	}
	m.focusEnd(navigation.Address{Row: idx / cols, Col: idx % cols})
	return m
}

func (m Model) requestDelete(p pendingDelete) (Model, tea.Cmd) {
	if !m.cfg.WarnOnDelete {
		return m.applyDelete(p)
	}

	cfg := modal.Config{
		ConfirmLabel:   "Delete",
		ConfirmVariant: modal.ButtonDanger,
		Tag:            p,
	}
	switch p.kind {
	case deleteRow:
		cfg.Title = "Delete Row"
		cfg.Message = m.cfg.Labels.DeleteRowWarning
	case deleteColumn:
		cfg.Title = "Delete Column"
		cfg.Message = m.cfg.Labels.DeleteColumnWarning
	case deleteAll:
		cfg.Title = "Delete All"
		cfg.Message = m.cfg.Labels.DeleteAllWarning
	}
	confirm := modal.New(cfg)
	confirm.SetSize(m.width, m.height)
	m.confirm = &confirm
	return m, nil
}

func (m Model) applyDelete(p pendingDelete) (Model, tea.Cmd) {
	switch p.kind {
	case deleteRow:
		if !m.sheet.DeleteRow(p.index) {
			return m, notice("Cannot delete the only row")
		}
	case deleteColumn:
		if !m.sheet.DeleteColumn(p.index) {
			return m, notice("Cannot delete the only column")
		}
	case deleteAll:
		m.sheet.ClearAll()
	}
	m.focusEnd(m.cursor)
	return m, nil
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		return m.moveVertical(navigation.Up), nil
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		return m.moveVertical(navigation.Down), nil
	case msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease:
		return m, nil
	}

	if m.inZone(zoneDeleteAll, msg) {
		return m.requestDelete(pendingDelete{kind: deleteAll})
	}
	rows, cols := m.visibleRows(), m.visibleCols()
	for c := cols.start; c < cols.end; c++ {
		switch {
		case m.inZone(controlZone(zoneAddColBefore, c), msg):
			m.focusEnd(navigation.Address{Row: m.cursor.Row, Col: m.sheet.AddColumnBefore(c)})
			return m, nil
		case m.inZone(controlZone(zoneDeleteCol, c), msg):
			m.cursor.Col = c
			return m.requestDelete(pendingDelete{kind: deleteColumn, index: c})
		case m.inZone(controlZone(zoneAddColAfter, c), msg):
			m.focusEnd(navigation.Address{Row: m.cursor.Row, Col: m.sheet.AddColumnAfter(c)})
			return m, nil
		}
	}
	for r := rows.start; r < rows.end; r++ {
		switch {
		case m.inZone(controlZone(zoneAddRowBefore, r), msg):
			m.focusEnd(navigation.Address{Row: m.sheet.AddRowBefore(r), Col: m.cursor.Col})
			return m, nil
		case m.inZone(controlZone(zoneDeleteRow, r), msg):
			m.cursor.Row = r
			return m.requestDelete(pendingDelete{kind: deleteRow, index: r})
		case m.inZone(controlZone(zoneAddRowAfter, r), msg):
			m.focusEnd(navigation.Address{Row: m.sheet.AddRowAfter(r), Col: m.cursor.Col})
			return m, nil
		}
		for c := cols.start; c < cols.end; c++ {
			if m.inZone(cellZone(r, c), msg) {
				m.focusEnd(navigation.Address{Row: r, Col: c})
				return m, nil
			}
		}
	}
	return m, nil
}

func (m Model) inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(m.zoneID + id)
	return z != nil && z.InBounds(msg)
}

// moveTo places the cursor on target with the caret where arriving from
// dir leaves it.
func (m *Model) moveTo(target navigation.Address, dir navigation.Direction) {
	value := m.load(target)
	m.input.SetCursor(navigation.GraphemeToRune(value, navigation.LandingCaret(dir, value)))
}

// focusEnd places the cursor on target, clamped to the grid, with the caret
// at the end of the value.
func (m *Model) focusEnd(target navigation.Address) {
	m.load(navigation.Clamp(m.sheet, target))
	m.input.CursorEnd()
}

// load moves the cursor and fills the input with the cell's escaped value.
func (m *Model) load(target navigation.Address) string {
	m.cursor = target
	raw, err := m.sheet.Cell(target.Row, target.Col)
	if err != nil {
		log.ErrorErr(log.CatUI, "read cell failed", err, "row", target.Row, "col", target.Col)
	}
	value := styles.Escape(raw)
	m.input.SetValue(value)
	m.scrollToCursor()
	return value
}

// Refresh re-reads the cell under the cursor after the sheet changed
// outside the grid, such as a reload from disk. The caret keeps its offset
// where the new value allows.
func (m Model) Refresh() Model {
	pos := m.input.Position()
	m.load(navigation.Clamp(m.sheet, m.cursor))
	m.input.SetCursor(pos)
	return m
}

// Cursor returns the address of the cell being edited.
func (m Model) Cursor() navigation.Address {
	return m.cursor
}

// SetCursor moves the cursor, clamped to the grid, with the caret at the end.
func (m Model) SetCursor(a navigation.Address) Model {
	m.focusEnd(a)
	return m
}

// Caret returns the caret offset within the cell in grapheme clusters.
func (m Model) Caret() int {
	return navigation.RuneToGrapheme(m.input.Value(), m.input.Position())
}

// Value returns the cell under the cursor as shown in the input.
func (m Model) Value() string {
	return m.input.Value()
}

// ShowControls reports whether the row/column controls are visible.
func (m Model) ShowControls() bool {
	return m.cfg.ShowControls
}

// Confirming reports whether a delete confirmation is open.
func (m Model) Confirming() bool {
	return m.confirm != nil
}

// SetSize updates the space the grid may draw into.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	if m.confirm != nil {
		m.confirm.SetSize(width, height)
	}
	m.scrollToCursor()
	return m
}
