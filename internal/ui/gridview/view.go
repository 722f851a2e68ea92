package gridview

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/csvedit/internal/ui/styles"
)

// Zone ID kinds, suffixed with the row or column index.
const (
	zoneDeleteAll    = "all"
	zoneAddRowBefore = "rb"
	zoneDeleteRow    = "rd"
	zoneAddRowAfter  = "ra"
	zoneAddColBefore = "cb"
	zoneDeleteCol    = "cd"
	zoneAddColAfter  = "ca"
)

func controlZone(kind string, index int) string {
	return kind + ":" + strconv.Itoa(index)
}

func cellZone(row, col int) string {
	return "cell:" + strconv.Itoa(row) + ":" + strconv.Itoa(col)
}

// span is a half-open index range.
type span struct {
	start int
	end   int
}

// Each cell is drawn as " value │".
const cellPadding = 3

// View renders the grid, with the delete confirmation on top when open.
func (m Model) View() string {
	view := m.renderGrid()
	if m.confirm != nil {
		return m.confirm.Overlay(view)
	}
	return view
}

func (m Model) renderGrid() string {
	widths := m.columnWidths()
	rows, cols := m.visibleRows(), m.visibleColsFor(widths)

	lines := make([]string, 0, rows.end-rows.start+1)
	if m.cfg.ShowControls {
		lines = append(lines, m.renderColumnControls(widths, cols))
	}
	for r := rows.start; r < rows.end; r++ {
		lines = append(lines, m.renderRow(r, widths, cols))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderColumnControls(widths []int, cols span) string {
	l := m.cfg.Labels
	gutter := m.gutterWidth()

	var b strings.Builder
	b.WriteString(zone.Mark(m.zoneID+zoneDeleteAll, styles.ControlDeleteStyle.Render(l.DeleteAll)))
	b.WriteString(strings.Repeat(" ", max(0, gutter-styles.DisplayWidth(l.DeleteAll))))
	b.WriteString(" ")

	controlsWidth := m.columnControlsWidth()
	for c := cols.start; c < cols.end; c++ {
		controls := zone.Mark(m.zoneID+controlZone(zoneAddColBefore, c), styles.ControlAddStyle.Render(l.AddColumnBefore)) +
			" " + zone.Mark(m.zoneID+controlZone(zoneDeleteCol, c), styles.ControlDeleteStyle.Render(l.DeleteColumn)) +
			" " + zone.Mark(m.zoneID+controlZone(zoneAddColAfter, c), styles.ControlAddStyle.Render(l.AddColumnAfter))
		slot := widths[c] + cellPadding
		left := max(0, (slot-controlsWidth)/2)
		right := max(0, slot-controlsWidth-left)
		b.WriteString(strings.Repeat(" ", left))
		b.WriteString(controls)
		b.WriteString(strings.Repeat(" ", right))
	}
	return b.String()
}

func (m Model) renderRow(r int, widths []int, cols span) string {
	var b strings.Builder
	if m.cfg.ShowControls {
		l := m.cfg.Labels
		b.WriteString(zone.Mark(m.zoneID+controlZone(zoneAddRowBefore, r), styles.ControlAddStyle.Render(l.AddRowBefore)))
		b.WriteString(" ")
		b.WriteString(zone.Mark(m.zoneID+controlZone(zoneDeleteRow, r), styles.ControlDeleteStyle.Render(l.DeleteRow)))
		b.WriteString(" ")
		b.WriteString(zone.Mark(m.zoneID+controlZone(zoneAddRowAfter, r), styles.ControlAddStyle.Render(l.AddRowAfter)))
		b.WriteString(strings.Repeat(" ", max(0, m.gutterWidth()-m.rowControlsWidth())))
	}

	sep := styles.GridLineStyle.Render("│")
	b.WriteString(sep)
	for c := cols.start; c < cols.end; c++ {
		b.WriteString(zone.Mark(m.zoneID+cellZone(r, c), " "+m.renderCell(r, c, widths[c])+" "))
		b.WriteString(sep)
	}
	return b.String()
}

func (m Model) renderCell(r, c, width int) string {
	if r == m.cursor.Row && c == m.cursor.Col {
		view := ansi.Truncate(m.input.View(), width, "")
		pad := max(0, width-ansi.StringWidth(view))
		return view + styles.CursorCellStyle.Render(strings.Repeat(" ", pad))
	}
	value, _ := m.sheet.Cell(r, c)
	return styles.CellStyle.Render(styles.FitCell(value, width))
}

// columnWidths returns the content width of every column: its widest value,
// capped by MaxCellWidth, and never narrower than the column controls.
func (m Model) columnWidths() []int {
	widths := make([]int, m.sheet.Cols())
	for c := range widths {
		widths[c] = m.columnWidth(c)
	}
	return widths
}

func (m Model) columnWidth(c int) int {
	w := 1
	for r := 0; r < m.sheet.Rows(); r++ {
		value, _ := m.sheet.Cell(r, c)
		w = max(w, styles.DisplayWidth(value))
	}
	if m.cfg.MaxCellWidth > 0 {
		w = min(w, m.cfg.MaxCellWidth)
	}
	if m.cfg.ShowControls {
		w = max(w, m.columnControlsWidth()-cellPadding+1)
	}
	return w
}

func (m Model) rowControlsWidth() int {
	l := m.cfg.Labels
	return styles.DisplayWidth(l.AddRowBefore) + 1 + styles.DisplayWidth(l.DeleteRow) + 1 + styles.DisplayWidth(l.AddRowAfter)
}

func (m Model) columnControlsWidth() int {
	l := m.cfg.Labels
	return styles.DisplayWidth(l.AddColumnBefore) + 1 + styles.DisplayWidth(l.DeleteColumn) + 1 + styles.DisplayWidth(l.AddColumnAfter)
}

// gutterWidth is the width left of the grid's first border.
func (m Model) gutterWidth() int {
	if !m.cfg.ShowControls {
		return 0
	}
	return max(m.rowControlsWidth(), styles.DisplayWidth(m.cfg.Labels.DeleteAll))
}

// rowCapacity is how many rows fit below the column controls.
func (m Model) rowCapacity() int {
	if m.height <= 0 {
		return math.MaxInt
	}
	header := 0
	if m.cfg.ShowControls {
		header = 1
	}
	return max(1, m.height-header)
}

func (m Model) visibleRows() span {
	n := m.sheet.Rows()
	start := max(0, min(m.rowOffset, n-1))
	capacity := m.rowCapacity()
	if capacity >= n-start {
		return span{start: start, end: n}
	}
	return span{start: start, end: start + capacity}
}

func (m Model) visibleCols() span {
	return m.visibleColsFor(m.columnWidths())
}

// visibleColsFor returns the columns from colOffset that fit the width.
// At least one column is always visible.
func (m Model) visibleColsFor(widths []int) span {
	start := max(0, min(m.colOffset, len(widths)-1))
	used := m.gutterWidth() + 1
	end := start
	for c := start; c < len(widths); c++ {
		w := widths[c] + cellPadding
		if c > start && m.width > 0 && used+w > m.width {
			break
		}
		used += w
		end = c + 1
	}
	return span{start: start, end: end}
}

// scrollToCursor adjusts the offsets so the cursor cell is on screen and
// sizes the input to the cursor column.
func (m *Model) scrollToCursor() {
	capacity := m.rowCapacity()
	switch {
	case m.cursor.Row < m.rowOffset:
		m.rowOffset = m.cursor.Row
	case m.cursor.Row-m.rowOffset >= capacity:
		m.rowOffset = m.cursor.Row - capacity + 1
	}

	widths := m.columnWidths()
	if m.cursor.Col < m.colOffset {
		m.colOffset = m.cursor.Col
	}
	for m.colOffset < m.cursor.Col && m.visibleColsFor(widths).end <= m.cursor.Col {
		m.colOffset++
	}

	if m.cursor.Col < len(widths) {
		m.input.Width = max(1, widths[m.cursor.Col]-1)
	}
}
