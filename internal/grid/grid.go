// Package grid holds the rectangular matrix of string cells behind a sheet.
//
// A Grid is never smaller than 1x1 and every row always has the same number
// of cells. Structural edits clamp their index; deleting the last remaining
// row or column is refused. Direct cell access is strict and reports
// ErrOutOfRange instead of clamping.
package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a cell address does not exist.
var ErrOutOfRange = errors.New("cell address out of range")

// Grid is an ordered, mutable matrix of string cells.
type Grid struct {
	rows [][]string
}

// NewEmpty returns a 1x1 grid holding one empty cell.
func NewEmpty() *Grid {
	return &Grid{rows: [][]string{{""}}}
}

// New copies rows into a grid, padding short rows to the widest one.
// Empty input yields a 1x1 grid.
func New(rows [][]string) *Grid {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if len(rows) == 0 || width == 0 {
		return NewEmpty()
	}

	g := &Grid{rows: make([][]string, len(rows))}
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		g.rows[i] = cells
	}
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.rows)
}

// Cols returns the number of cells in every row.
func (g *Grid) Cols() int {
	return len(g.rows[0])
}

// InsertRow inserts an empty row at index, clamped to [0, Rows()].
// It returns the index actually used.
func (g *Grid) InsertRow(index int) int {
	index = clamp(index, 0, len(g.rows))
	width := 1
	if len(g.rows) > 0 {
		width = len(g.rows[0])
	}

	g.rows = append(g.rows, nil)
	copy(g.rows[index+1:], g.rows[index:])
	g.rows[index] = make([]string, width)
	return index
}

// DeleteRow removes the row at index, clamped to an existing row.
// It reports false without mutating when only one row remains.
func (g *Grid) DeleteRow(index int) bool {
	if len(g.rows) <= 1 {
		return false
	}
	index = clamp(index, 0, len(g.rows)-1)
	g.rows = append(g.rows[:index], g.rows[index+1:]...)
	return true
}

// InsertColumn inserts an empty cell at index in every row, clamped to [0, Cols()].
// It returns the index actually used.
func (g *Grid) InsertColumn(index int) int {
	index = clamp(index, 0, g.Cols())
	for r, row := range g.rows {
		row = append(row, "")
		copy(row[index+1:], row[index:])
		row[index] = ""
		g.rows[r] = row
	}
	return index
}

// DeleteColumn removes the cell at index from every row, clamped to an
// existing column. It reports false without mutating when only one column remains.
func (g *Grid) DeleteColumn(index int) bool {
	if g.Cols() <= 1 {
		return false
	}
	index = clamp(index, 0, g.Cols()-1)
	for r, row := range g.rows {
		g.rows[r] = append(row[:index], row[index+1:]...)
	}
	return true
}

// Cell returns the value at (row, col).
func (g *Grid) Cell(row, col int) (string, error) {
	if err := g.check(row, col); err != nil {
		return "", err
	}
	return g.rows[row][col], nil
}

// SetCell overwrites the value at (row, col).
func (g *Grid) SetCell(row, col int, value string) error {
	if err := g.check(row, col); err != nil {
		return err
	}
	g.rows[row][col] = value
	return nil
}

func (g *Grid) check(row, col int) error {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= g.Cols() {
		return fmt.Errorf("%w: (%d, %d) in %dx%d grid", ErrOutOfRange, row, col, len(g.rows), g.Cols())
	}
	return nil
}

// ToRows returns a deep copy of the cells.
func (g *Grid) ToRows() [][]string {
	out := make([][]string, len(g.rows))
	for i, row := range g.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
