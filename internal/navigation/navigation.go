// Package navigation resolves keyboard movement over a sheet's logical
// (row, column) addresses. It never reads input devices; callers classify
// key events and pass the requested direction in.
package navigation

import "fmt"

// Direction is a requested cursor movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Address is a logical cell address.
type Address struct {
	Row int
	Col int
}

// Bounds reports the grid dimensions navigation must stay within.
type Bounds interface {
	Rows() int
	Cols() int
}

// Clamp moves a into the grid, e.g. after rows were deleted under the cursor.
func Clamp(b Bounds, a Address) Address {
	return Address{
		Row: max(0, min(a.Row, b.Rows()-1)),
		Col: max(0, min(a.Col, b.Cols()-1)),
	}
}

// ResolveVertical returns the cell above or below from. When that row does
// not exist, or dir is horizontal, it returns from and false. There is no
// wraparound.
func ResolveVertical(b Bounds, from Address, dir Direction) (Address, bool) {
	target := from
	switch dir {
	case Up:
		target.Row--
	case Down:
		target.Row++
	default:
		return from, false
	}
	if target.Row < 0 || target.Row >= b.Rows() {
		return from, false
	}
	return target, true
}

// ResolveHorizontal crosses into the neighbouring cell only when the text
// caret already sits on the matching edge: the start when moving left, the
// end when moving right. Otherwise it returns from and false, leaving the
// caret movement inside the cell to the editor. There is no wraparound.
func ResolveHorizontal(b Bounds, from Address, dir Direction, pos Position) (Address, bool) {
	target := from
	switch dir {
	case Left:
		if !pos.AtStart() {
			return from, false
		}
		target.Col--
	case Right:
		if !pos.AtEnd() {
			return from, false
		}
		target.Col++
	default:
		return from, false
	}
	if target.Col < 0 || target.Col >= b.Cols() {
		return from, false
	}
	return target, true
}

// RowInserter is the part of a sheet InsertRowOnEnter needs.
type RowInserter interface {
	AddRowBefore(rowIndex int) int
	AddRowAfter(rowIndex int) int
}

// InsertRowOnEnter handles the row-break key: it inserts a row after the
// current one, or before it when before is set (the modifier was held), and
// returns the address in the new row under the same column.
func InsertRowOnEnter(s RowInserter, from Address, before bool) Address {
	var row int
	if before {
		row = s.AddRowBefore(from.Row)
	} else {
		row = s.AddRowAfter(from.Row)
	}
	return Address{Row: row, Col: from.Col}
}
