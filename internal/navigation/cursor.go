package navigation

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Position classifies where the caret sits inside a cell's text.
// An empty cell is at both the start and the end.
type Position uint8

const (
	PositionMiddle Position = 0
	PositionStart  Position = 1 << 0
	PositionEnd    Position = 1 << 1
)

// AtStart reports whether moving left may leave the cell.
func (p Position) AtStart() bool { return p&PositionStart != 0 }

// AtEnd reports whether moving right may leave the cell.
func (p Position) AtEnd() bool { return p&PositionEnd != 0 }

func (p Position) String() string {
	switch p {
	case PositionMiddle:
		return "middle"
	case PositionStart:
		return "start"
	case PositionEnd:
		return "end"
	case PositionStart | PositionEnd:
		return "start|end"
	default:
		return "invalid"
	}
}

// Selection is the caret or selected range in a cell, measured in grapheme
// clusters. Anchor == Focus is a collapsed caret.
type Selection struct {
	Anchor int
	Focus  int
}

// Caret returns a collapsed selection at offset.
func Caret(offset int) Selection {
	return Selection{Anchor: offset, Focus: offset}
}

// Collapsed reports whether the selection is a plain caret.
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Focus
}

// ClassifyCursor reports where sel sits within text. A non-empty selection
// is always PositionMiddle so the editor collapses it before any cell change.
func ClassifyCursor(text string, sel Selection) Position {
	if !sel.Collapsed() {
		return PositionMiddle
	}
	n := uniseg.GraphemeClusterCount(text)
	offset := max(0, min(sel.Focus, n))

	var p Position
	if offset == 0 {
		p |= PositionStart
	}
	if offset == n {
		p |= PositionEnd
	}
	return p
}

// LandingCaret returns the grapheme offset the caret should take in text
// after arriving by moving dir: the end for up, down and left, the start for right.
func LandingCaret(dir Direction, text string) int {
	if dir == Right {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// RuneToGrapheme converts a rune offset, as reported by text inputs, to a
// grapheme offset. An offset inside a cluster rounds up past it.
func RuneToGrapheme(text string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	idx, runes := 0, 0
	state := -1
	for len(text) > 0 && runes < runeOffset {
		cluster, rest, _, newState := uniseg.StepString(text, state)
		runes += utf8.RuneCountInString(cluster)
		idx++
		text = rest
		state = newState
	}
	return idx
}

// GraphemeToRune converts a grapheme offset back to a rune offset.
func GraphemeToRune(text string, graphemeOffset int) int {
	runes := 0
	state := -1
	for idx := 0; idx < graphemeOffset && len(text) > 0; idx++ {
		cluster, rest, _, newState := uniseg.StepString(text, state)
		runes += utf8.RuneCountInString(cluster)
		text = rest
		state = newState
	}
	return runes
}
