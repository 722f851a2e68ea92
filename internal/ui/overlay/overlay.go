// Package overlay renders modal content on top of a background view without
// clearing the screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// BottomRight anchors to the lower right corner, inset by PadX and PadY.
	BottomRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int // viewport width
	Height   int // viewport height
	Position Position
	PadX     int // inset from the right edge (BottomRight only)
	PadY     int // inset from the top or bottom edge
}

// Place renders fg on top of bg. Both may contain ANSI styling; the
// background on either side of the foreground keeps its own.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))
	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	end := x + ansi.StringWidth(fg)
	var right string
	if end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func origin(cfg Config, fgWidth, fgHeight int) (x, y int) {
	x = (cfg.Width - fgWidth) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - fgHeight - cfg.PadY
	case BottomRight:
		x = cfg.Width - fgWidth - cfg.PadX
		y = cfg.Height - fgHeight - cfg.PadY
	default:
		y = (cfg.Height - fgHeight) / 2
	}
	return max(x, 0), max(y, 0)
}
