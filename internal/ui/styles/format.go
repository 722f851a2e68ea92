package styles

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Control pictures stand in for characters a single-line cell cannot show.
const (
	LineFeedSymbol       = "␤"
	CarriageReturnSymbol = "␍"
	TabSymbol            = "␉"
)

var printableReplacer = strings.NewReplacer(
	"\n", LineFeedSymbol,
	"\r", CarriageReturnSymbol,
	"\t", TabSymbol,
)

var (
	pictures = map[rune]rune{'\n': '␤', '\r': '␍', '\t': '␉'}
	controls = map[rune]rune{'␤': '\n', '␍': '\r', '␉': '\t'}
)

// Printable returns s with line breaks and tabs replaced by control
// pictures so it renders on one line. It is lossy when s already holds a
// control picture; use Escape for values that are edited.
func Printable(s string) string {
	return printableReplacer.Replace(s)
}

// Escape is Printable made reversible. A control picture already in s is
// written with a backslash before it, and backslashes directly before a
// picture are doubled, so Unescape(Escape(s)) == s. Other backslashes are
// left alone.
func Escape(s string) string {
	var b strings.Builder
	slashes := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\\' {
			slashes++
			i += size
			continue
		}
		_, literal := controls[r]
		p, control := pictures[r]
		switch {
		case control:
			b.WriteString(strings.Repeat(`\`, 2*slashes))
			b.WriteRune(p)
		case literal:
			b.WriteString(strings.Repeat(`\`, 2*slashes+1))
			b.WriteString(s[i : i+size])
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
			b.WriteString(s[i : i+size])
		}
		slashes = 0
		i += size
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	return b.String()
}

// Unescape reverses Escape. A run of n backslashes before a control picture
// stands for n/2 backslashes, and the picture is literal when n is odd.
func Unescape(s string) string {
	var b strings.Builder
	slashes := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\\' {
			slashes++
			i += size
			continue
		}
		c, picture := controls[r]
		switch {
		case picture && slashes%2 == 1:
			b.WriteString(strings.Repeat(`\`, slashes/2))
			b.WriteString(s[i : i+size])
		case picture:
			b.WriteString(strings.Repeat(`\`, slashes/2))
			b.WriteRune(c)
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
			b.WriteString(s[i : i+size])
		}
		slashes = 0
		i += size
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	return b.String()
}

// DisplayWidth returns the number of terminal columns s occupies once made
// printable.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(Printable(s))
}

// FitCell truncates s to width columns with an ellipsis and pads it with
// spaces to exactly width columns.
func FitCell(s string, width int) string {
	if width < 1 {
		return ""
	}
	s = Printable(s)
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
