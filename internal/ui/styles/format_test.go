package styles

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPrintable(t *testing.T) {
	require.Equal(t, "a␤b", Printable("a\nb"))
	require.Equal(t, "a␍␤b", Printable("a\r\nb"))
	require.Equal(t, "a␉b", Printable("a\tb"))
	require.Equal(t, "plain", Printable("plain"))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "plain", "plain"},
		{"controls", "a\r\nb\tc", "a␍␤b␉c"},
		{"literal picture", "a␤b", `a\␤b`},
		{"literal next to control", "␤\n", `\␤␤`},
		{"backslash before control", "C:\\\n", `C:\\␤`},
		{"backslash before literal", `x\␉`, `x\\\␉`},
		{"other backslashes untouched", `C:\dir\`, `C:\dir\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Escape(tt.in))
			require.Equal(t, tt.in, Unescape(tt.want))
		})
	}
}

func TestUnescape_TypedPictures(t *testing.T) {
	require.Equal(t, "a\nb", Unescape("a␤b"))
	require.Equal(t, "a␤b", Unescape(`a\␤b`))
	require.Equal(t, "a\\\nb", Unescape(`a\\␤b`))
}

func TestEscape_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		alphabet := []rune{'a', ' ', '\\', '\n', '\r', '\t', '␤', '␍', '␉', '日'}
		s := string(rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 20).Draw(t, "s"))

		escaped := Escape(s)
		if strings.ContainsAny(escaped, "\n\r\t") {
			t.Fatalf("escaped %q still holds control characters: %q", s, escaped)
		}
		if got := Unescape(escaped); got != s {
			t.Fatalf("Unescape(Escape(%q)) = %q", s, got)
		}
	})
}

func TestDisplayWidth(t *testing.T) {
	require.Equal(t, 3, DisplayWidth("abc"))
	require.Equal(t, 4, DisplayWidth("日本"))
	require.Equal(t, 3, DisplayWidth("a\nb"))
}

func TestFitCell(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected string
	}{
		{"pads short", "ab", 4, "ab  "},
		{"exact", "abcd", 4, "abcd"},
		{"truncates", "abcdef", 4, "abc…"},
		{"zero width", "abc", 0, ""},
		{"empty cell", "", 3, "   "},
		{"newline shown", "a\nb", 3, "a␤b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitCell(tt.in, tt.width)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.width, runewidth.StringWidth(got))
		})
	}
}

func TestFitCell_WideRunes(t *testing.T) {
	got := FitCell("日本語", 5)
	require.Equal(t, 5, runewidth.StringWidth(got))
}
