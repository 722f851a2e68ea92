// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"} // Cell values
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Status bar, labels
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Help descriptions

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#4A4A4A"} // Grid lines

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Cursor cell
	CursorCellBgColor = lipgloss.AdaptiveColor{Light: "#D6EAF8", Dark: "#1A5276"}
	CursorCellFgColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	// Button colors
	ButtonTextColor             = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor        = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonPrimaryFocusBgColor   = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}
	ButtonSecondaryBgColor      = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#2D3436"}
	ButtonSecondaryFocusBgColor = lipgloss.AdaptiveColor{Light: "#636E72", Dark: "#636E72"}
	ButtonDangerBgColor         = lipgloss.AdaptiveColor{Light: "#922B21", Dark: "#922B21"}
	ButtonDangerFocusBgColor    = lipgloss.AdaptiveColor{Light: "#E74C3C", Dark: "#E74C3C"}

	// Control panel (row/column add and delete buttons)
	ControlAddColor    = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}
	ControlDeleteColor = lipgloss.AdaptiveColor{Light: "#922B21", Dark: "#FF8787"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Grid
	CellStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor)

	CursorCellStyle = lipgloss.NewStyle().
			Foreground(CursorCellFgColor).
			Background(CursorCellBgColor)

	GridLineStyle = lipgloss.NewStyle().
			Foreground(BorderDefaultColor)

	ControlAddStyle = lipgloss.NewStyle().
			Foreground(ControlAddColor)

	ControlDeleteStyle = lipgloss.NewStyle().
				Foreground(ControlDeleteColor)

	// Buttons
	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonPrimaryFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	SecondaryButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonSecondaryBgColor)

	SecondaryButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonSecondaryFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	DangerButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonDangerBgColor)

	DangerButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonDangerFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusDirtyStyle = lipgloss.NewStyle().
				Foreground(StatusWarningColor).
				Bold(true)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)
