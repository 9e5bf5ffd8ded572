// Package ui provides the visual styling and pages of the rollcall terminal
// picker, with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#101F38") // Dark Blue
	LightPrimary    = lipgloss.Color("#0284c7") // Sky
	LightAccent     = lipgloss.Color("#0369a1")
	LightMuted      = lipgloss.Color("#8a94a6")
	LightBorder     = lipgloss.Color("#d1d5db") // Gray 300

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#38bdf8")
	DarkAccent     = lipgloss.Color("#7dd3fc")
	DarkMuted      = lipgloss.Color("#6b7a90")
	DarkBorder     = lipgloss.Color("#2a3850")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#dc2626") // Red 600
	Success     = lipgloss.Color("#16a34a")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName resolves "light", "dark" or "auto".
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme guesses the terminal background from COLORFGBG and falls back
// to light mode.
func DetectTheme() Theme {
	// Format is usually "foreground;background"
	colorTerm := os.Getenv("COLORFGBG")
	if colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				// 0-6 and 8 (dark grey) are dark backgrounds
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// List
	GroupHeader  lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Cursor       lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner   lipgloss.Style
	Divider   lipgloss.Style
	Badge     lipgloss.Style
	FilterBox lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		GroupHeader: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Item: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		ItemSelected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			PaddingLeft(2).
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		FilterBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
