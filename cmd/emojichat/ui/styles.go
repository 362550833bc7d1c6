// Package ui provides the visual styling for the emojichat terminal client.
// Colors come in a light and a dark palette; the theme is picked from config
// or detected from the terminal.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#f9fafb") // gray-50
	LightForeground = lipgloss.Color("#111827") // gray-900
	LightPrimary    = lipgloss.Color("#3b82f6") // blue-500, user bubbles
	LightAccent     = lipgloss.Color("#f59e0b") // amber-500
	LightSecondary  = lipgloss.Color("#f3f4f6") // gray-100, bot bubbles
	LightMuted      = lipgloss.Color("#6b7280") // gray-500
	LightBorder     = lipgloss.Color("#d1d5db") // gray-300

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#111827")
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#60a5fa") // blue-400
	DarkAccent     = lipgloss.Color("#fbbf24") // amber-400
	DarkSecondary  = lipgloss.Color("#1f2937") // gray-800
	DarkMuted      = lipgloss.Color("#9ca3af") // gray-400
	DarkBorder     = lipgloss.Color("#374151") // gray-700

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444") // red-500
	Success     = lipgloss.Color("#22c55e") // green-500
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
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
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme guesses the terminal background from COLORFGBG, falling back to
// EMOJICHAT_DARK_MODE and then light mode.
func DetectTheme() Theme {
	// Format is "foreground;background"; indices 0-6 and 8 are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
			return LightTheme()
		}
	}
	if os.Getenv("EMOJICHAT_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// ResolveTheme maps a ui.theme config value to a Theme. Unknown values and
// "auto" detect.
func ResolveTheme(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
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
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Messages
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	BotQuote   lipgloss.Style
	Emojis     lipgloss.Style
	Timestamp  lipgloss.Style
	Welcome    lipgloss.Style

	// Interactive
	Prompt             lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	SuggestionDisabled lipgloss.Style
	Checkbox           lipgloss.Style

	// Status
	ErrorBanner lipgloss.Style
	Healthy     lipgloss.Style
	Unhealthy   lipgloss.Style
	Spinner     lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	suggestion := lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		MarginRight(1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Primary).
			Padding(0, 1),

		BotBubble: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		BotQuote: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Emojis: lipgloss.NewStyle(),

		Timestamp: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Faint(true),

		Welcome: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Align(lipgloss.Center).
			MarginTop(1),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Suggestion: suggestion,

		SuggestionSelected: suggestion.
			BorderForeground(theme.Primary).
			Foreground(theme.Primary).
			Bold(true),

		SuggestionDisabled: suggestion.
			Foreground(theme.Muted).
			Faint(true),

		Checkbox: lipgloss.NewStyle().
			Foreground(theme.Muted),

		ErrorBanner: lipgloss.NewStyle().
			Foreground(Destructive).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Padding(0, 1),

		Healthy: lipgloss.NewStyle().
			Foreground(Success),

		Unhealthy: lipgloss.NewStyle().
			Foreground(Destructive),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}
