package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailmind/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorCyan    = lipgloss.AdaptiveColor{Dark: "#66D9E8", Light: "#0987A0"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DimmedStyle renders secondary or completed content.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// MutedStyle renders timestamps and metadata.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DraftBadgeStyle marks saved drafts.
var DraftBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta).
	Padding(0, 1)

// OverlayBannerStyle announces that AI search results replace the inbox.
var OverlayBannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorCyan).
	Padding(0, 1)

// UserMessageStyle and AssistantMessageStyle label transcript entries.
var (
	UserMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)
	AssistantMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorGreen)
)

// CategoryStyle returns a color-coded style for an email category.
func CategoryStyle(c model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch c {
	case model.CategoryImportant:
		return base.Foreground(ColorRed)
	case model.CategoryPersonal:
		return base.Foreground(ColorMagenta)
	case model.CategoryWork:
		return base.Foreground(ColorBlue)
	case model.CategoryMeeting:
		return base.Foreground(ColorOrange)
	case model.CategoryNewsletter:
		return base.Foreground(ColorCyan)
	case model.CategorySpam:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

// NoticeStyle returns the status bar style for a transient notice.
func NoticeStyle(isError bool) lipgloss.Style {
	if isError {
		return StatusBarStyle.Foreground(ColorRed).Bold(true)
	}
	return StatusBarStyle.Foreground(ColorGreen)
}
