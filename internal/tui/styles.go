package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/viewport"
)

// Colors - using a professional dark theme
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	bgColor        = lipgloss.Color("#1F2937") // Dark gray
)

// Pane styles
var (
	borderStyle        = lipgloss.NewStyle().Foreground(mutedColor)
	focusedBorderStyle = lipgloss.NewStyle().Foreground(primaryColor)

	borderTitleStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	focusedBorderTitleStyle = lipgloss.NewStyle().
				Foreground(textColor).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)
)

// List item styles
var (
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(textColor)

	dimItemStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Status bar styles
var (
	statusBarStyle = lipgloss.NewStyle().
			Background(bgColor).
			Foreground(textColor).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(textColor)
)

// Access level badges
var (
	adminBadge = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1).
			Bold(true)

	readWriteBadge = lipgloss.NewStyle().
			Background(secondaryColor).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	readOnlyBadge = lipgloss.NewStyle().
			Background(accentColor).
			Foreground(lipgloss.Color("#000")).
			Padding(0, 1)

	noBadge = lipgloss.NewStyle().
		Background(errorColor).
		Foreground(lipgloss.Color("#FFF")).
		Padding(0, 1)
)

// Query editor styles
var (
	queryPromptStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)
)

// Help styles
var (
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Error styles
var (
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)

// Title style
var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(primaryColor)

// Cell styles of the data pane, which draws into a cell buffer.
var (
	dataBorder        = viewport.Style{Fg: mutedColor}
	dataFocusedBorder = viewport.Style{Fg: primaryColor}
	dataTitle         = viewport.Style{Fg: mutedColor}
	dataFocusedTitle  = viewport.Style{Fg: textColor, Bold: true}
	dataScrollbar     = viewport.Style{Fg: accentColor}
	dataMessage       = viewport.Style{Fg: mutedColor}
	dataError         = viewport.Style{Fg: errorColor, Bold: true}
)

func accessBadge(level access.Level) string {
	switch level {
	case access.Admin:
		return adminBadge.Render("ADMIN")
	case access.ReadWrite:
		return readWriteBadge.Render("RW")
	case access.ReadOnly:
		return readOnlyBadge.Render("RO")
	default:
		return noBadge.Render("NO")
	}
}

// buildBorderTitle builds a top border line with an embedded title.
// width is the total width including border characters.
func buildBorderTitle(width int, title string, focused bool) string {
	border := lipgloss.RoundedBorder()
	bs, ts := borderStyle, borderTitleStyle
	if focused {
		bs, ts = focusedBorderStyle, focusedBorderTitleStyle
	}

	// ╭─ Title ───────╮
	titleRendered := ts.Render(title)
	remaining := width - 5 - lipgloss.Width(titleRendered)
	if remaining < 0 {
		return bs.Render(border.TopLeft + strings.Repeat(border.Top, max(width-2, 0)) + border.TopRight)
	}

	var b strings.Builder
	b.WriteString(bs.Render(border.TopLeft + border.Top))
	b.WriteString(" ")
	b.WriteString(titleRendered)
	b.WriteString(" ")
	b.WriteString(bs.Render(strings.Repeat(border.Top, remaining) + border.TopRight))
	return b.String()
}

// renderPane renders content in a pane with a title in the top border.
// Content is padded or cut to fit.
func renderPane(content string, width, height int, title string, focused bool) string {
	if width < 2 || height < 2 {
		return ""
	}
	border := lipgloss.RoundedBorder()
	bs := borderStyle
	if focused {
		bs = focusedBorderStyle
	}

	innerWidth := width - 2
	innerHeight := height - 2

	lines := strings.Split(content, "\n")
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	lines = lines[:innerHeight]

	var b strings.Builder
	b.WriteString(buildBorderTitle(width, title, focused))
	b.WriteString("\n")

	clip := lipgloss.NewStyle().MaxWidth(innerWidth)
	for _, l := range lines {
		l = clip.Render(l)
		if w := lipgloss.Width(l); w < innerWidth {
			l += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString(bs.Render(border.Left))
		b.WriteString(l)
		b.WriteString(bs.Render(border.Right))
		b.WriteString("\n")
	}

	b.WriteString(bs.Render(border.BottomLeft + strings.Repeat(border.Bottom, innerWidth) + border.BottomRight))
	return b.String()
}
