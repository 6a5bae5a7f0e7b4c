package viewport

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Box draws a border around r using the given border set, with title in the
// top edge.
func Box(dst *Buffer, r Rect, border lipgloss.Border, st Style, title string, titleStyle Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1

	for x := r.X + 1; x < right; x++ {
		dst.SetCell(x, r.Y, Cell{Content: border.Top, Style: st})
		dst.SetCell(x, bottom, Cell{Content: border.Bottom, Style: st})
	}
	for y := r.Y + 1; y < bottom; y++ {
		dst.SetCell(r.X, y, Cell{Content: border.Left, Style: st})
		dst.SetCell(right, y, Cell{Content: border.Right, Style: st})
	}
	dst.SetCell(r.X, r.Y, Cell{Content: border.TopLeft, Style: st})
	dst.SetCell(right, r.Y, Cell{Content: border.TopRight, Style: st})
	dst.SetCell(r.X, bottom, Cell{Content: border.BottomLeft, Style: st})
	dst.SetCell(right, bottom, Cell{Content: border.BottomRight, Style: st})

	if title == "" || r.Width < 5 {
		return
	}
	title = runewidth.Truncate(" "+title+" ", r.Width-3, "…")
	dst.SetString(r.X+2, r.Y, title, titleStyle, r.Width-3)
}

// Scrollbar glyphs.
const (
	ThumbVertical   = "█"
	ThumbHorizontal = "▀"
)

// DrawScrollbars draws the thumbs of visible scrollbars over the right and
// bottom edges of r.
func DrawScrollbars(dst *Buffer, r Rect, vertical, horizontal Scrollbar, st Style) {
	inner := r.Inset(Chrome)
	if inner.Empty() {
		return
	}
	if vertical.Visible {
		y := inner.Y + thumb(vertical, inner.Height)
		dst.SetCell(r.X+r.Width-1, y, Cell{Content: ThumbVertical, Style: st})
	}
	if horizontal.Visible {
		x := inner.X + thumb(horizontal, inner.Width)
		dst.SetCell(x, r.Y+r.Height-1, Cell{Content: ThumbHorizontal, Style: st})
	}
}

// thumb maps the offset onto a track of n cells.
func thumb(s Scrollbar, n int) int {
	if s.Length <= 0 || n <= 1 {
		return 0
	}
	return s.Position * (n - 1) / s.Length
}
