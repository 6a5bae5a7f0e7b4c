// Package results turns query results into the content shown in the data
// viewport.
package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/viewport"
)

// Kind is the state of the data region.
type Kind int

const (
	Blank Kind = iota
	NoResults
	HasResults
	Error
)

func (k Kind) String() string {
	switch k {
	case NoResults:
		return "no results"
	case HasResults:
		return "results"
	case Error:
		return "error"
	default:
		return "blank"
	}
}

// Column widths are measured from the content and clamped.
const (
	MinColumnWidth = 4
	MaxColumnWidth = 40
	ColumnGap      = 1
	// HeaderLines is name, type and separator.
	HeaderLines = 3
)

// Theme styles the rendered grid.
type Theme struct {
	Name      viewport.Style
	Type      viewport.Style
	Separator viewport.Style
	Cell      viewport.Style
	Null      viewport.Style
}

// DefaultTheme returns the theme used by the UI.
func DefaultTheme() Theme {
	return Theme{
		Name:      viewport.Style{Fg: lipgloss.Color("#7D56F4"), Bold: true},
		Type:      viewport.Style{Fg: lipgloss.Color("#626262"), Faint: true},
		Separator: viewport.Style{Fg: lipgloss.Color("#444444")},
		Cell:      viewport.Style{},
		Null:      viewport.Style{Fg: lipgloss.Color("#626262"), Faint: true},
	}
}

// State is what the data region shows.
type State struct {
	Kind Kind
	// Content is the full rendered grid, set for HasResults only.
	Content *viewport.Buffer
	// Columns holds the x offset of every column in Content.
	Columns  []int
	Headers  []string
	Rows     [][]string
	Message  string
	Duration time.Duration
}

// Adapt converts a finished query into a State. Errors become Error with
// the error text; results without rows become NoResults.
func Adapt(grid *database.Grid, err error, theme Theme) State {
	if err != nil {
		msg := err.Error()
		if errors.Is(err, database.ErrEmptyQuery) {
			msg = "empty query"
		}
		return State{Kind: Error, Message: msg}
	}
	if grid == nil {
		return State{Kind: Blank}
	}

	if !grid.IsSelect {
		return State{
			Kind:     NoResults,
			Message:  fmt.Sprintf("%s rows affected", humanize.Comma(grid.RowsAffected)),
			Duration: grid.Duration,
		}
	}
	if len(grid.Rows) == 0 {
		return State{
			Kind:     NoResults,
			Message:  "no rows",
			Headers:  grid.HeaderNames(),
			Duration: grid.Duration,
		}
	}

	rows := grid.FormatRows()
	content, columns := Layout(grid.Headers, rows, nulls(grid), theme)
	return State{
		Kind:     HasResults,
		Content:  content,
		Columns:  columns,
		Headers:  grid.HeaderNames(),
		Rows:     rows,
		Duration: grid.Duration,
	}
}

func nulls(grid *database.Grid) [][]bool {
	out := make([][]bool, len(grid.Rows))
	for i, row := range grid.Rows {
		out[i] = make([]bool, len(row))
		for j, v := range row {
			out[i][j] = v == nil
		}
	}
	return out
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// ColumnWidths measures every column: the widest of name, type and cells
// as drawn on one line, clamped to [MinColumnWidth, MaxColumnWidth].
func ColumnWidths(headers []database.Header, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(flatWidth(h.Name), flatWidth(h.Type))
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], flatWidth(c))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], MinColumnWidth), MaxColumnWidth)
	}
	return widths
}

func flatWidth(s string) int {
	return runewidth.StringWidth(flatten.Replace(s))
}

// Layout renders headers and rows into a buffer sized to hold all of them:
// HeaderLines + one line per row, and the sum of column widths plus gaps.
// nulls marks cells drawn in the null style and may be nil.
func Layout(headers []database.Header, rows [][]string, nulls [][]bool, theme Theme) (*viewport.Buffer, []int) {
	widths := ColumnWidths(headers, rows)

	columns := make([]int, len(widths))
	width := 0
	for i, w := range widths {
		columns[i] = width
		width += w + ColumnGap
	}

	buf := viewport.NewBuffer(width, HeaderLines+len(rows))
	for i, h := range headers {
		x, w := columns[i], widths[i]
		buf.SetString(x, 0, fit(h.Name, w), theme.Name, w)
		buf.SetString(x, 1, fit(h.Type, w), theme.Type, w)
	}
	buf.Fill(viewport.Rect{X: 0, Y: 2, Width: width, Height: 1}, viewport.Cell{Content: "─", Style: theme.Separator})

	for r, row := range rows {
		y := HeaderLines + r
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			st := theme.Cell
			if nulls != nil && r < len(nulls) && i < len(nulls[r]) && nulls[r][i] {
				st = theme.Null
			}
			buf.SetString(columns[i], y, fit(c, widths[i]), st, widths[i])
		}
	}
	return buf, columns
}

// fit flattens s to one line and truncates it to w cells.
func fit(s string, w int) string {
	s = flatten.Replace(s)
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}
