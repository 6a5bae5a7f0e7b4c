package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/export"
	"github.com/johan-st/sqlpane/internal/results"
	"github.com/johan-st/sqlpane/internal/viewport"
)

// dataPane shows the latest query result through the viewport engine.
type dataPane struct {
	engine  *viewport.Engine
	theme   results.Theme
	result  results.State
	latest  uint64 // id of the newest submitted query
	running bool
	spinner spinner.Spinner
	frame   int
}

func newDataPane() *dataPane {
	return &dataPane{
		engine:  viewport.NewEngine(),
		theme:   results.DefaultTheme(),
		spinner: spinner.MiniDot,
	}
}

func (d *dataPane) Region() action.Region { return action.RegionData }

func (d *dataPane) Init() dispatch.Result { return dispatch.Result{} }

// HandleKey does nothing: every data key is a binding.
func (d *dataPane) HandleKey(tea.KeyMsg, bool) (dispatch.Result, error) {
	return dispatch.Result{}, nil
}

func (d *dataPane) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.QueryStarted:
		d.latest = a.ID
		d.running = true
		d.frame = 0

	case action.QueryResult:
		if a.ID != d.latest {
			// superseded by a newer submission
			return dispatch.Result{}, nil
		}
		d.running = false
		d.result = results.Adapt(a.Grid, a.Err, d.theme)
		if d.result.Kind == results.HasResults {
			d.engine.SetContent(d.result.Content, d.result.Columns)
		} else {
			d.engine.Reset()
		}

	case action.Tick:
		if d.running {
			d.frame++
		}

	case action.Scroll:
		d.engine.Scroll(a.Direction)
	case action.ColumnStep:
		d.engine.StepColumn(a.Direction)
	case action.JumpRow:
		d.engine.JumpRow(a.Edge)
	case action.JumpColumn:
		d.engine.JumpColumn(a.Edge)

	case action.RequestCopyData:
		if d.result.Kind != results.HasResults {
			return dispatch.Emit(action.Notice{Text: "nothing to copy"}), nil
		}
		return dispatch.Emit(action.CopyData{Text: export.TabSeparated(d.result.Headers, d.result.Rows)}), nil

	case action.RequestExportData:
		if d.result.Kind != results.HasResults {
			return dispatch.Emit(action.Notice{Text: "nothing to export"}), nil
		}
		return dispatch.Emit(action.ExportRequest{
			Format:  action.FormatCSV,
			Headers: d.result.Headers,
			Rows:    d.result.Rows,
		}), nil
	}
	return dispatch.Result{}, nil
}

func (d *dataPane) title() string {
	if d.running {
		return "Data " + d.spinner.Frames[d.frame%len(d.spinner.Frames)] + " running"
	}
	switch d.result.Kind {
	case results.HasResults:
		rows := len(d.result.Rows)
		unit := "rows"
		if rows == 1 {
			unit = "row"
		}
		return fmt.Sprintf("Data · %s %s · %s", humanize.Comma(int64(rows)), unit, d.result.Duration.Round(time.Millisecond))
	case results.Error:
		return "Data · error"
	default:
		return "Data"
	}
}

func (d *dataPane) View(width, height int, focused bool) string {
	buf := d.render(width, height, focused)
	return buf.String()
}

// render draws the pane into a cell buffer.
func (d *dataPane) render(width, height int, focused bool) *viewport.Buffer {
	buf := viewport.NewBuffer(width, height)
	area := buf.Area()

	border, title := dataBorder, dataTitle
	if focused {
		border, title = dataFocusedBorder, dataFocusedTitle
	}
	viewport.Box(buf, area, lipgloss.RoundedBorder(), border, d.title(), title)

	inner := area.Inset(viewport.Chrome)
	switch d.result.Kind {
	case results.HasResults:
		d.engine.Render(buf, area)
		v, h := d.engine.Scrollbars()
		viewport.DrawScrollbars(buf, area, v, h, dataScrollbar)
	case results.NoResults:
		writeWrapped(buf, inner, d.result.Message, dataMessage)
	case results.Error:
		writeWrapped(buf, inner, d.result.Message, dataError)
	default:
		writeWrapped(buf, inner, "Run a query to see results here.", dataMessage)
	}
	return buf
}

// writeWrapped writes text into r, wrapping at the width of r.
func writeWrapped(buf *viewport.Buffer, r viewport.Rect, text string, st viewport.Style) {
	if r.Empty() {
		return
	}
	y := r.Y
	for _, para := range strings.Split(text, "\n") {
		for {
			if y >= r.Y+r.Height {
				return
			}
			line := runewidth.Truncate(para, r.Width, "")
			buf.SetString(r.X, y, line, st, r.Width)
			y++
			para = para[len(line):]
			if para == "" || line == "" {
				break
			}
		}
	}
}
