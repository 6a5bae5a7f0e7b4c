package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/keymap"
	"github.com/johan-st/sqlpane/internal/state"
)

// noticeTTL is how long a notice stays in the status line.
const noticeTTL = 5 * time.Second

// chrome tracks the status line and the help overlay.
type chrome struct {
	state    *state.AppState
	keys     func() *keymap.Map
	user     string
	level    access.Level
	help     help.Model
	showHelp bool

	notice    string
	noticeErr bool
	noticeAt  time.Time
	now       func() time.Time
}

func newChrome(st *state.AppState, keys func() *keymap.Map, user string, level access.Level) *chrome {
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = helpKeyStyle
	h.Styles.ShortDesc = helpDescStyle
	h.Styles.FullKey = helpKeyStyle
	h.Styles.FullDesc = helpDescStyle
	return &chrome{
		state: st,
		keys:  keys,
		user:  user,
		level: level,
		help:  h,
		now:   time.Now,
	}
}

func (c *chrome) Init() dispatch.Result { return dispatch.Result{} }

func (c *chrome) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.Notice:
		c.setNotice(a.Text, false)
	case action.Error:
		c.setNotice(a.Message, true)
	case action.Help:
		c.showHelp = !c.showHelp
	case action.FocusChange, action.CycleFocus:
		c.showHelp = false
	case action.Resume:
		return dispatch.Emit(action.Render{}), nil
	case action.Tick:
		if c.notice != "" && c.now().Sub(c.noticeAt) > noticeTTL {
			c.notice = ""
		}
	}
	return dispatch.Result{}, nil
}

func (c *chrome) setNotice(text string, isErr bool) {
	c.notice = text
	c.noticeErr = isErr
	c.noticeAt = c.now()
}

// statusHeight is the number of lines below the panes.
const statusHeight = 2

// view renders the hint line and the status bar.
func (c *chrome) view(width int) string {
	snap := c.state.Snapshot()

	var hint string
	switch {
	case c.notice != "" && c.noticeErr:
		hint = errorStyle.Render(c.notice)
	case c.notice != "":
		hint = successStyle.Render(c.notice)
	default:
		c.help.Width = width
		hint = c.help.ShortHelpView(helpKeys{keys: c.keys(), region: snap.Focus}.ShortHelp())
	}
	hint = lipgloss.NewStyle().MaxWidth(width).Render(" " + hint)

	return hint + "\n" + c.statusBar(snap, width)
}

func (c *chrome) statusBar(snap state.Snapshot, width int) string {
	left := []string{
		titleStyle.Render("sqlpane"),
		dimItemStyle.Render(c.user),
	}

	var right []string
	right = append(right, statusKeyStyle.Render(snap.Connection))
	right = append(right, statusValueStyle.Render("› "+snap.Focus.String()))
	switch {
	case snap.Running != 0:
		right = append(right, dimItemStyle.Render("| running"))
	case snap.Last.Err != "":
		right = append(right, errorStyle.Render("| failed"))
	case snap.Last.Query != "":
		right = append(right, dimItemStyle.Render(fmt.Sprintf("| %s rows in %s",
			humanize.Comma(int64(snap.Last.Rows)), snap.Last.Duration.Round(time.Millisecond))))
	}
	right = append(right, accessBadge(c.level))
	right = append(right, dimItemStyle.Render("| f1:help"))

	leftContent := strings.Join(left, " ")
	rightContent := strings.Join(right, " ")
	padding := width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent) - 2
	if padding < 1 {
		padding = 1
	}
	content := leftContent + strings.Repeat(" ", padding) + rightContent
	content = lipgloss.NewStyle().MaxWidth(max(width-2, 0)).Render(content)
	return statusBarStyle.Width(width).Render(content)
}

// helpView renders the help overlay centered in width x height.
func (c *chrome) helpView(width, height int) string {
	focus := c.state.Focus()
	keys := helpKeys{keys: c.keys(), region: focus}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Help"))
	b.WriteString(dimItemStyle.Render(" · " + focus.String()))
	b.WriteString("\n\n")
	c.help.Width = max(width-8, 20)
	b.WriteString(c.help.FullHelpView(keys.FullHelp()))
	if pk := paneKeys[focus]; len(pk) > 0 {
		b.WriteString("\n\n")
		b.WriteString(c.help.FullHelpView([][]key.Binding{pk}))
	}
	b.WriteString("\n\n")
	b.WriteString(dimItemStyle.Render("Press f1 to close"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}
