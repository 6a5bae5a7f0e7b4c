package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/history"
	"github.com/johan-st/sqlpane/internal/state"
)

// executor runs query text on the session's connection.
type executor func(ctx context.Context, query string, raw bool) (*database.Grid, error)

func managerExecutor(m *database.Manager, conn string, user *access.UserInfo) executor {
	return func(ctx context.Context, query string, raw bool) (*database.Grid, error) {
		if raw {
			return m.ExecuteRaw(ctx, conn, user, query)
		}
		return m.Execute(ctx, conn, user, query)
	}
}

// queryRunner executes submitted queries off the loop and records them in
// the history store.
type queryRunner struct {
	ctx        context.Context
	exec       executor
	state      *state.AppState
	history    *history.Store
	session    *history.Session
	connection string

	nextID uint64
	cancel context.CancelFunc
}

func (q *queryRunner) Init() dispatch.Result { return dispatch.Result{} }

func (q *queryRunner) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.SubmitQuery:
		return q.submit(a), nil

	case action.AbortQuery:
		if q.cancel == nil {
			return dispatch.Result{}, nil
		}
		q.cancel()
		return dispatch.Emit(action.Notice{Text: "query aborted"}), nil

	case action.QueryResult:
		if a.ID != q.nextID {
			return dispatch.Result{}, nil
		}
		return q.finish(a), nil
	}
	return dispatch.Result{}, nil
}

func (q *queryRunner) submit(a action.SubmitQuery) dispatch.Result {
	text := strings.Join(a.Lines, "\n")
	if !a.Confirmed && !a.BypassParser {
		// the editor asks first
		if need, _ := database.NeedsConfirmation(text); need {
			return dispatch.Result{}
		}
	}

	if q.cancel != nil {
		q.cancel()
	}
	q.nextID++
	id := q.nextID
	ctx, cancel := context.WithCancel(q.ctx)
	q.cancel = cancel
	q.state.Update(func(s *state.Snapshot) { s.Running = id })

	task := func(context.Context) action.Action {
		defer cancel()
		start := time.Now()
		grid, err := q.exec(ctx, text, a.BypassParser)
		return action.QueryResult{ID: id, Query: text, Grid: grid, Err: err, Duration: time.Since(start)}
	}
	return dispatch.Result{
		Actions: []action.Action{action.QueryStarted{ID: id, Query: text}},
		Tasks:   []dispatch.Task{task},
	}
}

func (q *queryRunner) finish(a action.QueryResult) dispatch.Result {
	q.cancel = nil

	out := state.Outcome{Query: a.Query, Duration: a.Duration}
	var rows int64
	if a.Err != nil {
		out.Err = a.Err.Error()
		log.Warn("query failed", "connection", q.connection, "err", a.Err)
	} else if a.Grid != nil {
		rows = a.Grid.RowsAffected
		if a.Grid.IsSelect {
			rows = int64(len(a.Grid.Rows))
		}
		out.Rows = int(rows)
		log.Info("query finished", "connection", q.connection, "rows", rows, "duration", a.Duration)
	}
	q.state.Update(func(s *state.Snapshot) {
		s.Running = 0
		s.Last = out
	})

	if q.history == nil || strings.TrimSpace(a.Query) == "" {
		return dispatch.Result{}
	}
	entry := history.Entry{
		SessionID:  q.session.ID,
		Connection: q.connection,
		Query:      a.Query,
		Duration:   a.Duration,
		Rows:       rows,
		Error:      out.Err,
	}
	return dispatch.Run(func(ctx context.Context) action.Action {
		if _, err := q.history.RecordQuery(ctx, q.session, entry); err != nil {
			return action.Error{Message: "failed to record history: " + err.Error()}
		}
		entries, err := q.history.Recent(ctx, q.session, history.DefaultLimit)
		return action.HistoryLoaded{Entries: entries, Err: err}
	})
}
