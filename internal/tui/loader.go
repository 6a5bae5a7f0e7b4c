package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/johan-st/sqlpane/internal/access"
	"github.com/johan-st/sqlpane/internal/action"
	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/dispatch"
	"github.com/johan-st/sqlpane/internal/export"
	"github.com/johan-st/sqlpane/internal/favorites"
	"github.com/johan-st/sqlpane/internal/history"
)

// loader performs the I/O requested by the panes: schema loading, history,
// favorites, export and clipboard.
type loader struct {
	manager    *database.Manager
	connection string
	user       *access.UserInfo
	history    *history.Store
	session    *history.Session
	favorites  *favorites.Store
	exportDir  string
	clipboard  bool
	now        func() time.Time
}

func (l *loader) Init() dispatch.Result {
	r := dispatch.Emit(action.LoadMenu{})
	r.Add(dispatch.Run(l.loadHistory, l.loadFavorites))
	return r
}

func (l *loader) Update(a action.Action) (dispatch.Result, error) {
	switch a := a.(type) {
	case action.LoadMenu:
		return dispatch.Run(l.loadMenu), nil

	case action.Refresh:
		r := dispatch.Emit(action.LoadMenu{})
		r.Add(dispatch.Run(l.loadHistory, l.loadFavorites))
		return r, nil

	case action.ClearHistory:
		if l.history == nil {
			return dispatch.Result{}, nil
		}
		return dispatch.Run(func(ctx context.Context) action.Action {
			n, err := l.history.Clear(ctx, l.session)
			if err != nil {
				return action.Error{Message: err.Error()}
			}
			log.Info("history cleared", "user", l.session.DisplayName(), "entries", n)
			return action.HistoryLoaded{}
		}), nil

	case action.FavoriteRequest:
		if l.favorites == nil {
			return dispatch.Emit(action.Error{Message: "favorites are not available"}), nil
		}
		name, query := a.Name, strings.Join(a.Lines, "\n")
		return dispatch.Run(func(context.Context) action.Action {
			_, err := l.favorites.Save(name, query)
			return action.FavoriteSaved{Name: name, Err: err}
		}), nil

	case action.FavoriteSaved:
		if a.Err != nil {
			return dispatch.Emit(action.Error{Message: a.Err.Error()}), nil
		}
		r := dispatch.Emit(action.Notice{Text: fmt.Sprintf("saved favorite %q", a.Name)})
		r.Add(dispatch.Run(l.loadFavorites))
		return r, nil

	case action.DeleteFavorite:
		if l.favorites == nil {
			return dispatch.Result{}, nil
		}
		name := a.Name
		return dispatch.Run(func(ctx context.Context) action.Action {
			if err := l.favorites.Delete(name); err != nil {
				return action.Error{Message: err.Error()}
			}
			return l.loadFavorites(ctx)
		}), nil

	case action.ExportRequest:
		if l.exportDir == "" {
			return dispatch.Emit(action.Error{Message: "export is not available in this session"}), nil
		}
		headers, rows := a.Headers, a.Rows
		return dispatch.Run(func(context.Context) action.Action {
			res, err := export.WriteFile(l.exportDir, export.CSV, headers, rows, l.now())
			return action.ExportFinished{Path: res.Path, Rows: res.Rows, Bytes: res.Bytes, Err: err}
		}), nil

	case action.ExportFinished:
		if a.Err != nil {
			return dispatch.Emit(action.Error{Message: "export failed: " + a.Err.Error()}), nil
		}
		res := export.Result{Path: a.Path, Rows: a.Rows, Bytes: a.Bytes}
		log.Info("exported", "path", a.Path, "rows", a.Rows)
		return dispatch.Emit(action.Notice{Text: res.Summary()}), nil

	case action.CopyData:
		if !l.clipboard {
			return dispatch.Emit(action.Error{Message: "clipboard is not available in this session"}), nil
		}
		text := a.Text
		return dispatch.Run(func(context.Context) action.Action {
			if err := clipboard.WriteAll(text); err != nil {
				return action.Error{Message: "copy failed: " + err.Error()}
			}
			rows := strings.Count(text, "\n")
			return action.Notice{Text: fmt.Sprintf("copied %s rows (%s)", humanize.Comma(int64(rows)), humanize.Bytes(uint64(len(text))))}
		}), nil
	}
	return dispatch.Result{}, nil
}

func (l *loader) loadMenu(ctx context.Context) action.Action {
	conn, err := l.manager.OpenConnection(ctx, l.connection, l.user)
	if err != nil {
		return action.MenuLoaded{Err: err}
	}
	schemas, err := database.LoadSchemas(ctx, conn)
	return action.MenuLoaded{Schemas: schemas, Err: err}
}

func (l *loader) loadHistory(ctx context.Context) action.Action {
	if l.history == nil {
		return nil
	}
	entries, err := l.history.Recent(ctx, l.session, history.DefaultLimit)
	return action.HistoryLoaded{Entries: entries, Err: err}
}

func (l *loader) loadFavorites(context.Context) action.Action {
	if l.favorites == nil {
		return nil
	}
	favs, err := l.favorites.List()
	return action.FavoritesLoaded{Favorites: favs, Err: err}
}
