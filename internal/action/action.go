// Package action defines the closed set of commands exchanged between the
// event loop and the UI components.
package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/favorites"
	"github.com/johan-st/sqlpane/internal/history"
)

// Action is a typed command. Values are immutable once constructed and are
// passed by value along the dispatch path.
type Action interface {
	isAction()
}

// Region is a UI area that may own keyboard input.
type Region int

const (
	RegionMenu Region = iota
	RegionEditor
	RegionHistory
	RegionData
	RegionFavorites
)

// Regions lists every region in broadcast order.
var Regions = []Region{RegionMenu, RegionEditor, RegionHistory, RegionData, RegionFavorites}

func (r Region) String() string {
	switch r {
	case RegionMenu:
		return "menu"
	case RegionEditor:
		return "editor"
	case RegionHistory:
		return "history"
	case RegionData:
		return "data"
	case RegionFavorites:
		return "favorites"
	default:
		return fmt.Sprintf("region(%d)", int(r))
	}
}

// ParseRegion parses a region name as used in the config file.
func ParseRegion(s string) (Region, error) {
	for _, r := range Regions {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown region: %q", s)
}

// Direction is a one-cell movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Cycle is the direction focus moves through the regions.
type Cycle int

const (
	Forward Cycle = iota
	Backward
)

// Edge selects the first or last row/column.
type Edge int

const (
	First Edge = iota
	Last
)

// ExportFormat is the file format of an export.
type ExportFormat int

const (
	FormatCSV ExportFormat = iota
)

// Lifecycle.
type (
	Tick   struct{}
	Render struct{}
	Resize struct{ Width, Height int }
	Resume struct{}
	Quit   struct{}
	// Refresh reloads the menu, history and favorites.
	Refresh struct{}
	Help    struct{}
	Error   struct{ Message string }
	// Notice is a transient status line message.
	Notice struct{ Text string }
)

// Focus.
type (
	FocusChange struct{ Region Region }
	CycleFocus  struct{ Direction Cycle }
)

// Queries.
type (
	// SubmitEditorQuery asks the editor to submit its current contents.
	SubmitEditorQuery struct{ BypassParser bool }
	SubmitQuery       struct {
		Lines        []string
		Confirmed    bool
		BypassParser bool
	}
	// QueryStarted is emitted once a query has been handed to the database.
	QueryStarted struct {
		ID    uint64
		Query string
	}
	QueryResult struct {
		ID       uint64
		Query    string
		Grid     *database.Grid
		Err      error
		Duration time.Duration
	}
	AbortQuery    struct{}
	QueryToEditor struct{ Lines []string }
)

// Menu.
type (
	LoadMenu   struct{}
	MenuLoaded struct {
		Schemas []database.SchemaNode
		Err     error
	}
	MenuPreview struct {
		Kind   database.PreviewKind
		Schema string
		Table  string
	}
)

// History.
type (
	ClearHistory  struct{}
	HistoryLoaded struct {
		Entries []history.Entry
		Err     error
	}
)

// Data viewport.
type (
	Scroll     struct{ Direction Direction }
	ColumnStep struct{ Direction Direction }
	JumpRow    struct{ Edge Edge }
	JumpColumn struct{ Edge Edge }
)

// Copy and export.
type (
	RequestCopyData   struct{}
	CopyData          struct{ Text string }
	RequestExportData struct{}
	ExportRequest     struct {
		Format  ExportFormat
		Headers []string
		Rows    [][]string
	}
	ExportFinished struct {
		Path  string
		Rows  int
		Bytes int64
		Err   error
	}
)

// Favorites.
type (
	// RequestSaveFavorite asks the editor for its contents so they can be
	// saved under a name.
	RequestSaveFavorite struct{}
	PromptFavoriteName  struct{ Lines []string }
	FavoriteRequest     struct {
		Name  string
		Lines []string
	}
	FavoriteSaved struct {
		Name string
		Err  error
	}
	DeleteFavorite  struct{ Name string }
	FavoritesLoaded struct {
		Favorites []favorites.Favorite
		Err       error
	}
)

func (Tick) isAction()                {}
func (Render) isAction()              {}
func (Resize) isAction()              {}
func (Resume) isAction()              {}
func (Quit) isAction()                {}
func (Refresh) isAction()             {}
func (Help) isAction()                {}
func (Error) isAction()               {}
func (Notice) isAction()              {}
func (FocusChange) isAction()         {}
func (CycleFocus) isAction()          {}
func (SubmitEditorQuery) isAction()   {}
func (SubmitQuery) isAction()         {}
func (QueryStarted) isAction()        {}
func (QueryResult) isAction()         {}
func (AbortQuery) isAction()          {}
func (QueryToEditor) isAction()       {}
func (LoadMenu) isAction()            {}
func (MenuLoaded) isAction()          {}
func (MenuPreview) isAction()         {}
func (ClearHistory) isAction()        {}
func (HistoryLoaded) isAction()       {}
func (Scroll) isAction()              {}
func (ColumnStep) isAction()          {}
func (JumpRow) isAction()             {}
func (JumpColumn) isAction()          {}
func (RequestCopyData) isAction()     {}
func (CopyData) isAction()            {}
func (RequestExportData) isAction()   {}
func (ExportRequest) isAction()       {}
func (ExportFinished) isAction()      {}
func (RequestSaveFavorite) isAction() {}
func (PromptFavoriteName) isAction()  {}
func (FavoriteRequest) isAction()     {}
func (FavoriteSaved) isAction()       {}
func (DeleteFavorite) isAction()      {}
func (FavoritesLoaded) isAction()     {}

// Name returns the type name of an action, e.g. "Scroll".
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", a), "action.")
}
