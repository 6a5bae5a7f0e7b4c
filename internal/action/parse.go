package action

import (
	"fmt"
	"sort"
	"strings"
)

// bindable maps config names to the actions a key sequence may trigger.
var bindable = map[string]Action{
	"Quit":                          Quit{},
	"Help":                          Help{},
	"Refresh":                       Refresh{},
	"Resume":                        Resume{},
	"SubmitEditorQuery":             SubmitEditorQuery{},
	"SubmitEditorQueryBypassParser": SubmitEditorQuery{BypassParser: true},
	"AbortQuery":                    AbortQuery{},
	"LoadMenu":                      LoadMenu{},
	"ClearHistory":                  ClearHistory{},
	"FocusMenu":                     FocusChange{Region: RegionMenu},
	"FocusEditor":                   FocusChange{Region: RegionEditor},
	"FocusHistory":                  FocusChange{Region: RegionHistory},
	"FocusData":                     FocusChange{Region: RegionData},
	"FocusFavorites":                FocusChange{Region: RegionFavorites},
	"CycleFocusForwards":            CycleFocus{Direction: Forward},
	"CycleFocusBackwards":           CycleFocus{Direction: Backward},
	"ScrollUp":                      Scroll{Direction: Up},
	"ScrollDown":                    Scroll{Direction: Down},
	"ScrollLeft":                    Scroll{Direction: Left},
	"ScrollRight":                   Scroll{Direction: Right},
	"ColumnLeft":                    ColumnStep{Direction: Left},
	"ColumnRight":                   ColumnStep{Direction: Right},
	"JumpTop":                       JumpRow{Edge: First},
	"JumpBottom":                    JumpRow{Edge: Last},
	"JumpFirstColumn":               JumpColumn{Edge: First},
	"JumpLastColumn":                JumpColumn{Edge: Last},
	"CopyData":                      RequestCopyData{},
	"ExportData":                    RequestExportData{},
	"SaveFavorite":                  RequestSaveFavorite{},
}

// Parse returns the action bound to a config name. Names are case
// insensitive.
func Parse(name string) (Action, error) {
	for n, a := range bindable {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown action: %q", name)
}

// Names returns every bindable action name, sorted.
func Names() []string {
	names := make([]string, 0, len(bindable))
	for n := range bindable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
