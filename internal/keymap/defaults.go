package keymap

import "github.com/johan-st/sqlpane/internal/action"

type def struct {
	seq  string
	act  action.Action
	help string
}

// bound in every region
var globalDefaults = []def{
	{"<ctrl-c>", action.Quit{}, "quit"},
	{"<tab>", action.CycleFocus{Direction: action.Forward}, "next pane"},
	{"<shift-tab>", action.CycleFocus{Direction: action.Backward}, "prev pane"},
	{"<alt-1>", action.FocusChange{Region: action.RegionMenu}, ""},
	{"<alt-2>", action.FocusChange{Region: action.RegionEditor}, ""},
	{"<alt-3>", action.FocusChange{Region: action.RegionHistory}, ""},
	{"<alt-4>", action.FocusChange{Region: action.RegionData}, ""},
	{"<alt-5>", action.FocusChange{Region: action.RegionFavorites}, ""},
	{"<ctrl-g>", action.AbortQuery{}, "abort query"},
	{"<f1>", action.Help{}, "help"},
}

// regions where plain letters are free for bindings
var browseDefaults = []def{
	{"<q>", action.Quit{}, ""},
	{"<?>", action.Help{}, ""},
	{"<e>", action.FocusChange{Region: action.RegionEditor}, ""},
	{"<ctrl-r>", action.Refresh{}, "refresh"},
}

var regionDefaults = map[action.Region][]def{
	action.RegionEditor: {
		{"<ctrl-r>", action.SubmitEditorQuery{}, "run"},
		{"<alt-enter>", action.SubmitEditorQuery{}, ""},
		{"<alt-r>", action.SubmitEditorQuery{BypassParser: true}, "run unchecked"},
		{"<ctrl-s>", action.RequestSaveFavorite{}, "save favorite"},
		{"<esc>", action.FocusChange{Region: action.RegionMenu}, ""},
	},
	action.RegionHistory: {
		{"<X>", action.ClearHistory{}, "clear history"},
	},
	action.RegionData: {
		{"<j>", action.Scroll{Direction: action.Down}, ""},
		{"<down>", action.Scroll{Direction: action.Down}, ""},
		{"<k>", action.Scroll{Direction: action.Up}, ""},
		{"<up>", action.Scroll{Direction: action.Up}, ""},
		{"<h>", action.Scroll{Direction: action.Left}, ""},
		{"<left>", action.Scroll{Direction: action.Left}, ""},
		{"<l>", action.Scroll{Direction: action.Right}, ""},
		{"<right>", action.Scroll{Direction: action.Right}, ""},
		{"<w>", action.ColumnStep{Direction: action.Right}, "next column"},
		{"<b>", action.ColumnStep{Direction: action.Left}, "prev column"},
		{"<g><g>", action.JumpRow{Edge: action.First}, "top"},
		{"<G>", action.JumpRow{Edge: action.Last}, "bottom"},
		{"<0>", action.JumpColumn{Edge: action.First}, "first column"},
		{"<$>", action.JumpColumn{Edge: action.Last}, "last column"},
		{"<y>", action.RequestCopyData{}, "copy"},
		{"<E>", action.RequestExportData{}, "export csv"},
	},
}

// Default returns the built in key map.
func Default() *Map {
	m := NewMap()
	for _, r := range action.Regions {
		for _, d := range regionDefaults[r] {
			bindDef(m, r, d)
		}
		if r != action.RegionEditor {
			for _, d := range browseDefaults {
				if _, taken := m.Lookup(r, mustParse(d.seq)); !taken {
					bindDef(m, r, d)
				}
			}
		}
		for _, d := range globalDefaults {
			bindDef(m, r, d)
		}
	}
	return m
}

func bindDef(m *Map, r action.Region, d def) {
	m.Bind(r, mustParse(d.seq), d.act, d.help)
}

func mustParse(seq string) []string {
	keys, err := ParseSequence(seq)
	if err != nil {
		panic(err)
	}
	return keys
}
