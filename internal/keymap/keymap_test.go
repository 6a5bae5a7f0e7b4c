package keymap

import (
	"reflect"
	"testing"

	"github.com/johan-st/sqlpane/internal/action"
)

func TestParseSequence(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"<ctrl-r>", []string{"ctrl+r"}, false},
		{"<C-R>", []string{"ctrl+r"}, false},
		{"<g><g>", []string{"g", "g"}, false},
		{"gg", []string{"g", "g"}, false},
		{"<G>", []string{"G"}, false},
		{"<shift-tab>", []string{"shift+tab"}, false},
		{"<backtab>", []string{"shift+tab"}, false},
		{"<alt-enter>", []string{"alt+enter"}, false},
		{"<Esc>", []string{"esc"}, false},
		{"<space>", []string{" "}, false},
		{"<PageDown>", []string{"pgdown"}, false},
		{"<ctrl-->", []string{"ctrl+-"}, false},
		{"<>>", []string{">"}, false},
		{"<$>", []string{"$"}, false},
		{"", nil, true},
		{"<ctrl-r", nil, true},
		{"<>", nil, true},
		{"x<y>", nil, true},
		{"<hyper-x>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSequence(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSequence(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSequence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBindReplacesSameSequence(t *testing.T) {
	m := NewMap()
	m.Bind(action.RegionData, []string{"x"}, action.Quit{}, "quit")
	m.Bind(action.RegionData, []string{"y"}, action.Help{}, "help")
	m.Bind(action.RegionData, []string{"x"}, action.Refresh{}, "refresh")

	bs := m.Bindings(action.RegionData)
	if len(bs) != 2 {
		t.Fatalf("len(Bindings) = %d, want 2", len(bs))
	}
	if bs[0].Action != (action.Refresh{}) {
		t.Errorf("Bindings[0].Action = %#v, want Refresh (order kept)", bs[0].Action)
	}
}

func TestFromConfigMergesOverDefaults(t *testing.T) {
	user, err := FromConfig(map[string]map[string]string{
		"data": {
			"<g><g>":   "JumpBottom",
			"<ctrl-t>": "JumpTop",
		},
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	m := Default().Merge(user)
	if a, _ := m.Lookup(action.RegionData, []string{"g", "g"}); a != (action.JumpRow{Edge: action.Last}) {
		t.Errorf("g g = %#v, want JumpRow{Last}", a)
	}
	if a, _ := m.Lookup(action.RegionData, []string{"ctrl+t"}); a != (action.JumpRow{Edge: action.First}) {
		t.Errorf("ctrl+t = %#v, want JumpRow{First}", a)
	}
	// defaults untouched
	if a, _ := Default().Lookup(action.RegionData, []string{"g", "g"}); a != (action.JumpRow{Edge: action.First}) {
		t.Errorf("default g g = %#v, want JumpRow{First}", a)
	}
}

func TestFromConfigErrors(t *testing.T) {
	tests := []map[string]map[string]string{
		{"sidebar": {"<q>": "Quit"}},
		{"data": {"<ctrl-r": "Quit"}},
		{"data": {"<q>": "Launch"}},
	}
	for _, raw := range tests {
		if _, err := FromConfig(raw); err == nil {
			t.Errorf("FromConfig(%v) expected error", raw)
		}
	}
}

func TestHelpBindings(t *testing.T) {
	m := NewMap()
	m.Bind(action.RegionData, []string{"g", "g"}, action.JumpRow{}, "top")
	m.Bind(action.RegionData, []string{"j"}, action.Scroll{Direction: action.Down}, "")

	hb := m.HelpBindings(action.RegionData)
	if len(hb) != 1 {
		t.Fatalf("len(HelpBindings) = %d, want 1", len(hb))
	}
	if got := hb[0].Help(); got.Key != "g g" || got.Desc != "top" {
		t.Errorf("Help() = %+v, want {g g top}", got)
	}
}
