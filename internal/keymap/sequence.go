package keymap

import (
	"fmt"
	"strings"
)

var keyAliases = map[string]string{
	"escape":   "esc",
	"return":   "enter",
	"cr":       "enter",
	"space":    " ",
	"bs":       "backspace",
	"del":      "delete",
	"pageup":   "pgup",
	"pagedown": "pgdown",
	"backtab":  "shift+tab",
}

var modifiers = map[string]string{
	"ctrl":  "ctrl",
	"c":     "ctrl",
	"alt":   "alt",
	"a":     "alt",
	"m":     "alt",
	"shift": "shift",
	"s":     "shift",
}

// ParseSequence parses key sequence notation into bubbletea key strings.
//
//	<ctrl-r>     -> ["ctrl+r"]
//	<g><g>       -> ["g", "g"]
//	<shift-tab>  -> ["shift+tab"]
//	gg           -> ["g", "g"]
func ParseSequence(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty key sequence")
	}

	if !strings.Contains(s, "<") {
		var keys []string
		for _, r := range s {
			keys = append(keys, string(r))
		}
		return keys, nil
	}

	var keys []string
	rest := s
	for rest != "" {
		if rest[0] != '<' {
			return nil, fmt.Errorf("invalid key sequence %q: expected '<'", s)
		}
		end := strings.IndexByte(rest[1:], '>')
		if end < 0 {
			return nil, fmt.Errorf("invalid key sequence %q: unclosed '<'", s)
		}
		// "<>>" is the '>' key
		if end == 0 && len(rest) > 2 && rest[2] == '>' {
			keys = append(keys, ">")
			rest = rest[3:]
			continue
		}
		k, err := parseKey(rest[1 : end+1])
		if err != nil {
			return nil, fmt.Errorf("invalid key sequence %q: %w", s, err)
		}
		keys = append(keys, k)
		rest = rest[end+2:]
	}
	return keys, nil
}

func parseKey(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty key")
	}
	// single character keys keep their case: <G> is shift+g
	if len([]rune(s)) == 1 {
		return s, nil
	}

	parts := strings.Split(s, "-")
	// "<ctrl-->" ends in an empty part: the key is '-'
	if parts[len(parts)-1] == "" && len(parts) > 1 {
		parts = append(parts[:len(parts)-2], "-")
	}

	var mods []string
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifiers[strings.ToLower(p)]
		if !ok {
			return "", fmt.Errorf("unknown modifier %q", p)
		}
		mods = append(mods, m)
	}

	name := parts[len(parts)-1]
	if len([]rune(name)) > 1 {
		name = strings.ToLower(name)
		if alias, ok := keyAliases[name]; ok {
			name = alias
		}
	} else if len(mods) > 0 {
		name = strings.ToLower(name)
	}
	if name == " " && len(mods) == 0 {
		return name, nil
	}

	return strings.Join(append(mods, name), "+"), nil
}

// FormatSequence renders keys for display, e.g. "g g" or "ctrl+r".
func FormatSequence(keys []string) string {
	out := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		out[i] = k
	}
	return strings.Join(out, " ")
}
