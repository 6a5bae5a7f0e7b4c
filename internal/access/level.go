// Package access resolves what a user may do on a configured connection.
package access

import "strings"

// Level is the access a user has to a connection. Levels are ordered: each
// one includes everything below it.
type Level int

const (
	None      Level = iota // connection hidden
	ReadOnly               // SELECT, browsing, copy and export
	ReadWrite              // statements that change data or schema
	Admin                  // every connection, whatever the rules say
)

var levelNames = [...]string{
	None:      "none",
	ReadOnly:  "read-only",
	ReadWrite: "read-write",
	Admin:     "admin",
}

var levelAliases = map[string]Level{
	"ro":        ReadOnly,
	"readonly":  ReadOnly,
	"rw":        ReadWrite,
	"readwrite": ReadWrite,
}

func (l Level) String() string {
	if l < None || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel parses a level name or alias, ignoring case and surrounding
// space. Anything unrecognised is None.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if s == name {
			return Level(l)
		}
	}
	return levelAliases[s]
}

// Cap lowers l to ReadOnly when the connection itself is read-only.
func (l Level) Cap(readOnly bool) Level {
	if readOnly {
		return min(l, ReadOnly)
	}
	return l
}

// CanRead reports whether the connection may be opened at all.
func (l Level) CanRead() bool { return l >= ReadOnly }

// CanWrite reports whether write statements may run.
func (l Level) CanWrite() bool { return l >= ReadWrite }
