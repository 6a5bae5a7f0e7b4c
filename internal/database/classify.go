package database

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the effect a statement has on the database.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
	KindSchema
	// KindSession covers transaction control and session settings.
	KindSession
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindSchema:
		return "schema"
	default:
		return "session"
	}
}

// Statement is one classified SQL statement.
type Statement struct {
	Text string
	Kind Kind
	// Destructive is set for statements the editor asks to confirm.
	Destructive bool
	Reason      string
}

type tokKind int

const (
	tokWord tokKind = iota
	tokSemicolon
	tokString
	tokComment
	tokSpace
	tokOther
)

type token struct {
	kind       tokKind
	start, end int
}

// lex splits s into tokens. Quoted strings, quoted identifiers, comments and
// dollar quoted bodies are single tokens so keywords and semicolons inside
// them are ignored. Unterminated quotes run to the end of input.
func lex(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		start := i
		c := s[i]
		switch {
		case c == ';':
			i++
			toks = append(toks, token{tokSemicolon, start, i})
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(s, i, c)
			toks = append(toks, token{tokString, start, i})
		case c == '[':
			i = skipUntil(s, i+1, "]")
			toks = append(toks, token{tokString, start, i})
		case strings.HasPrefix(s[i:], "--"):
			i = skipUntil(s, i, "\n")
			toks = append(toks, token{tokComment, start, i})
		case strings.HasPrefix(s[i:], "/*"):
			i = skipUntil(s, i+2, "*/")
			toks = append(toks, token{tokComment, start, i})
		case c == '$':
			if tag, ok := dollarTag(s[i:]); ok {
				i = skipUntil(s, i+len(tag), tag)
				toks = append(toks, token{tokString, start, i})
			} else {
				i++
				toks = append(toks, token{tokOther, start, i})
			}
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			switch {
			case unicode.IsSpace(r):
				for i < len(s) {
					r, size := utf8.DecodeRuneInString(s[i:])
					if !unicode.IsSpace(r) {
						break
					}
					i += size
				}
				toks = append(toks, token{tokSpace, start, i})
			case isWordRune(r):
				for i < len(s) {
					r, size := utf8.DecodeRuneInString(s[i:])
					if !isWordRune(r) {
						break
					}
					i += size
				}
				toks = append(toks, token{tokWord, start, i})
			default:
				i += size
				toks = append(toks, token{tokOther, start, i})
			}
		}
	}
	return toks
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// skipQuoted returns the index after the closing quote. A doubled quote is
// an escaped quote.
func skipQuoted(s string, i int, q byte) int {
	i++
	for i < len(s) {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		if s[i] == '\\' && q == '\'' && i+1 < len(s) {
			// backslash escapes (MySQL)
			i += 2
			continue
		}
		i++
	}
	return len(s)
}

// skipUntil returns the index after the first end at or after i.
func skipUntil(s string, i int, end string) int {
	if i > len(s) {
		return len(s)
	}
	j := strings.Index(s[i:], end)
	if j < 0 {
		return len(s)
	}
	return i + j + len(end)
}

// dollarTag matches a Postgres dollar quote opener such as $$ or $body$.
func dollarTag(s string) (string, bool) {
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1], true
		}
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || j > 1 && c >= '0' && c <= '9') {
			return "", false
		}
	}
	return "", false
}

// SplitStatements splits input into statements on semicolons that are not
// inside quotes or comments. Statements holding only whitespace and
// comments are dropped.
func SplitStatements(input string) []string {
	var (
		out   []string
		start int
		code  bool
	)
	flush := func(end int) {
		if code {
			out = append(out, strings.TrimSpace(input[start:end]))
		}
		code = false
	}
	for _, t := range lex(input) {
		switch t.kind {
		case tokSemicolon:
			flush(t.start)
			start = t.end
		case tokSpace, tokComment:
		default:
			code = true
		}
	}
	flush(len(input))
	return out
}

// keywords returns the upper cased bare words of a statement.
func keywords(stmt string) []string {
	var words []string
	for _, t := range lex(stmt) {
		if t.kind == tokWord {
			words = append(words, strings.ToUpper(stmt[t.start:t.end]))
		}
	}
	return words
}

func firstKeyword(stmt string) string {
	for _, t := range lex(stmt) {
		switch t.kind {
		case tokWord:
			return strings.ToUpper(stmt[t.start:t.end])
		case tokSpace, tokComment:
			continue
		default:
			return ""
		}
	}
	return ""
}

func containsKeyword(stmt, kw string) bool {
	for _, w := range keywords(stmt) {
		if w == kw {
			return true
		}
	}
	return false
}

// Classify determines the kind of a single statement and whether running
// it needs confirmation.
func Classify(stmt string) Statement {
	st := Statement{Text: stmt, Kind: KindWrite}
	words := keywords(stmt)
	if len(words) == 0 {
		st.Kind = KindRead
		return st
	}

	has := func(kw string) bool {
		for _, w := range words[1:] {
			if w == kw {
				return true
			}
		}
		return false
	}

	switch words[0] {
	case "SELECT", "EXPLAIN", "SHOW", "DESCRIBE", "DESC", "VALUES", "TABLE":
		st.Kind = KindRead
	case "PRAGMA":
		st.Kind = KindRead
		if strings.Contains(stmt, "=") {
			st.Kind = KindWrite
		}
	case "WITH":
		st.Kind = KindRead
		for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "MERGE"} {
			if has(kw) {
				st.Kind = KindWrite
				if (kw == "UPDATE" || kw == "DELETE") && !has("WHERE") {
					st.Destructive = true
					st.Reason = kw + " without WHERE"
				}
			}
		}
	case "INSERT", "REPLACE", "MERGE", "UPSERT", "COPY", "LOAD":
		st.Kind = KindWrite
	case "UPDATE", "DELETE":
		st.Kind = KindWrite
		if !has("WHERE") {
			st.Destructive = true
			st.Reason = words[0] + " without WHERE"
		}
	case "DROP", "TRUNCATE", "ALTER":
		st.Kind = KindSchema
		st.Destructive = true
		st.Reason = words[0]
	case "CREATE", "RENAME", "GRANT", "REVOKE", "VACUUM", "REINDEX", "ANALYZE", "ATTACH", "DETACH", "COMMENT":
		st.Kind = KindSchema
	case "BEGIN", "START", "COMMIT", "END", "ROLLBACK", "SAVEPOINT", "RELEASE", "SET", "USE", "RESET":
		st.Kind = KindSession
	}
	return st
}

// ClassifyAll splits input and classifies every statement.
func ClassifyAll(input string) []Statement {
	stmts := SplitStatements(input)
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = Classify(s)
	}
	return out
}

// NeedsConfirmation reports whether any statement in input is destructive,
// with the reason of the first one.
func NeedsConfirmation(input string) (bool, string) {
	for _, st := range ClassifyAll(input) {
		if st.Destructive {
			return true, st.Reason
		}
	}
	return false, ""
}

// IsReadOnly reports whether every statement in input only reads.
func IsReadOnly(input string) bool {
	for _, st := range ClassifyAll(input) {
		if st.Kind != KindRead && st.Kind != KindSession {
			return false
		}
	}
	return true
}
