package database

import (
	"strings"
	"unicode"
)

// StatementKind tells how an ad-hoc statement is run and how its result is shaped.
type StatementKind int

const (
	// Write statements are run with Exec and report a change count.
	Write StatementKind = iota
	// Read statements are run with Query and report rows.
	Read
)

func (k StatementKind) String() string {
	if k == Read {
		return "read"
	}
	return "write"
}

// Classify decides whether sql is a read or a write from its first keyword,
// skipping whitespace and comments. Only SELECT is a read.
func Classify(sql string) StatementKind {
	if strings.EqualFold(leadingKeyword(sql), "select") {
		return Read
	}
	return Write
}

// leadingKeyword returns the first word of sql that is not inside a comment.
func leadingKeyword(sql string) string {
	s := sql
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}

// quoteIdent quotes an identifier for SQLite. Callers validate the name
// against the schema first; quoting keeps odd but legal names intact.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
