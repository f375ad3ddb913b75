package editor

import "strings"

// keywords are the SQLite words the formatter upper-cases. Words that are
// also common column names in WordPress tables (key, value, type, name)
// are left out.
var keywords = wordSet(`
	abort after all alter analyze and as asc attach autoincrement before begin
	between by cascade case cast check collate commit conflict constraint create
	cross default deferred delete desc detach distinct drop else end escape
	except exclusive exists explain fail for foreign from glob group having if
	ignore immediate in index inner insert instead intersect into is isnull join
	left like limit natural not notnull null nulls offset on or order outer
	pragma primary recursive references regexp reindex rename replace restrict
	returning right rollback savepoint select set table then transaction trigger
	union unique update using vacuum values view virtual when where with without`)

// A table name follows tableKeywords; a column name follows columnKeywords.
var (
	tableKeywords  = wordSet("from join into update table")
	columnKeywords = wordSet("select where set by and or on having returning distinct")
)

func wordSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(list) {
		set[w] = true
	}
	return set
}

type tokenKind int

const (
	tokWord    tokenKind = iota
	tokQuoted            // string literal or quoted identifier
	tokComment           // -- to end of line, or /* */
	tokOther
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenize splits sql into words, quoted runs, comments and single other
// bytes. Concatenating the tokens' text yields sql again.
func tokenize(sql string) []token {
	var toks []token
	for i := 0; i < len(sql); {
		start, kind := i, tokOther
		switch c := sql[i]; {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			kind, i = tokQuoted, closeQuote(sql, i)
		case strings.HasPrefix(sql[i:], "--"):
			kind = tokComment
			if n := strings.IndexByte(sql[i:], '\n'); n >= 0 {
				i += n
			} else {
				i = len(sql)
			}
		case strings.HasPrefix(sql[i:], "/*"):
			kind = tokComment
			if n := strings.Index(sql[i+2:], "*/"); n >= 0 {
				i += n + 4
			} else {
				i = len(sql)
			}
		case isWordByte(c):
			kind = tokWord
			for i < len(sql) && isWordByte(sql[i]) {
				i++
			}
		default:
			i++
		}
		toks = append(toks, token{kind: kind, text: sql[start:i], pos: start})
	}
	return toks
}

// closeQuote returns the index just past the quote opened at sql[i].
// Doubled quotes inside a literal are escapes; an unterminated quote runs to
// the end of the text.
func closeQuote(sql string, i int) int {
	closer := sql[i]
	if closer == '[' {
		closer = ']'
	}
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != closer {
			continue
		}
		if closer != ']' && j+1 < len(sql) && sql[j+1] == closer {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// formatSQL upper-cases keywords. Literals, quoted identifiers, comments and
// qualified names such as p.order keep their spelling.
func formatSQL(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	for _, t := range tokenize(sql) {
		qualified := t.pos > 0 && sql[t.pos-1] == '.'
		if t.kind == tokWord && !qualified && keywords[strings.ToLower(t.text)] {
			b.WriteString(strings.ToUpper(t.text))
			continue
		}
		b.WriteString(t.text)
	}
	return b.String()
}

type target int

const (
	targetNone target = iota
	targetTable
	targetColumn
)

// pending is the word being typed at the end of the editor text.
type pending struct {
	prefix string // everything before the word
	word   string
	target target
	tables []string // known tables the statement reads or writes
}

// analyze inspects text for a word under completion. It reports false when
// the text does not end in a bare word.
func analyze(text string, known []string) (pending, bool) {
	toks := tokenize(text)
	if len(toks) == 0 {
		return pending{}, false
	}
	last := toks[len(toks)-1]
	if last.kind != tokWord {
		return pending{}, false
	}

	words := wordsOf(toks)
	return pending{
		prefix: text[:last.pos],
		word:   last.text,
		target: targetOf(words[:len(words)-1]),
		tables: referencedTables(words, known),
	}, true
}

// statementTables returns the known tables text reads or writes.
func statementTables(text string, known []string) []string {
	return referencedTables(wordsOf(tokenize(text)), known)
}

func wordsOf(toks []token) []string {
	var words []string
	for _, t := range toks {
		if t.kind == tokWord {
			words = append(words, t.text)
		}
	}
	return words
}

// targetOf judges what the next word names from the nearest keyword.
func targetOf(words []string) target {
	for i := len(words) - 1; i >= 0; i-- {
		w := strings.ToLower(words[i])
		switch {
		case tableKeywords[w]:
			return targetTable
		case columnKeywords[w]:
			return targetColumn
		}
	}
	return targetNone
}

// referencedTables returns the known tables named right after a table
// keyword, spelled as in known.
func referencedTables(words, known []string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := 1; i < len(words); i++ {
		if !tableKeywords[strings.ToLower(words[i-1])] {
			continue
		}
		for _, name := range known {
			if strings.EqualFold(name, words[i]) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// matching returns the entries of pool that extend word, without repeats.
func matching(pool []string, word string) []string {
	lower := strings.ToLower(word)
	seen := make(map[string]bool)
	var out []string
	for _, s := range pool {
		if seen[s] || strings.EqualFold(s, word) || !strings.HasPrefix(strings.ToLower(s), lower) {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
