package grammar

import (
	"strings"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/token"
)

// Split cuts a script into statements at top-level semicolons. Semicolons
// inside string literals, quoted identifiers and comments do not split.
// Blank statements are dropped.
func Split(script string, db dialect.DatabaseType) []string {
	var out []string
	l := NewLexer(script, db)
	start := 0
	emit := func(end int) {
		if s := strings.TrimSpace(script[start:end]); s != "" {
			out = append(out, s)
		}
	}
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.SEMICOLON:
			emit(tok.Pos.Offset)
			start = tok.Pos.Offset + 1
		case token.EOF:
			emit(len(script))
			return out
		}
	}
}
