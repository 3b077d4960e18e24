package grammar

import (
	"unicode"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/token"
)

// Lexer tokenizes a single SQL statement. Token literals are the exact
// source text, so byte offsets in token positions line up with the input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)

	db dialect.DatabaseType
}

// NewLexer creates a Lexer for input using the lexical rules of db.
func NewLexer(input string, db dialect.DatabaseType) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		db:    db,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	start := l.pos

	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	typ := token.ILLEGAL
	switch l.ch {
	case '+':
		typ = token.PLUS
	case '-':
		typ = token.MINUS
	case '*':
		typ = token.STAR
	case '/':
		typ = token.SLASH
	case '%':
		typ = token.PERCENT
	case '=':
		typ = token.EQ
	case '?':
		typ = token.QUESTION
	case '.':
		typ = token.DOT
	case ',':
		typ = token.COMMA
	case ';':
		typ = token.SEMICOLON
	case '(':
		typ = token.LPAREN
	case ')':
		typ = token.RPAREN
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			typ = token.LE
		case '>':
			l.readChar()
			typ = token.NE
		default:
			typ = token.LT
		}
	case '>':
		typ = token.GT
		if l.peekChar() == '=' {
			l.readChar()
			typ = token.GE
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			typ = token.NE
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			typ = token.DPIPE
		}
	case ':':
		if l.db == dialect.PostgreSQL && l.peekChar() == ':' {
			l.readChar()
			typ = token.DCOLON
		}
	case '\'':
		return l.readQuoted(pos, '\'', token.STRING)
	case '"':
		// MySQL treats double quotes as string delimiters, PostgreSQL as
		// identifier delimiters.
		if l.db == dialect.MySQL {
			return l.readQuoted(pos, '"', token.STRING)
		}
		return l.readQuoted(pos, '"', token.IDENT)
	case '`':
		if l.db == dialect.MySQL {
			return l.readQuoted(pos, '`', token.IDENT)
		}
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		}
	}

	l.readChar()
	return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

// skipWhitespaceAndComments skips whitespace, "--" and "/* */" comments,
// and "#" comments in MySQL.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		switch {
		case l.ch == '-' && l.peekChar() == '-',
			l.ch == '#' && l.db == dialect.MySQL:
			for l.ch != '\n' && l.pos < len(l.input) {
				l.readChar()
			}
			continue
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			for l.pos < len(l.input) {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // skip '*'
					l.readChar() // skip '/'
					break
				}
				l.readChar()
			}
			continue
		}
		return
	}
}

// readQuoted reads a quoted literal or identifier. A doubled quote is an
// escaped quote; MySQL strings also accept backslash escapes. An
// unterminated literal is returned as ILLEGAL.
func (l *Lexer) readQuoted(pos token.Position, quote byte, typ token.TokenType) token.Token {
	start := l.pos
	backslash := l.db == dialect.MySQL && typ == token.STRING

	l.readChar() // skip opening quote
	for l.pos < len(l.input) {
		switch {
		case backslash && l.ch == '\\' && l.readPos < len(l.input):
			l.readChar()
			l.readChar()
		case l.ch == quote && l.peekChar() == quote:
			l.readChar()
			l.readChar()
		case l.ch == quote:
			l.readChar() // skip closing quote
			return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
		default:
			l.readChar()
		}
	}
	return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos], Pos: pos}
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens of input, ending with EOF.
func Tokenize(input string, db dialect.DatabaseType) []token.Token {
	l := NewLexer(input, db)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
