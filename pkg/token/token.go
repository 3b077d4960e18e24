// Package token defines the lexical tokens of the SELECT statements the
// grammar front end understands.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads clearly at call sites
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT    // identifier, quoted or not
	NUMBER   // 123, 45.67, 1e10
	STRING   // 'hello'
	QUESTION // ? parameter marker

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	DCOLON    // :: (PostgreSQL cast)
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Keywords (alphabetical)
	ALL
	AND
	AS
	ASC
	BETWEEN
	BY
	DESC
	DISTINCT
	EXCEPT
	FROM
	GROUP
	HAVING
	IN
	INTERSECT
	IS
	JOIN
	LIKE
	LIMIT
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	ROW
	ROWS
	SELECT
	UNION
	WHERE
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:    "IDENT",
	NUMBER:   "NUMBER",
	STRING:   "STRING",
	QUESTION: "?",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	DCOLON:    "::",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",

	ALL:       "ALL",
	AND:       "AND",
	AS:        "AS",
	ASC:       "ASC",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	DESC:      "DESC",
	DISTINCT:  "DISTINCT",
	EXCEPT:    "EXCEPT",
	FROM:      "FROM",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	IN:        "IN",
	INTERSECT: "INTERSECT",
	IS:        "IS",
	JOIN:      "JOIN",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	NOT:       "NOT",
	NULL:      "NULL",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	ROW:       "ROW",
	ROWS:      "ROWS",
	SELECT:    "SELECT",
	UNION:     "UNION",
	WHERE:     "WHERE",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"desc":      DESC,
	"distinct":  DISTINCT,
	"except":    EXCEPT,
	"from":      FROM,
	"group":     GROUP,
	"having":    HAVING,
	"in":        IN,
	"intersect": INTERSECT,
	"is":        IS,
	"join":      JOIN,
	"like":      LIKE,
	"limit":     LIMIT,
	"not":       NOT,
	"null":      NULL,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"row":       ROW,
	"rows":      ROWS,
	"select":    SELECT,
	"union":     UNION,
	"where":     WHERE,
}

// LookupIdent returns the keyword token type for ident, matched
// case-insensitively, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WHERE
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RPAREN
}

// Token is a lexical token. Literal is the exact source text, quotes and
// all, so that spans and node text agree with the statement.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Span returns the inclusive byte range the token covers.
func (t Token) Span() (start, stop int) {
	return t.Pos.Offset, t.Pos.Offset + len(t.Literal) - 1
}
