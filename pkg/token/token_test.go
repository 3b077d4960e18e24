package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"limit", LIMIT},
		{"LIMIT", LIMIT},
		{"Offset", OFFSET},
		{"rows", ROWS},
		{"users", IDENT},
		{"limits", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "LIMIT", LIMIT.String())
	assert.Equal(t, "?", QUESTION.String())
	assert.Equal(t, ",", COMMA.String())
	assert.Equal(t, "TOKEN(5000)", TokenType(5000).String())
}

func TestClassification(t *testing.T) {
	assert.True(t, IsKeyword(ALL))
	assert.True(t, IsKeyword(WHERE))
	assert.False(t, IsKeyword(IDENT))
	assert.True(t, IsOperator(COMMA))
	assert.False(t, IsOperator(LIMIT))
}

func TestTokenSpan(t *testing.T) {
	tok := Token{Type: NUMBER, Literal: "100", Pos: Position{Line: 1, Column: 23, Offset: 22}}
	start, stop := tok.Span()
	assert.Equal(t, 22, start)
	assert.Equal(t, 24, stop)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "2:5", Position{Line: 2, Column: 5, Offset: 14}.String())
	assert.Equal(t, "-", Position{}.String())
}
