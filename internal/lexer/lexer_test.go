package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localbase/local-db/internal/lexer"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexer.Token
	}{
		{
			name:  "Select_all_from_table",
			input: "SELECT * FROM users;",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "SELECT"},
				{Type: lexer.ASTERISK, Literal: "*"},
				{Type: lexer.KEYWORD, Literal: "FROM"},
				{Type: lexer.IDENTIFIER, Literal: "users"},
				{Type: lexer.SEMICOLON, Literal: ";"},
			},
		},
		{
			name:  "Schema_qualified_name",
			input: "SELECT * FROM public.users",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "SELECT"},
				{Type: lexer.ASTERISK, Literal: "*"},
				{Type: lexer.KEYWORD, Literal: "FROM"},
				{Type: lexer.IDENTIFIER, Literal: "public"},
				{Type: lexer.DOT, Literal: "."},
				{Type: lexer.IDENTIFIER, Literal: "users"},
			},
		},
		{
			name:  "Create_table_with_constraints",
			input: "CREATE TABLE foo (id UUID PRIMARY KEY, name VARCHAR(100) NOT NULL)",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "CREATE"},
				{Type: lexer.KEYWORD, Literal: "TABLE"},
				{Type: lexer.IDENTIFIER, Literal: "foo"},
				{Type: lexer.LPAREN, Literal: "("},
				{Type: lexer.IDENTIFIER, Literal: "id"},
				{Type: lexer.KEYWORD, Literal: "UUID"},
				{Type: lexer.KEYWORD, Literal: "PRIMARY"},
				{Type: lexer.KEYWORD, Literal: "KEY"},
				{Type: lexer.COMMA, Literal: ","},
				{Type: lexer.IDENTIFIER, Literal: "name"},
				{Type: lexer.KEYWORD, Literal: "VARCHAR"},
				{Type: lexer.LPAREN, Literal: "("},
				{Type: lexer.NUMBER, Literal: "100"},
				{Type: lexer.RPAREN, Literal: ")"},
				{Type: lexer.KEYWORD, Literal: "NOT"},
				{Type: lexer.KEYWORD, Literal: "NULL"},
				{Type: lexer.RPAREN, Literal: ")"},
			},
		},
		{
			name:  "Keywords_are_uppercased",
			input: "select name from users",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "SELECT"},
				{Type: lexer.IDENTIFIER, Literal: "name"},
				{Type: lexer.KEYWORD, Literal: "FROM"},
				{Type: lexer.IDENTIFIER, Literal: "users"},
			},
		},
		{
			name:  "String_literal",
			input: "'hello world'",
			expected: []lexer.Token{
				{Type: lexer.STRING, Literal: "hello world"},
			},
		},
		{
			name:  "Negative_number",
			input: "-12.5",
			expected: []lexer.Token{
				{Type: lexer.NUMBER, Literal: "-12.5"},
			},
		},
		{
			name:  "Identifier_with_underscore",
			input: "avatar_url",
			expected: []lexer.Token{
				{Type: lexer.IDENTIFIER, Literal: "avatar_url"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lexer.New(tt.input)
			for i, expected := range tt.expected {
				tok := l.NextToken()
				assert.Equal(t, expected, tok, "token %d", i)
			}
			assert.Equal(t, lexer.EOF, l.NextToken().Type)
		})
	}
}
