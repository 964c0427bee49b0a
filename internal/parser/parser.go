// Package parser recognizes the two statement shapes the console engine
// supports: CREATE TABLE and SELECT ... FROM. Everything else is reported
// as unsupported; a matching keyword with a broken shape is a parse error,
// never a silent fallthrough.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/localbase/local-db/internal/lexer"
)

// ErrUnsupportedStatement marks statements outside the recognized subset.
var ErrUnsupportedStatement = errors.New("unsupported statement")

// DefaultSchema is assumed when the FROM or CREATE target is unqualified.
const DefaultSchema = "public"

// Statement is a recognized SQL statement.
type Statement interface {
	statement()
}

// ColumnDef is one parsed column definition of a CREATE TABLE statement.
// Nullable is true unless the definition contains NOT NULL; PRIMARY KEY
// alone does not imply NOT NULL.
type ColumnDef struct {
	Name     string
	Type     string
	Length   int
	Nullable bool
	Primary  bool
	Unique   bool
}

// CreateTableStatement represents CREATE TABLE [schema.]name (cols...).
type CreateTableStatement struct {
	Schema  string
	Table   string
	Columns []ColumnDef
}

// SelectStatement represents SELECT ... FROM [schema.]name. Only the FROM
// target is parsed; the select list is not interpreted.
type SelectStatement struct {
	Schema string
	Table  string
}

func (*CreateTableStatement) statement() {}
func (*SelectStatement) statement()      {}

// Parser represents a SQL statement recognizer
type Parser struct {
	l       *lexer.Lexer
	pending *lexer.Token
}

// New creates a new parser with the given lexer
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// next returns the pushed-back token if one exists, otherwise advances.
func (p *Parser) next() lexer.Token {
	if p.pending != nil {
		tok := *p.pending
		p.pending = nil
		return tok
	}
	return p.l.NextToken()
}

func (p *Parser) pushBack(tok lexer.Token) {
	p.pending = &tok
}

// Parse parses the input SQL statement
func (p *Parser) Parse() (Statement, error) {
	tok := p.next()
	if tok.Type == lexer.EOF {
		return nil, fmt.Errorf("empty statement: %w", ErrUnsupportedStatement)
	}

	switch tok.Literal {
	case "CREATE":
		return p.parseCreateTable()
	case "SELECT":
		return p.parseSelect()
	default:
		return nil, fmt.Errorf("statement %s: %w", tok.Literal, ErrUnsupportedStatement)
	}
}

func (p *Parser) parseCreateTable() (*CreateTableStatement, error) {
	tok := p.next()
	if tok.Literal != "TABLE" {
		return nil, fmt.Errorf("expected TABLE, got %s", tok.Literal)
	}

	schema, table, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	stmt := &CreateTableStatement{Schema: schema, Table: table}

	tok = p.next()
	if tok.Type != lexer.LPAREN {
		return nil, fmt.Errorf("expected (, got %s", tok.Literal)
	}

	for {
		col, last, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
		if last {
			break
		}
	}

	return stmt, nil
}

// parseColumnDef consumes one column definition up to the closing comma or
// parenthesis. The second return value is true after the final column.
func (p *Parser) parseColumnDef() (ColumnDef, bool, error) {
	col := ColumnDef{Type: "TEXT", Nullable: true}

	tok := p.next()
	if tok.Type != lexer.IDENTIFIER && tok.Type != lexer.KEYWORD {
		return col, false, fmt.Errorf("expected column name, got %s", tok.Literal)
	}
	col.Name = tok.Literal

	tok = p.next()
	switch tok.Type {
	case lexer.COMMA:
		return col, false, nil
	case lexer.RPAREN:
		return col, true, nil
	case lexer.IDENTIFIER, lexer.KEYWORD:
		col.Type = strings.ToUpper(tok.Literal)
	default:
		return col, false, fmt.Errorf("expected column type, got %s", tok.Literal)
	}

	// Optional length, e.g. VARCHAR(255). A second length argument, as in
	// DECIMAL(10,2), is consumed and ignored.
	tok = p.next()
	if tok.Type == lexer.LPAREN {
		tok = p.next()
		if tok.Type != lexer.NUMBER {
			return col, false, fmt.Errorf("expected length, got %s", tok.Literal)
		}
		n, err := strconv.Atoi(tok.Literal)
		if err != nil {
			return col, false, fmt.Errorf("invalid length: %s", tok.Literal)
		}
		col.Length = n

		tok = p.next()
		if tok.Type == lexer.COMMA {
			tok = p.next()
			if tok.Type != lexer.NUMBER {
				return col, false, fmt.Errorf("expected scale, got %s", tok.Literal)
			}
			tok = p.next()
		}
		if tok.Type != lexer.RPAREN {
			return col, false, fmt.Errorf("expected ) after length, got %s", tok.Literal)
		}
		tok = p.next()
	}

	// Constraint keywords until the end of this definition. Unrecognized
	// tokens (e.g. DEFAULT expressions) are skipped.
	for {
		switch {
		case tok.Type == lexer.COMMA:
			return col, false, nil
		case tok.Type == lexer.RPAREN:
			return col, true, nil
		case tok.Type == lexer.EOF:
			return col, false, fmt.Errorf("unexpected end of column definition for %s", col.Name)
		case tok.Literal == "NOT":
			tok = p.next()
			if tok.Literal != "NULL" {
				return col, false, fmt.Errorf("expected NULL after NOT, got %s", tok.Literal)
			}
			col.Nullable = false
		case tok.Literal == "PRIMARY":
			tok = p.next()
			if tok.Literal != "KEY" {
				return col, false, fmt.Errorf("expected KEY after PRIMARY, got %s", tok.Literal)
			}
			col.Primary = true
		case tok.Literal == "UNIQUE":
			col.Unique = true
		}
		tok = p.next()
	}
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	// Skip the select list; only the FROM target matters.
	for {
		tok := p.next()
		if tok.Type == lexer.EOF {
			return nil, fmt.Errorf("expected FROM in SELECT statement")
		}
		if tok.Literal == "FROM" {
			break
		}
	}

	schema, table, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	return &SelectStatement{Schema: schema, Table: table}, nil
}

// parseQualifiedName reads name or schema.name, defaulting the schema.
func (p *Parser) parseQualifiedName() (string, string, error) {
	tok := p.next()
	if tok.Type != lexer.IDENTIFIER && tok.Type != lexer.KEYWORD {
		return "", "", fmt.Errorf("expected table name, got %s", tok.Literal)
	}
	first := tok.Literal

	tok = p.next()
	if tok.Type != lexer.DOT {
		p.pushBack(tok)
		return DefaultSchema, first, nil
	}

	tok = p.next()
	if tok.Type != lexer.IDENTIFIER && tok.Type != lexer.KEYWORD {
		return "", "", fmt.Errorf("expected table name after %s., got %s", first, tok.Literal)
	}
	return first, tok.Literal, nil
}

// Parse parses an SQL statement and returns a Statement
func Parse(sql string) (Statement, error) {
	l := lexer.New(strings.TrimSpace(sql))
	p := New(l)
	return p.Parse()
}
