package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// ColumnType is the declared type of a column. Declared types are metadata:
// rows are open records and values are not coerced to the declared type.
type ColumnType string

const (
	TypeText      ColumnType = "TEXT"
	TypeVarchar   ColumnType = "VARCHAR"
	TypeInteger   ColumnType = "INTEGER"
	TypeFloat     ColumnType = "FLOAT"
	TypeBoolean   ColumnType = "BOOLEAN"
	TypeTimestamp ColumnType = "TIMESTAMP"
	TypeUUID      ColumnType = "UUID"
	TypeJSON      ColumnType = "JSON"
	TypeArray     ColumnType = "ARRAY"
	TypeBlob      ColumnType = "BLOB"
)

// DefaultKind selects the variant of a DefaultSpec.
type DefaultKind int

const (
	DefaultLiteral DefaultKind = iota
	DefaultGeneratedUUID
	DefaultCurrentTimestamp
)

// Sentinel strings used on the wire for generated defaults. They match the
// PostgreSQL spellings so existing snapshots load unchanged.
const (
	uuidSentinel = "gen_random_uuid()"
	nowSentinel  = "now()"
)

// DefaultSpec is a column default: either a literal value or one of the two
// recognized generators, resolved at insert time.
type DefaultSpec struct {
	Kind    DefaultKind
	Literal interface{}
}

// LiteralDefault returns a default that always yields v.
func LiteralDefault(v interface{}) *DefaultSpec {
	return &DefaultSpec{Kind: DefaultLiteral, Literal: v}
}

// UUIDDefault returns a default that yields a fresh identifier per row.
func UUIDDefault() *DefaultSpec {
	return &DefaultSpec{Kind: DefaultGeneratedUUID}
}

// NowDefault returns a default that yields the current timestamp.
func NowDefault() *DefaultSpec {
	return &DefaultSpec{Kind: DefaultCurrentTimestamp}
}

// MarshalJSON writes generated defaults as their sentinel strings and
// literal defaults as the raw value, matching the snapshot format.
func (d DefaultSpec) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DefaultGeneratedUUID:
		return json.Marshal(uuidSentinel)
	case DefaultCurrentTimestamp:
		return json.Marshal(nowSentinel)
	default:
		return json.Marshal(d.Literal)
	}
}

// UnmarshalJSON recognizes the two sentinel strings; any other value is a
// literal default. Numbers are normalized the same way row values are.
func (d *DefaultSpec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		switch s {
		case uuidSentinel:
			*d = DefaultSpec{Kind: DefaultGeneratedUUID}
			return nil
		case nowSentinel:
			*d = DefaultSpec{Kind: DefaultCurrentTimestamp}
			return nil
		}
	}
	*d = DefaultSpec{Kind: DefaultLiteral, Literal: NormalizeValue(v)}
	return nil
}

// Column is a column declaration within a table.
type Column struct {
	Name          string       `json:"name"`
	Type          ColumnType   `json:"type"`
	Nullable      bool         `json:"nullable"`
	Default       *DefaultSpec `json:"default,omitempty"`
	Primary       bool         `json:"primary,omitempty"`
	Unique        bool         `json:"unique,omitempty"`
	AutoIncrement bool         `json:"autoIncrement,omitempty"`
	Length        int          `json:"length,omitempty"`
}

// Row is one record in a table: an open mapping from column name to a
// dynamically-typed value.
type Row map[string]interface{}

// Index is declarative metadata only; no physical structure is built.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// Policy is a declared row-level policy. It is never evaluated.
type Policy struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"` // SELECT, INSERT, UPDATE or DELETE
	Using string `json:"using"`
	Check string `json:"check,omitempty"`
}

// Table is a named collection of rows within a schema. Column order is
// declaration order and also display order.
type Table struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schema    string    `json:"schema"`
	Columns   []Column  `json:"columns"`
	Rows      []Row     `json:"rows"`
	Indexes   []Index   `json:"indexes"`
	Policies  []Policy  `json:"policies"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Column returns the declaration for name, if present.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether a column with that name is declared.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Snapshot is the whole database: schema name to table name to table.
// It is persisted as one unit.
type Snapshot map[string]map[string]*Table

// QueryResult is the outcome of a row-level operation or SQL statement.
type QueryResult struct {
	Success       bool    `json:"success"`
	Data          []Row   `json:"data,omitempty"`
	Error         string  `json:"error,omitempty"`
	RowsAffected  int     `json:"rowsAffected,omitempty"`
	ExecutionTime float64 `json:"executionTime,omitempty"` // milliseconds
}

// QueryExplanation is the stubbed query-planner output.
type QueryExplanation struct {
	Plan          []string `json:"plan"`
	EstimatedCost float64  `json:"estimatedCost"`
	IndexesUsed   []string `json:"indexesUsed"`
	Warnings      []string `json:"warnings"`
}

// OrderBy is one ordering key of a select.
type OrderBy struct {
	Column    string
	Direction string // "ASC" or "DESC"; anything else is treated as ASC
}

// SelectOptions controls filtering, ordering and paging of a select.
// Where is an equality-only filter: a row matches when every key equals the
// row's value. Limit <= 0 means no limit.
type SelectOptions struct {
	Where   Row
	OrderBy []OrderBy
	Offset  int
	Limit   int
}

// DatabaseStats summarizes the store for display.
type DatabaseStats struct {
	Schemas int `json:"schemas"`
	Tables  int `json:"tables"`
	Rows    int `json:"rows"`
}
