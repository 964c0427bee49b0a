package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/localbase/local-db/internal/types"
)

func tableNotFound(schema, table string) types.QueryResult {
	return types.QueryResult{
		Success: false,
		Error:   fmt.Sprintf("Table %s.%s not found", schema, table),
	}
}

func elapsedMillis(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
}

// Insert builds a row from data, resolving each declared column in order:
// explicit value, then default, then auto-increment, then nil. Keys in data
// that match no declared column are dropped.
func (e *Engine) Insert(schema, tableName string, data types.Row) types.QueryResult {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return tableNotFound(schema, tableName)
	}

	row := make(types.Row, len(table.Columns))
	for i := range table.Columns {
		col := &table.Columns[i]
		row[col.Name] = e.resolveColumnValue(col, data, table)
	}

	table.Rows = append(table.Rows, row)
	table.UpdatedAt = e.clock.Now()
	e.persist()

	return types.QueryResult{
		Success:       true,
		Data:          []types.Row{row},
		RowsAffected:  1,
		ExecutionTime: elapsedMillis(start),
	}
}

// Select filters, orders and pages a table's rows. Returned rows are
// copies; mutating them does not touch the store.
func (e *Engine) Select(schema, tableName string, opts types.SelectOptions) types.QueryResult {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return tableNotFound(schema, tableName)
	}

	rows := make([]types.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if !matchesWhere(row, opts.Where) {
			continue
		}
		copied := make(types.Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		rows = append(rows, copied)
	}

	if len(opts.OrderBy) > 0 {
		sortRows(rows, opts.OrderBy)
	}
	rows = applyWindow(rows, opts.Offset, opts.Limit)

	return types.QueryResult{
		Success:       true,
		Data:          rows,
		RowsAffected:  len(rows),
		ExecutionTime: elapsedMillis(start),
	}
}

// Update merges data into every matching row in place. The snapshot is
// only written when at least one row matched.
func (e *Engine) Update(schema, tableName string, where, data types.Row) types.QueryResult {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return tableNotFound(schema, tableName)
	}

	affected := 0
	for _, row := range table.Rows {
		if !matchesWhere(row, where) {
			continue
		}
		for k, v := range data {
			row[k] = v
		}
		affected++
	}

	if affected > 0 {
		table.UpdatedAt = e.clock.Now()
		e.persist()
	}

	return types.QueryResult{
		Success:       true,
		RowsAffected:  affected,
		ExecutionTime: elapsedMillis(start),
	}
}

// Delete removes every matching row.
func (e *Engine) Delete(schema, tableName string, where types.Row) types.QueryResult {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return tableNotFound(schema, tableName)
	}

	before := len(table.Rows)
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if !matchesWhere(row, where) {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
	affected := before - len(kept)

	if affected > 0 {
		table.UpdatedAt = e.clock.Now()
		e.persist()
	}

	return types.QueryResult{
		Success:       true,
		RowsAffected:  affected,
		ExecutionTime: elapsedMillis(start),
	}
}

// resolveColumnValue applies the insert precedence for one column.
func (e *Engine) resolveColumnValue(col *types.Column, data types.Row, table *types.Table) interface{} {
	if v, ok := data[col.Name]; ok {
		return v
	}
	if col.Default != nil {
		return e.resolveDefault(col)
	}
	if col.AutoIncrement {
		return nextAutoIncrement(table, col.Name)
	}
	return nil
}

// resolveDefault dispatches on the default variant: generated defaults
// produce a fresh value per call, literals come back as-is.
func (e *Engine) resolveDefault(col *types.Column) interface{} {
	if col.Default == nil {
		return nil
	}
	switch col.Default.Kind {
	case types.DefaultGeneratedUUID:
		return e.ids.NewID()
	case types.DefaultCurrentTimestamp:
		return e.clock.Now().Format(time.RFC3339)
	default:
		return col.Default.Literal
	}
}

// nextAutoIncrement is one more than the column's maximum existing value,
// starting from a baseline of zero on an empty table.
func nextAutoIncrement(table *types.Table, column string) int64 {
	var max float64
	for _, row := range table.Rows {
		if n, ok := types.NumericValue(row[column]); ok && n > max {
			max = n
		}
	}
	return int64(max) + 1
}

// matchesWhere implements the equality-only filter: every key of where
// must equal the row's value.
func matchesWhere(row, where types.Row) bool {
	for k, want := range where {
		if !types.ValuesEqual(row[k], want) {
			return false
		}
	}
	return true
}

// sortRows orders rows by the first ordering key whose values differ.
func sortRows(rows []types.Row, orderBy []types.OrderBy) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range orderBy {
			c := types.CompareValues(rows[i][key.Column], rows[j][key.Column])
			if c == 0 {
				continue
			}
			if strings.EqualFold(key.Direction, "DESC") {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// applyWindow drops offset leading rows, then keeps at most limit rows.
func applyWindow(rows []types.Row, offset, limit int) []types.Row {
	if offset > 0 {
		if offset >= len(rows) {
			return []types.Row{}
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
