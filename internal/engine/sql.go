package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/localbase/local-db/internal/parser"
	"github.com/localbase/local-db/internal/types"
)

// ErrSQLNotImplemented is the error text for statements outside the
// recognized CREATE TABLE / SELECT subset.
const ErrSQLNotImplemented = "SQL parsing not fully implemented for this query"

// historyCap bounds the persisted query history.
const historyCap = 50

// ExecuteSQL recognizes CREATE TABLE and SELECT ... FROM statements and
// dispatches them to the engine. The call sleeps for the configured
// latency to emulate a network round-trip; the delay is not cancellable.
// Unexpected panics are reported as a failed result.
func (e *Engine) ExecuteSQL(sql string) (result types.QueryResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Unexpected failure executing SQL: %v", r)
			result = types.QueryResult{
				Success:       false,
				Error:         fmt.Sprintf("%v", r),
				ExecutionTime: elapsedMillis(start),
			}
		}
	}()

	time.Sleep(e.latency)
	e.SaveQueryToHistory(sql)

	stmt, err := parser.Parse(sql)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, parser.ErrUnsupportedStatement) {
			msg = ErrSQLNotImplemented
		}
		return types.QueryResult{
			Success:       false,
			Error:         msg,
			ExecutionTime: elapsedMillis(start),
		}
	}

	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		columns := make([]types.Column, len(s.Columns))
		for i, col := range s.Columns {
			columns[i] = types.Column{
				Name:     col.Name,
				Type:     types.ColumnType(col.Type),
				Nullable: col.Nullable,
				Primary:  col.Primary,
				Unique:   col.Unique,
				Length:   col.Length,
			}
		}
		// Silent no-op when the table already exists.
		e.CreateTable(s.Schema, &types.Table{Name: s.Table, Columns: columns})
		return types.QueryResult{
			Success:       true,
			RowsAffected:  0,
			ExecutionTime: elapsedMillis(start),
		}

	case *parser.SelectStatement:
		result := e.Select(s.Schema, s.Table, types.SelectOptions{})
		result.ExecutionTime = elapsedMillis(start)
		return result

	default:
		return types.QueryResult{
			Success:       false,
			Error:         ErrSQLNotImplemented,
			ExecutionTime: elapsedMillis(start),
		}
	}
}

// ExplainQuery is a stub for a real query planner: a canned three-step
// plan with a fixed cost, deterministic so callers can assert on it.
func (e *Engine) ExplainQuery(sql string) types.QueryExplanation {
	return types.QueryExplanation{
		Plan: []string{
			"1. Parse statement and resolve target table",
			"2. Sequential scan over table rows",
			"3. Project matching rows into the result set",
		},
		EstimatedCost: 25.0,
		IndexesUsed:   []string{"primary_key"},
		Warnings:      []string{},
	}
}

// SaveQueryToHistory pushes a raw SQL string to the front of the bounded
// history and persists it separately from the snapshot.
func (e *Engine) SaveQueryToHistory(sql string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append([]string{sql}, e.history...)
	if len(e.history) > historyCap {
		e.history = e.history[:historyCap]
	}
	if err := e.store.SaveHistory(e.history); err != nil {
		e.log.Error("Failed to persist query history: %v", err)
	}
}

// QueryHistory returns the history, most recent first.
func (e *Engine) QueryHistory() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, len(e.history))
	copy(out, e.history)
	return out
}
