// Package engine implements the relational store engine: schemas, tables,
// columns and rows held in memory, written through to a snapshot store on
// every mutation. There is no real server behind it; latency is simulated.
package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/localbase/local-db/internal/storage"
	"github.com/localbase/local-db/internal/types"
)

// DefaultSchema is the schema seeded at first use.
const DefaultSchema = "public"

// Engine owns the database snapshot. Every public operation is its own
// critical section under a single lock, so a persisted snapshot never
// reflects a partially-applied mutation.
type Engine struct {
	mu          sync.RWMutex
	store       storage.SnapshotStore
	db          types.Snapshot
	schemaOrder []string
	history     []string
	ids         IDGenerator
	clock       Clock
	latency     time.Duration
	log         *types.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator replaces the UUID-based identifier generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLatency sets the simulated network delay applied by ExecuteSQL.
func WithLatency(d time.Duration) Option {
	return func(e *Engine) { e.latency = d }
}

// WithLogger replaces the global logger.
func WithLogger(log *types.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New loads the snapshot from the store, or initializes an empty database
// with the public schema, then seeds the default users table if absent.
// Seeding happens here, deterministically, never on first access.
func New(store storage.SnapshotStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   store,
		ids:     uuidGenerator{},
		clock:   systemClock{},
		latency: 150 * time.Millisecond,
		log:     types.GlobalLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	snap, err := store.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = types.Snapshot{DefaultSchema: {}}
	}
	if _, ok := snap[DefaultSchema]; !ok {
		snap[DefaultSchema] = map[string]*types.Table{}
	}
	e.db = snap
	e.rebuildSchemaOrder()

	seeded := e.seedUsersTable()

	history, err := store.LoadHistory()
	if err != nil {
		return nil, err
	}
	e.history = history

	if seeded {
		if err := e.store.SaveSnapshot(e.db); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// rebuildSchemaOrder derives a deterministic schema order from a loaded
// snapshot: public first, remaining names sorted. JSON objects carry no
// order, so insertion order cannot survive a reload.
func (e *Engine) rebuildSchemaOrder() {
	names := make([]string, 0, len(e.db))
	for name := range e.db {
		if name != DefaultSchema {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	e.schemaOrder = append([]string{DefaultSchema}, names...)
}

// seedUsersTable creates the default users table when missing and reports
// whether it did.
func (e *Engine) seedUsersTable() bool {
	if _, ok := e.db[DefaultSchema]["users"]; ok {
		return false
	}

	now := e.clock.Now()
	e.db[DefaultSchema]["users"] = &types.Table{
		ID:     e.ids.NewID(),
		Name:   "users",
		Schema: DefaultSchema,
		Columns: []types.Column{
			{Name: "id", Type: types.TypeUUID, Nullable: false, Primary: true, Default: types.UUIDDefault()},
			{Name: "email", Type: types.TypeVarchar, Nullable: false, Unique: true, Length: 255},
			{Name: "name", Type: types.TypeVarchar, Nullable: false, Length: 100},
			{Name: "avatar_url", Type: types.TypeText, Nullable: true},
			{Name: "created_at", Type: types.TypeTimestamp, Nullable: false, Default: types.NowDefault()},
		},
		Rows:      []types.Row{},
		Indexes:   []types.Index{},
		Policies:  []types.Policy{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.log.Info("Seeded default table %s.users", DefaultSchema)
	return true
}

// persist writes the whole snapshot through to the store. Callers hold the
// write lock. Failures are logged; the in-memory mutation stands.
func (e *Engine) persist() {
	if err := e.store.SaveSnapshot(e.db); err != nil {
		e.log.Error("Failed to persist snapshot: %v", err)
	}
}

// Schemas returns schema names in insertion order.
func (e *Engine) Schemas() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, len(e.schemaOrder))
	copy(out, e.schemaOrder)
	return out
}

// Tables returns a schema's tables sorted by creation time, then name.
// The result is empty for an unknown schema.
func (e *Engine) Tables(schema string) []*types.Table {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tables := make([]*types.Table, 0, len(e.db[schema]))
	for _, t := range e.db[schema] {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		if !tables[i].CreatedAt.Equal(tables[j].CreatedAt) {
			return tables[i].CreatedAt.Before(tables[j].CreatedAt)
		}
		return tables[i].Name < tables[j].Name
	})
	return tables
}

// Table looks up one table.
func (e *Engine) Table(schema, name string) (*types.Table, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.db[schema][name]
	return t, ok
}

// CreateTable inserts a table into a schema, creating the schema if it
// does not exist yet. It returns false when a table with that name is
// already present. The engine assigns the ID and timestamps when unset.
func (e *Engine) CreateTable(schema string, table *types.Table) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.db[schema][table.Name]; exists {
		return false
	}

	if _, ok := e.db[schema]; !ok {
		e.db[schema] = map[string]*types.Table{}
		e.schemaOrder = append(e.schemaOrder, schema)
	}

	if table.ID == "" {
		table.ID = e.ids.NewID()
	}
	table.Schema = schema
	now := e.clock.Now()
	if table.CreatedAt.IsZero() {
		table.CreatedAt = now
	}
	if table.UpdatedAt.IsZero() {
		table.UpdatedAt = now
	}
	if table.Rows == nil {
		table.Rows = []types.Row{}
	}
	if table.Indexes == nil {
		table.Indexes = []types.Index{}
	}
	if table.Policies == nil {
		table.Policies = []types.Policy{}
	}

	e.db[schema][table.Name] = table
	e.persist()
	return true
}

// DropTable removes a table and all its rows. False when absent.
func (e *Engine) DropTable(schema, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.db[schema][name]; !exists {
		return false
	}
	delete(e.db[schema], name)
	e.persist()
	return true
}

// AddColumn appends a column and backfills every existing row with the
// column's resolved default, or nil when it has none.
func (e *Engine) AddColumn(schema, tableName string, col types.Column) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists || table.HasColumn(col.Name) {
		return false
	}

	table.Columns = append(table.Columns, col)
	for _, row := range table.Rows {
		row[col.Name] = e.resolveDefault(&col)
	}
	table.UpdatedAt = e.clock.Now()
	e.persist()
	return true
}

// RemoveColumn drops a column declaration and deletes its key from every
// existing row.
func (e *Engine) RemoveColumn(schema, tableName, columnName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return false
	}

	idx := -1
	for i := range table.Columns {
		if table.Columns[i].Name == columnName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	table.Columns = append(table.Columns[:idx], table.Columns[idx+1:]...)
	for _, row := range table.Rows {
		delete(row, columnName)
	}
	table.UpdatedAt = e.clock.Now()
	e.persist()
	return true
}

// AddIndex records a declared index on a table. No physical structure is
// built; the metadata is persisted with the table.
func (e *Engine) AddIndex(schema, tableName string, index types.Index) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return false
	}
	for _, existing := range table.Indexes {
		if existing.Name == index.Name {
			return false
		}
	}

	table.Indexes = append(table.Indexes, index)
	table.UpdatedAt = e.clock.Now()
	e.persist()
	return true
}

// AddPolicy records a declared row-level policy. Policies are never
// evaluated against operations.
func (e *Engine) AddPolicy(schema, tableName string, policy types.Policy) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return false
	}
	if policy.ID == "" {
		policy.ID = e.ids.NewID()
	}

	table.Policies = append(table.Policies, policy)
	table.UpdatedAt = e.clock.Now()
	e.persist()
	return true
}

// RemovePolicy deletes a declared policy by ID.
func (e *Engine) RemovePolicy(schema, tableName, policyID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, exists := e.db[schema][tableName]
	if !exists {
		return false
	}
	for i := range table.Policies {
		if table.Policies[i].ID == policyID {
			table.Policies = append(table.Policies[:i], table.Policies[i+1:]...)
			table.UpdatedAt = e.clock.Now()
			e.persist()
			return true
		}
	}
	return false
}

// Stats summarizes the database for display.
func (e *Engine) Stats() types.DatabaseStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := types.DatabaseStats{Schemas: len(e.db)}
	for _, tables := range e.db {
		stats.Tables += len(tables)
		for _, t := range tables {
			stats.Rows += len(t.Rows)
		}
	}
	return stats
}

// Snapshot returns the live database structure. Callers must treat it as
// read-only; it is exposed for export and display.
func (e *Engine) Snapshot() types.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.db
}
