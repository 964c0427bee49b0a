package storage

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/localbase/local-db/internal/types"
)

// SnapshotStore is the persistence backend of the engine: an opaque
// load/save pair over the whole database snapshot, plus the separately
// persisted query history. Implementations are synchronous; the engine
// writes through on every mutation.
type SnapshotStore interface {
	// LoadSnapshot returns the persisted snapshot, or nil when none exists.
	LoadSnapshot() (types.Snapshot, error)
	SaveSnapshot(types.Snapshot) error
	LoadHistory() ([]string, error)
	SaveHistory([]string) error
	Close() error
}

// MemoryStore keeps the serialized snapshot in memory. Saving and loading
// go through the same codec as the file store, so a load always yields an
// independent copy with normalized values.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot []byte
	history  []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadSnapshot() (types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, nil
	}
	return decodeSnapshot(s.snapshot)
}

func (s *MemoryStore) SaveSnapshot(snap types.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = data
	return nil
}

func (s *MemoryStore) LoadHistory() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.history == nil {
		return nil, nil
	}
	var history []string
	if err := json.Unmarshal(s.history, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *MemoryStore) SaveHistory(history []string) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = data
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func encodeSnapshot(snap types.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// decodeSnapshot parses a serialized snapshot, decoding numbers through
// json.Number and normalizing them so integral values come back as int64.
func decodeSnapshot(data []byte) (types.Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var snap types.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}

	for _, tables := range snap {
		for _, table := range tables {
			if table.Rows == nil {
				table.Rows = []types.Row{}
			}
			if table.Indexes == nil {
				table.Indexes = []types.Index{}
			}
			if table.Policies == nil {
				table.Policies = []types.Policy{}
			}
			for _, row := range table.Rows {
				for k, v := range row {
					row[k] = types.NormalizeValue(v)
				}
			}
		}
	}

	return snap, nil
}
