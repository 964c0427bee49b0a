package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/localbase/local-db/internal/types"
)

const (
	snapshotFile = "snapshot.json"
	historyFile  = "history.json"
)

// FileStore persists the snapshot and the query history as JSON files in a
// directory. Every save rewrites the whole file; there is no partial write
// path, so a persisted snapshot never reflects a half-applied mutation.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadSnapshot() (types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (s *FileStore) SaveSnapshot(snap types.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(filepath.Join(s.dir, snapshotFile), data, 0644)
}

func (s *FileStore) LoadHistory() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, historyFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var history []string
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *FileStore) SaveHistory(history []string) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(filepath.Join(s.dir, historyFile), data, 0644)
}

func (s *FileStore) Close() error {
	return nil
}
