package storage

import "fmt"

type StoreType string

const (
	MemoryStoreType StoreType = "memory"
	FileStoreType   StoreType = "file"
)

type StoreConfig struct {
	Type StoreType
	Path string // Used for file storage
}

// NewStore creates a new snapshot store based on the provided configuration
func NewStore(config StoreConfig) (SnapshotStore, error) {
	switch config.Type {
	case MemoryStoreType:
		return NewMemoryStore(), nil
	case FileStoreType:
		if config.Path == "" {
			return nil, fmt.Errorf("path is required for file storage")
		}
		return NewFileStore(config.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}
