package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbase/local-db/internal/storage"
	"github.com/localbase/local-db/internal/types"
)

func sampleSnapshot() types.Snapshot {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return types.Snapshot{
		"public": {
			"notes": &types.Table{
				ID:     "t-1",
				Name:   "notes",
				Schema: "public",
				Columns: []types.Column{
					{Name: "id", Type: types.TypeUUID, Primary: true, Default: types.UUIDDefault()},
					{Name: "body", Type: types.TypeText, Nullable: true},
					{Name: "rank", Type: types.TypeInteger, Nullable: true},
					{Name: "pinned", Type: types.TypeBoolean, Nullable: true, Default: types.LiteralDefault(false)},
				},
				Rows: []types.Row{
					{"id": "a", "body": "first", "rank": int64(1), "pinned": false},
					{"id": "b", "body": nil, "rank": 2.5, "pinned": true},
					{"id": "c", "body": "third", "rank": int64(3), "pinned": false},
				},
				Indexes:   []types.Index{{Name: "notes_rank_idx", Columns: []string{"rank"}, Unique: false}},
				Policies:  []types.Policy{{ID: "p-1", Name: "read all", Type: "SELECT", Using: "true"}},
				CreatedAt: created,
				UpdatedAt: created,
			},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := storage.NewMemoryStore()

	// Nothing persisted yet
	snap, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)

	original := sampleSnapshot()
	require.NoError(t, s.SaveSnapshot(original))

	loaded, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// The loaded snapshot is an independent copy
	loaded["public"]["notes"].Rows[0]["body"] = "mutated"
	reloaded, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "first", reloaded["public"]["notes"].Rows[0]["body"])
}

func TestMemoryStoreHistory(t *testing.T) {
	s := storage.NewMemoryStore()

	history, err := s.LoadHistory()
	require.NoError(t, err)
	assert.Nil(t, history)

	require.NoError(t, s.SaveHistory([]string{"SELECT * FROM public.notes", "CREATE TABLE t (id INTEGER)"}))

	history, err = s.LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM public.notes", "CREATE TABLE t (id INTEGER)"}, history)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	original := sampleSnapshot()
	require.NoError(t, s.SaveSnapshot(original))
	require.NoError(t, s.SaveHistory([]string{"SELECT * FROM notes"}))
	require.NoError(t, s.Close())

	reopened, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	loaded, err := reopened.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	history, err := reopened.LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM notes"}, history)
}

func TestFileStoreEmptyDirectory(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)

	history, err := s.LoadHistory()
	require.NoError(t, err)
	assert.Nil(t, history)
}

func TestSnapshotNumberNormalization(t *testing.T) {
	s := storage.NewMemoryStore()

	snap := sampleSnapshot()
	require.NoError(t, s.SaveSnapshot(snap))

	loaded, err := s.LoadSnapshot()
	require.NoError(t, err)

	rows := loaded["public"]["notes"].Rows
	assert.Equal(t, int64(1), rows[0]["rank"], "integral numbers load as int64")
	assert.Equal(t, 2.5, rows[1]["rank"], "fractional numbers load as float64")
}

func TestNewStoreFactory(t *testing.T) {
	s, err := storage.NewStore(storage.StoreConfig{Type: storage.MemoryStoreType})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, s)

	s, err = storage.NewStore(storage.StoreConfig{Type: storage.FileStoreType, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, s)

	_, err = storage.NewStore(storage.StoreConfig{Type: storage.FileStoreType})
	assert.Error(t, err)

	_, err = storage.NewStore(storage.StoreConfig{Type: "btree"})
	assert.Error(t, err)
}
