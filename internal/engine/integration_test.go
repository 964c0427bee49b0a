package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbase/local-db/internal/engine"
	"github.com/localbase/local-db/internal/storage"
	"github.com/localbase/local-db/internal/types"
)

// End-to-end over the file store: every mutation is written through, so a
// second engine opened on the same directory sees the exact same state.
func TestFileStoreEndToEnd(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.NewStore(storage.StoreConfig{Type: storage.FileStoreType, Path: dir})
	require.NoError(t, err)

	e1, err := engine.New(store, engine.WithLatency(0))
	require.NoError(t, err)

	res := e1.ExecuteSQL("CREATE TABLE crm.contacts (id INTEGER, email VARCHAR(255) UNIQUE NOT NULL)")
	require.True(t, res.Success)

	require.True(t, e1.Insert("crm", "contacts", types.Row{"id": 1, "email": "x@y.z"}).Success)
	require.True(t, e1.AddColumn("crm", "contacts", types.Column{
		Name:    "stage",
		Type:    types.TypeText,
		Default: types.LiteralDefault("lead"),
	}))
	require.NoError(t, e1.Close())

	store2, err := storage.NewStore(storage.StoreConfig{Type: storage.FileStoreType, Path: dir})
	require.NoError(t, err)
	e2, err := engine.New(store2, engine.WithLatency(0))
	require.NoError(t, err)

	assert.Equal(t, []string{"public", "crm"}, e2.Schemas())

	contacts, ok := e2.Table("crm", "contacts")
	require.True(t, ok)
	require.Len(t, contacts.Rows, 1)
	assert.Equal(t, int64(1), contacts.Rows[0]["id"], "numbers reload as int64")
	assert.Equal(t, "lead", contacts.Rows[0]["stage"], "backfill survived the reload")

	res = e2.ExecuteSQL("SELECT * FROM crm.contacts")
	require.True(t, res.Success)
	assert.Equal(t, 1, res.RowsAffected)

	history := e2.QueryHistory()
	require.NotEmpty(t, history)
	assert.Equal(t, "SELECT * FROM crm.contacts", history[0])
}
