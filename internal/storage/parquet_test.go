package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbase/local-db/internal/storage"
	"github.com/localbase/local-db/internal/types"
)

func TestParquetExportAndReadBack(t *testing.T) {
	dir := t.TempDir()
	exporter, err := storage.NewParquetExporter(dir)
	require.NoError(t, err)

	table := &types.Table{
		ID:     "t-1",
		Name:   "events",
		Schema: "public",
		Columns: []types.Column{
			{Name: "id", Type: types.TypeInteger},
			{Name: "kind", Type: types.TypeText},
		},
		Rows: []types.Row{
			{"id": float64(1), "kind": "signup"},
			{"id": float64(2), "kind": "login"},
		},
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, exporter.ExportTable(table))

	_, err = os.Stat(filepath.Join(dir, "public_events.parquet"))
	require.NoError(t, err)

	rows, err := exporter.ReadTable(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "signup", rows[0]["kind"])
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Equal(t, "login", rows[1]["kind"])
}

func TestParquetExportSkipsEmptyTables(t *testing.T) {
	dir := t.TempDir()
	exporter, err := storage.NewParquetExporter(dir)
	require.NoError(t, err)

	table := &types.Table{
		ID:     "t-2",
		Name:   "empty",
		Schema: "public",
		Rows:   []types.Row{},
	}

	require.NoError(t, exporter.ExportTable(table))

	_, err = os.Stat(filepath.Join(dir, "public_empty.parquet"))
	assert.True(t, os.IsNotExist(err))

	rows, err := exporter.ReadTable(table)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParquetExportSnapshot(t *testing.T) {
	dir := t.TempDir()
	exporter, err := storage.NewParquetExporter(dir)
	require.NoError(t, err)

	snap := sampleSnapshot()
	require.NoError(t, exporter.ExportSnapshot(snap))

	_, err = os.Stat(filepath.Join(dir, "public_notes.parquet"))
	require.NoError(t, err)
}
