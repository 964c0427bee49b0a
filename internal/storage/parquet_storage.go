package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/localbase/local-db/internal/types"
)

// ParquetRow represents a row in Parquet format with dynamic columns
type ParquetRow struct {
	TableName string `parquet:"name=table_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	DataJSON  string `parquet:"name=data_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ParquetExporter writes read-only columnar copies of tables, one file per
// table. Exports are a reporting surface, not a storage backend; all writes
// keep going through the primary snapshot store.
type ParquetExporter struct {
	baseDir string
}

// NewParquetExporter creates the export directory if needed.
func NewParquetExporter(dataDir string) (*ParquetExporter, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &ParquetExporter{baseDir: dataDir}, nil
}

// ExportSnapshot writes every non-empty table of the snapshot. Tables are
// named <schema>_<table>.parquet. Failures on individual tables are
// reported together so one bad table does not abort the rest.
func (e *ParquetExporter) ExportSnapshot(snap types.Snapshot) error {
	var firstErr error
	for schemaName, tables := range snap {
		for _, table := range tables {
			if err := e.ExportTable(table); err != nil {
				types.GlobalLogger.Warning("Parquet export failed for %s.%s: %v", schemaName, table.Name, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// ExportTable writes one table. Empty tables are skipped.
func (e *ParquetExporter) ExportTable(table *types.Table) error {
	if len(table.Rows) == 0 {
		return nil
	}

	filePath := filepath.Join(e.baseDir, e.fileName(table))
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return err
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ParquetRow), 4)
	if err != nil {
		return err
	}

	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range table.Rows {
		jsonData, err := json.Marshal(row)
		if err != nil {
			return err
		}

		parquetRow := &ParquetRow{
			TableName: table.Name,
			DataJSON:  string(jsonData),
		}

		if err := pw.Write(parquetRow); err != nil {
			return err
		}
	}

	return pw.WriteStop()
}

// ReadTable reads back an exported table's rows, mostly for verification.
func (e *ParquetExporter) ReadTable(table *types.Table) ([]types.Row, error) {
	filePath := filepath.Join(e.baseDir, e.fileName(table))
	fr, err := local.NewLocalFileReader(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Row{}, nil
		}
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetRow), 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	parquetRows := make([]ParquetRow, numRows)
	if err := pr.Read(&parquetRows); err != nil {
		return nil, err
	}

	rows := make([]types.Row, 0, len(parquetRows))
	for _, prow := range parquetRows {
		var row types.Row
		if err := json.Unmarshal([]byte(prow.DataJSON), &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (e *ParquetExporter) fileName(table *types.Table) string {
	return fmt.Sprintf("%s_%s.parquet", table.Schema, table.Name)
}
