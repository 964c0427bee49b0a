package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/localbase/local-db/internal/engine"
	"github.com/localbase/local-db/internal/storage"
	"github.com/localbase/local-db/internal/types"
)

func main() {
	fmt.Println("LocalBase SQL Console")
	fmt.Println("Type 'exit' to quit, '\\help' for console commands")

	config := storage.StoreConfig{
		Type: storage.FileStoreType,
		Path: "data",
	}
	store, err := storage.NewStore(config)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		return
	}

	eng, err := engine.New(store)
	if err != nil {
		fmt.Printf("Error initializing engine: %v\n", err)
		return
	}

	reader := bufio.NewReader(os.Stdin)

	// Check if we're in interactive mode or piped input
	isInteractive := true
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		isInteractive = false
	}

	for {
		if isInteractive {
			fmt.Print("> ")
		}

		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if isInteractive {
					fmt.Println("Goodbye!")
				}
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.ToLower(input) == "exit" {
			fmt.Println("Goodbye!")
			break
		}

		if strings.HasPrefix(input, "\\") {
			runConsoleCommand(eng, input)
			continue
		}

		result := eng.ExecuteSQL(input)
		if !result.Success {
			fmt.Printf("Error: %s\n", result.Error)
			continue
		}
		if result.Data != nil {
			printFormattedResults(result.Data)
		}
		fmt.Printf("(%d rows affected, %.2f ms)\n", result.RowsAffected, result.ExecutionTime)
	}

	if err := eng.Close(); err != nil {
		fmt.Printf("Error closing storage: %v\n", err)
	}
}

// runConsoleCommand handles the backslash commands that surface engine
// operations the two-form SQL recognizer cannot reach.
func runConsoleCommand(eng *engine.Engine, input string) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "\\help":
		fmt.Println("\\schemas            list schemas")
		fmt.Println("\\tables [schema]    list tables in a schema (default public)")
		fmt.Println("\\history            show recent queries")
		fmt.Println("\\stats              database totals")
		fmt.Println("\\export <dir>       export all tables as Parquet files")
	case "\\schemas":
		for _, name := range eng.Schemas() {
			fmt.Println(name)
		}
	case "\\tables":
		schema := engine.DefaultSchema
		if len(fields) > 1 {
			schema = fields[1]
		}
		tables := eng.Tables(schema)
		if len(tables) == 0 {
			fmt.Printf("No tables in schema %s\n", schema)
			return
		}
		for _, t := range tables {
			fmt.Printf("%s (%d columns, %d rows)\n", t.Name, len(t.Columns), len(t.Rows))
		}
	case "\\history":
		for i, sql := range eng.QueryHistory() {
			fmt.Printf("%2d: %s\n", i+1, sql)
		}
	case "\\stats":
		stats := eng.Stats()
		fmt.Printf("%d schemas, %d tables, %d rows\n", stats.Schemas, stats.Tables, stats.Rows)
	case "\\export":
		if len(fields) < 2 {
			fmt.Println("Usage: \\export <dir>")
			return
		}
		exporter, err := storage.NewParquetExporter(fields[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if err := exporter.ExportSnapshot(eng.Snapshot()); err != nil {
			fmt.Printf("Export finished with errors: %v\n", err)
			return
		}
		fmt.Printf("Exported to %s\n", fields[1])
	default:
		fmt.Printf("Unknown command %s\n", fields[0])
	}
}

// printFormattedResults formats and prints the results of a SELECT query in a tabular format
func printFormattedResults(rows []types.Row) {
	if len(rows) == 0 {
		fmt.Println("Empty result set")
		return
	}

	// Get column names and calculate their max width
	columns := make([]string, 0)
	columnWidths := make(map[string]int)

	for _, row := range rows {
		for col := range row {
			if !contains(columns, col) {
				columns = append(columns, col)
				columnWidths[col] = len(col)
			}
		}
	}

	// Sort columns for consistent display
	sort.Strings(columns)

	for _, row := range rows {
		for _, col := range columns {
			if val, ok := row[col]; ok {
				valStr := fmt.Sprintf("%v", val)
				if len(valStr) > columnWidths[col] {
					columnWidths[col] = len(valStr)
				}
			}
		}
	}

	// Print header
	for i, col := range columns {
		if i > 0 {
			fmt.Print(" | ")
		}
		fmt.Printf("%-*s", columnWidths[col], col)
	}
	fmt.Println()

	// Print separator
	for i, col := range columns {
		if i > 0 {
			fmt.Print("-+-")
		}
		for j := 0; j < columnWidths[col]; j++ {
			fmt.Print("-")
		}
	}
	fmt.Println()

	// Print data rows
	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Print(" | ")
			}
			val, ok := row[col]
			if !ok || val == nil {
				val = "NULL"
			}
			fmt.Printf("%-*v", columnWidths[col], val)
		}
		fmt.Println()
	}
}

// contains checks if a string slice contains a specific string
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
