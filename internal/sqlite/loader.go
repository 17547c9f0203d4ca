// This file implements JSONL loading on attach and JSONL persistence after
// each mutation.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// loadJSONL inserts every record of sheets.jsonl into the sheets table in a
// single transaction and returns how many rows were loaded. Unknown fields
// are ignored; records that are malformed or violate a constraint are
// skipped.
func loadJSONL(db *sql.DB, dataDir string) (int, error) {
	records, err := readJSONL(filepath.Join(dataDir, sheetsFile))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	loaded, err := insertRecords(tx, "sheets", sheetColumns, records)
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", sheetsFile, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// insertRecords inserts JSONL records into table, extracting only the listed
// columns from each object.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	loaded := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = obj[col]
		}

		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
		loaded++
	}
	return loaded, nil
}

// persistJSONL rewrites sheets.jsonl from the current contents of the sheets
// table. Callers hold the backend write lock.
func (b *Backend) persistJSONL() error {
	sheets, err := b.listLocked()
	if err != nil {
		return err
	}

	records := make([]json.RawMessage, 0, len(sheets))
	for i := range sheets {
		data, err := json.Marshal(toJSON(&sheets[i]))
		if err != nil {
			return fmt.Errorf("marshaling sheet %q: %w", sheets[i].Name, err)
		}
		records = append(records, data)
	}

	return writeJSONL(filepath.Join(b.dataDir(), sheetsFile), records)
}
