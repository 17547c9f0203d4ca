package sqlite

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields no records", func(t *testing.T) {
		records, err := readJSONL(filepath.Join(dir, "absent.jsonl"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("empty and malformed lines are skipped", func(t *testing.T) {
		path := filepath.Join(dir, "mixed.jsonl")
		content := "{\"a\":1}\n\n{broken\n{\"a\":2}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		records, err := readJSONL(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.JSONEq(t, `{"a":1}`, string(records[0]))
		assert.JSONEq(t, `{"a":2}`, string(records[1]))
	})
}

func TestWriteJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sheetsFile)
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	records := []json.RawMessage{
		json.RawMessage(`{"name":"one"}`),
		json.RawMessage(`{"name":"two"}`),
	}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"one\"}\n{\"name\":\"two\"}\n", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnsureJSONL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ensureJSONL(dir))
	assert.FileExists(t, filepath.Join(dir, sheetsFile))

	// Existing content is kept.
	path := filepath.Join(dir, sheetsFile)
	require.NoError(t, os.WriteFile(path, []byte("{\"name\":\"kept\"}\n"), 0o644))
	require.NoError(t, ensureJSONL(dir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}

func openSchema(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), dbFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	return db
}

func TestLoadJSONL(t *testing.T) {
	t.Run("empty file loads nothing", func(t *testing.T) {
		db := openSchema(t)
		dir := t.TempDir()
		require.NoError(t, ensureJSONL(dir))

		n, err := loadJSONL(db, dir)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("duplicate names and missing columns are skipped", func(t *testing.T) {
		db := openSchema(t)
		dir := t.TempDir()
		content := `{"sheet_id":"a","name":"dup","row_count":1,"column_count":1,"content":"1,\n","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"sheet_id":"b","name":"dup","row_count":1,"column_count":1,"content":"2,\n","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"sheet_id":"c","name":"nocontent","row_count":1,"column_count":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"sheet_id":"d","name":"extra","row_count":2,"column_count":3,"content":"","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z","owner":"someone"}
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, sheetsFile), []byte(content), 0o644))

		n, err := loadJSONL(db, dir)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		var names []string
		rows, err := db.Query("SELECT name FROM sheets ORDER BY name")
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			names = append(names, name)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"dup", "extra"}, names)
	})
}
