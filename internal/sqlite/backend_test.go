// Tests for the SQLite sheet store.
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/etable/pkg/types"
)

func attachedBackend(t *testing.T, dataDir string) *Backend {
	t.Helper()
	b := NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend(nil)
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}
	require.NoError(t, b.Attach(config))

	assert.FileExists(t, filepath.Join(tmpDir, dbFile))
	assert.FileExists(t, filepath.Join(tmpDir, sheetsFile))

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
	require.NoError(t, b.Detach())
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend(nil)
	err := b.Attach(types.Config{Backend: "", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.List()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Get("x")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Save(&types.Sheet{Name: "x", Rows: 1, Columns: 1})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Delete("x"), types.ErrStoreDetached)
}

func TestBackend_SaveAndGet(t *testing.T) {
	b := attachedBackend(t, t.TempDir())

	sheet := &types.Sheet{Name: "budget", Rows: 2, Columns: 2, Content: "1,2,\n3,4,\n"}
	id, err := b.Save(sheet)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, sheet.SheetID)
	assert.False(t, sheet.CreatedAt.IsZero())

	got, err := b.Get("budget")
	require.NoError(t, err)
	assert.Equal(t, id, got.SheetID)
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, 2, got.Columns)
	assert.Equal(t, "1,2,\n3,4,\n", got.Content)
	assert.True(t, got.CreatedAt.Equal(sheet.CreatedAt))
}

func TestBackend_SaveUpdatesByName(t *testing.T) {
	b := attachedBackend(t, t.TempDir())
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return clock }

	first := &types.Sheet{Name: "s", Rows: 1, Columns: 1, Content: "1,\n"}
	id, err := b.Save(first)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second := &types.Sheet{Name: "s", Rows: 1, Columns: 2, Content: "1,2,\n"}
	id2, err := b.Save(second)
	require.NoError(t, err)
	assert.Equal(t, id, id2, "update keeps the sheet ID")

	got, err := b.Get("s")
	require.NoError(t, err)
	assert.Equal(t, "1,2,\n", got.Content)
	assert.Equal(t, 2, got.Columns)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.True(t, got.UpdatedAt.Equal(clock))

	sheets, err := b.List()
	require.NoError(t, err)
	assert.Len(t, sheets, 1)
}

func TestBackend_SaveValidation(t *testing.T) {
	b := attachedBackend(t, t.TempDir())

	_, err := b.Save(nil)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, err = b.Save(&types.Sheet{Name: "", Rows: 1, Columns: 1})
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = b.Save(&types.Sheet{Name: "x", Rows: 0, Columns: 1})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestBackend_ListOrderedByName(t *testing.T) {
	b := attachedBackend(t, t.TempDir())

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		_, err := b.Save(&types.Sheet{Name: name, Rows: 1, Columns: 1, Content: ",\n"})
		require.NoError(t, err)
	}

	sheets, err := b.List()
	require.NoError(t, err)
	require.Len(t, sheets, 3)
	assert.Equal(t, "alpha", sheets[0].Name)
	assert.Equal(t, "bravo", sheets[1].Name)
	assert.Equal(t, "charlie", sheets[2].Name)
}

func TestBackend_Delete(t *testing.T) {
	b := attachedBackend(t, t.TempDir())

	_, err := b.Save(&types.Sheet{Name: "gone", Rows: 1, Columns: 1})
	require.NoError(t, err)

	require.NoError(t, b.Delete("gone"))
	_, err = b.Get("gone")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.Delete("gone"), types.ErrNotFound)
}

// Sheets survive a detach/attach cycle because sheets.jsonl is the source
// of truth and the database is rebuilt from it.
func TestBackend_PersistsAcrossAttach(t *testing.T) {
	dir := t.TempDir()

	b := NewBackend(nil)
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}
	require.NoError(t, b.Attach(config))
	_, err := b.Save(&types.Sheet{Name: "keep", Rows: 1, Columns: 2, Content: `"a",1,` + "\n"})
	require.NoError(t, err)
	_, err = b.Save(&types.Sheet{Name: "drop", Rows: 1, Columns: 1})
	require.NoError(t, err)
	require.NoError(t, b.Delete("drop"))
	require.NoError(t, b.Detach())

	data, err := os.ReadFile(filepath.Join(dir, sheetsFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))

	b2 := attachedBackend(t, dir)
	got, err := b2.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, `"a",1,`+"\n", got.Content)
	_, err = b2.Get("drop")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestBackend_SkipsMalformedJSONL(t *testing.T) {
	dir := t.TempDir()
	lines := strings.Join([]string{
		`{"sheet_id":"id-1","name":"ok","row_count":1,"column_count":1,"content":"1,\n","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z","future_field":true}`,
		`not json`,
		`{"sheet_id":"id-2","name":"missing-dims","content":"","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`,
		``,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, sheetsFile), []byte(lines), 0o644))

	b := attachedBackend(t, dir)
	sheets, err := b.List()
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "ok", sheets[0].Name)
	assert.Equal(t, "id-1", sheets[0].SheetID)
}
