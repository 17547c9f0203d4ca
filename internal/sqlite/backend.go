// Package sqlite implements the SQLite sheet store. SQLite is the query
// engine; sheets.jsonl in the data directory is the source of truth. The
// database is rebuilt from the JSONL file on every Attach and the file is
// rewritten atomically after every mutation.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/etable/pkg/types"
)

// dbFile is the SQLite database inside DataDir.
const dbFile = "sheets.db"

// Backend implements types.SheetStore on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
	now      func() time.Time
}

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize. A nil logger discards
// output.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{
		logger: logger.With("backend", types.BackendSQLite),
		now:    time.Now,
	}
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Attach creates DataDir if needed, builds a fresh SQLite schema and loads
// sheets.jsonl into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The database is a cache of the JSONL file; start from scratch.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := ensureJSONL(dataDir); err != nil {
		db.Close()
		return err
	}
	loaded, err := loadJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	b.db = db
	b.config = config
	b.attached = true
	b.logger.Debug("attached", "data_dir", dataDir, "sheets", loaded)
	return nil
}

// Detach closes the SQLite connection. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.logger.Debug("detached")
	return nil
}

// Save inserts or updates a sheet by name and persists sheets.jsonl. On
// success sheet.SheetID, CreatedAt and UpdatedAt hold the stored values.
func (b *Backend) Save(sheet *types.Sheet) (string, error) {
	if sheet == nil {
		return "", types.ErrInvalidData
	}
	if err := sheet.Validate(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrStoreDetached
	}

	now := b.now()
	existing, err := b.getLocked(sheet.Name)
	switch {
	case err == nil:
		_, err = b.db.Exec(
			`UPDATE sheets SET row_count = ?, column_count = ?, content = ?, updated_at = ? WHERE sheet_id = ?`,
			sheet.Rows, sheet.Columns, sheet.Content, formatTime(now), existing.SheetID,
		)
		if err != nil {
			return "", fmt.Errorf("update sheet: %w", err)
		}
		sheet.SheetID = existing.SheetID
		sheet.CreatedAt = existing.CreatedAt
	case errors.Is(err, types.ErrNotFound):
		if sheet.SheetID == "" {
			sheet.SheetID = newUUID()
		}
		sheet.CreatedAt = now
		_, err = b.db.Exec(
			`INSERT INTO sheets (sheet_id, name, row_count, column_count, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sheet.SheetID, sheet.Name, sheet.Rows, sheet.Columns, sheet.Content, formatTime(now), formatTime(now),
		)
		if err != nil {
			return "", fmt.Errorf("insert sheet: %w", err)
		}
	default:
		return "", err
	}
	sheet.UpdatedAt = now

	if err := b.persistJSONL(); err != nil {
		return "", fmt.Errorf("persist JSONL: %w", err)
	}
	b.logger.Debug("saved sheet", "name", sheet.Name, "id", sheet.SheetID)
	return sheet.SheetID, nil
}

// Get returns the sheet with the given name.
func (b *Backend) Get(name string) (*types.Sheet, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.getLocked(name)
}

// List returns every sheet ordered by name.
func (b *Backend) List() ([]types.Sheet, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.listLocked()
}

// Delete removes the sheet with the given name and persists sheets.jsonl.
func (b *Backend) Delete(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec(`DELETE FROM sheets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if err := b.persistJSONL(); err != nil {
		return fmt.Errorf("persist JSONL: %w", err)
	}
	b.logger.Debug("deleted sheet", "name", name)
	return nil
}

// dataDir returns the attached data directory.
func (b *Backend) dataDir() string {
	return b.config.DataDir
}

func (b *Backend) getLocked(name string) (*types.Sheet, error) {
	row := b.db.QueryRow(`SELECT sheet_id, name, row_count, column_count, content, created_at, updated_at FROM sheets WHERE name = ?`, name)
	sheet, err := scanSheet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sheet: %w", err)
	}
	return sheet, nil
}

func (b *Backend) listLocked() ([]types.Sheet, error) {
	rows, err := b.db.Query(`SELECT sheet_id, name, row_count, column_count, content, created_at, updated_at FROM sheets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []types.Sheet
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("list sheets: %w", err)
		}
		sheets = append(sheets, *sheet)
	}
	return sheets, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSheet(s scanner) (*types.Sheet, error) {
	var sheet types.Sheet
	var createdAt, updatedAt string
	if err := s.Scan(&sheet.SheetID, &sheet.Name, &sheet.Rows, &sheet.Columns, &sheet.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if sheet.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sheet.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &sheet, nil
}
