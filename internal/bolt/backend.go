// Package bolt implements the bbolt sheet store: one database file in the
// data directory with a single bucket keyed by sheet name whose values are
// JSON-encoded sheets.
package bolt

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/mesh-intelligence/etable/pkg/types"
)

// dbFile is the bbolt database inside DataDir.
const dbFile = "sheets.bolt"

// sheetsBucket holds every sheet.
var sheetsBucket = []byte("sheets")

// openTimeout bounds waiting for the file lock held by another process.
const openTimeout = 2 * time.Second

// Backend implements types.SheetStore on bbolt.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *bbolt.DB
	logger   *slog.Logger
	now      func() time.Time
}

// NewBackend creates a detached bbolt backend. A nil logger discards output.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{
		logger: logger.With("backend", types.BackendBolt),
		now:    time.Now,
	}
}

// Attach opens (creating when needed) DataDir/sheets.bolt and its bucket.
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

	db, err := bbolt.Open(filepath.Join(dataDir, dbFile), 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sheetsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("create bucket: %w", err)
	}

	b.db = db
	b.attached = true
	b.logger.Debug("attached", "data_dir", dataDir)
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	b.logger.Debug("detached")
	return nil
}

// Save inserts or updates a sheet by name.
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

	stored := *sheet
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sheetsBucket)
		now := b.now()

		if data := bucket.Get([]byte(sheet.Name)); data != nil {
			var existing types.Sheet
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("decode sheet %q: %w", sheet.Name, err)
			}
			stored.SheetID = existing.SheetID
			stored.CreatedAt = existing.CreatedAt
		} else {
			if stored.SheetID == "" {
				stored.SheetID = uuid.Must(uuid.NewV7()).String()
			}
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("encode sheet %q: %w", sheet.Name, err)
		}
		return bucket.Put([]byte(sheet.Name), data)
	})
	if err != nil {
		return "", err
	}

	*sheet = stored
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

	var sheet *types.Sheet
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sheetsBucket).Get([]byte(name))
		if data == nil {
			return types.ErrNotFound
		}
		sheet = &types.Sheet{}
		if err := json.Unmarshal(data, sheet); err != nil {
			return fmt.Errorf("decode sheet %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// List returns every sheet ordered by name. bbolt keeps keys sorted, so the
// cursor order is the name order.
func (b *Backend) List() ([]types.Sheet, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var sheets []types.Sheet
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(sheetsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sheet types.Sheet
			if err := json.Unmarshal(v, &sheet); err != nil {
				b.logger.Warn("skipping undecodable sheet", "name", string(k), "err", err)
				continue
			}
			sheets = append(sheets, sheet)
		}
		return nil
	})
	return sheets, err
}

// Delete removes the sheet with the given name.
func (b *Backend) Delete(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sheetsBucket)
		if bucket.Get([]byte(name)) == nil {
			return types.ErrNotFound
		}
		return bucket.Delete([]byte(name))
	})
}
