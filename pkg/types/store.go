package types

import "errors"

// SheetStore defines backend-agnostic persistence of named sheets.
// Callers attach to a backend, save and load sheets by name, and detach when
// done.
type SheetStore interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every other operation returns ErrStoreDetached.
	Detach() error

	// Save creates or updates the sheet with sheet.Name. When SheetID is
	// empty a new UUID v7 is generated for a new sheet; an existing sheet
	// keeps its ID and CreatedAt. Returns the ID used.
	Save(sheet *Sheet) (string, error)

	// Get returns the sheet with the given name.
	// Returns ErrNotFound if no sheet has that name.
	Get(name string) (*Sheet, error)

	// List returns every stored sheet ordered by name.
	List() ([]Sheet, error)

	// Delete removes the sheet with the given name.
	// Returns ErrNotFound if no sheet has that name.
	Delete(name string) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("sheet store is detached")
	ErrAlreadyAttached = errors.New("sheet store is already attached")
)

// Sheet operation errors.
var (
	ErrNotFound    = errors.New("sheet not found")
	ErrInvalidName = errors.New("invalid sheet name")
	ErrInvalidData = errors.New("invalid sheet data")
)
