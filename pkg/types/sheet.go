package types

import (
	"strings"
	"time"
)

// maxNameLength bounds sheet names.
const maxNameLength = 128

// Sheet is a named, persisted snapshot of a table.
type Sheet struct {
	SheetID   string    `json:"sheet_id"`   // UUID v7, generated on first save.
	Name      string    `json:"name"`       // Unique, human-readable name.
	Rows      int       `json:"rows"`       // Table rows (>= 1).
	Columns   int       `json:"columns"`    // Table columns (>= 1).
	Content   string    `json:"content"`    // Delimited serialization of the table.
	CreatedAt time.Time `json:"created_at"` // Timestamp of the first save.
	UpdatedAt time.Time `json:"updated_at"` // Timestamp of the last save.
}

// Validate checks the fields a backend relies on. It returns ErrInvalidName
// for an empty, overlong or whitespace-padded name and ErrInvalidData for
// non-positive dimensions.
func (s *Sheet) Validate() error {
	if s.Name == "" || len(s.Name) > maxNameLength || strings.TrimSpace(s.Name) != s.Name {
		return ErrInvalidName
	}
	if s.Rows < 1 || s.Columns < 1 {
		return ErrInvalidData
	}
	return nil
}
