package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/etable/pkg/types"
)

// sheetJSON represents a sheet in sheets.jsonl.
type sheetJSON struct {
	SheetID   string `json:"sheet_id"`
	Name      string `json:"name"`
	Rows      int    `json:"row_count"`
	Columns   int    `json:"column_count"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// formatTime renders timestamps the way they are stored in both SQLite and
// JSONL.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the inverse of formatTime.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// toJSON converts a sheet to its file record.
func toJSON(s *types.Sheet) sheetJSON {
	return sheetJSON{
		SheetID:   s.SheetID,
		Name:      s.Name,
		Rows:      s.Rows,
		Columns:   s.Columns,
		Content:   s.Content,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}
