package sqlite

// Schema DDL for the sheet store.
const (
	createSheets = `CREATE TABLE sheets (
    sheet_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    row_count INTEGER NOT NULL,
    column_count INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxSheetsUpdated = `CREATE INDEX idx_sheets_updated ON sheets(updated_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSheets,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSheetsUpdated,
}

// sheetColumns is the column order shared by queries, JSONL loading and
// row scanning.
var sheetColumns = []string{"sheet_id", "name", "row_count", "column_count", "content", "created_at", "updated_at"}
