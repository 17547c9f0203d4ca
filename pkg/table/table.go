// Package table implements a fixed-size spreadsheet grid of typed cells.
//
// Raw input is classified into empty, quoted text, number or formula cells.
// Formulas are evaluated once, when the cell is created, against the cells
// they reference; the result is frozen into a number cell. Anything that
// cannot be classified, and any formula that divides by zero, becomes an
// error cell.
//
// A Table is not safe for concurrent use.
package table

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/etable/internal/strutil"
)

// Table is a rows x columns grid. Coordinates are 1-based at the API.
type Table struct {
	rows    int
	columns int
	cells   []Cell // row-major
}

// New creates a table with every cell empty. Returns ErrInvalidDimensions
// when rows or columns is not positive.
func New(rows, columns int) (*Table, error) {
	if rows < 1 || columns < 1 {
		return nil, ErrInvalidDimensions
	}
	return &Table{
		rows:    rows,
		columns: columns,
		cells:   make([]Cell, rows*columns),
	}, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.rows
}

// Columns returns the number of columns.
func (t *Table) Columns() int {
	return t.columns
}

// CellExists reports whether row, col lies within the table.
func (t *Table) CellExists(row, col int) bool {
	return row > 0 && col > 0 && row <= t.rows && col <= t.columns
}

// Cell returns the cell at row, col. The second result is false when the
// coordinate is out of range.
func (t *Table) Cell(row, col int) (Cell, bool) {
	if !t.CellExists(row, col) {
		return Cell{}, false
	}
	return t.cells[t.index(row-1, col-1)], true
}

// CreateCell classifies raw and builds the matching cell. It never fails:
// unclassifiable input and formulas that divide by zero produce an Error
// cell, and the returned error (ErrInvalidType or ErrDivisionByZero) says
// why.
func (t *Table) CreateCell(raw string) (Cell, error) {
	s := strutil.Trim(raw)

	switch {
	case s == "":
		return emptyCell(), nil
	case strutil.IsQuotedText(s):
		return textCell(s), nil
	case strutil.IsNumber(s):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errorCell(), ErrInvalidType
		}
		return numberCell(v), nil
	case strutil.IsFormula(s):
		v, err := t.CalculateFormula(s)
		if err != nil {
			return errorCell(), err
		}
		return numberCell(v), nil
	default:
		return errorCell(), ErrInvalidType
	}
}

// EditCell replaces the cell at row, col with one built from raw. It returns
// ErrOutOfRange, leaving the table unchanged, when the coordinate does not
// exist. When the new cell is an Error cell built from a diagnostic, the cell
// is stored and a *CellError wrapping the diagnostic is returned.
func (t *Table) EditCell(row, col int, raw string) error {
	if !t.CellExists(row, col) {
		return ErrOutOfRange
	}

	cell, err := t.CreateCell(raw)
	t.cells[t.index(row-1, col-1)] = cell
	if err != nil {
		return &CellError{Row: row, Col: col, Err: err}
	}
	return nil
}

// EvaluateReference resolves an R<row>C<col> reference to the value of the
// referenced cell. References outside the table, or that do not parse,
// evaluate to 0.
func (t *Table) EvaluateReference(ref string) float64 {
	row, col, ok := parseReference(ref)
	if !ok || !t.CellExists(row, col) {
		return 0
	}
	return t.cells[t.index(row-1, col-1)].Evaluate()
}

// index maps 0-based coordinates to a slot in cells.
func (t *Table) index(row, col int) int {
	return row*t.columns + col
}

// parseReference splits R<row>C<col> into its coordinates.
func parseReference(ref string) (row, col int, ok bool) {
	if len(ref) < 4 || ref[0] != 'R' {
		return 0, 0, false
	}
	sep := strings.IndexByte(ref, 'C')
	if sep < 2 {
		return 0, 0, false
	}

	row, err := strconv.Atoi(ref[1:sep])
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(ref[sep+1:])
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}
