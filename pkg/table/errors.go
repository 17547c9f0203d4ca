package table

import (
	"errors"
	"fmt"
)

// Cell construction diagnostics. The offending cell is still stored, as an
// Error cell.
var (
	ErrInvalidType    = errors.New("invalid type")
	ErrDivisionByZero = errors.New("division by zero")
)

// Table errors.
var (
	ErrOutOfRange        = errors.New("cell out of range")
	ErrInvalidDimensions = errors.New("table dimensions must be positive")
)

// CellError reports a construction diagnostic for the cell at Row, Col
// (1-based).
type CellError struct {
	Row int
	Col int
	Err error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell R%dC%d: %v", e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
