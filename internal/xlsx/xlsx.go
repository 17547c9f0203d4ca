// Package xlsx exchanges tables with Excel workbooks.
//
// Export writes number cells as numbers, text cells as their unquoted
// content and error cells as the ERROR marker. Import reads the raw cell
// values of one worksheet and feeds them through the table's classifier,
// quoting plain strings so they become text cells.
package xlsx

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/etable/internal/strutil"
	"github.com/mesh-intelligence/etable/pkg/table"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Sheet1"

// errorMarker is how error cells are exported.
const errorMarker = "ERROR"

// ErrSheetNotFound is returned by Import for a missing worksheet.
var ErrSheetNotFound = errors.New("worksheet not found")

// Export writes t to path as a single-sheet workbook.
func Export(fs afero.Fs, path string, t *table.Table, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheetName); err != nil {
			return fmt.Errorf("name worksheet: %w", err)
		}
	}

	for row := 1; row <= t.Rows(); row++ {
		for col := 1; col <= t.Columns(); col++ {
			c, _ := t.Cell(row, col)
			var value any
			switch c.Kind() {
			case table.KindEmpty:
				continue
			case table.KindNumber:
				value = c.Evaluate()
			default:
				value = c.Display()
			}

			name, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, name, value); err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
		}
	}

	out, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// Import reads the named worksheet (the first one when sheetName is empty)
// of the workbook at path. An empty worksheet yields an empty
// defaultRows x defaultColumns table. Cells that fail to classify are
// reported in the returned diagnostics.
func Import(fs afero.Fs, path, sheetName string, defaultRows, defaultColumns int) (*table.Table, []*table.CellError, error) {
	in, err := fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read worksheet %s: %w", sheetName, err)
	}

	columns := 0
	for _, r := range rows {
		if len(r) > columns {
			columns = len(r)
		}
	}
	if len(rows) == 0 || columns == 0 {
		t, err := table.New(defaultRows, defaultColumns)
		return t, nil, err
	}

	t, err := table.New(len(rows), columns)
	if err != nil {
		return nil, nil, err
	}

	var diags []*table.CellError
	for r, cells := range rows {
		for c, value := range cells {
			if value == "" {
				continue
			}
			var cellErr *table.CellError
			if err := t.EditCell(r+1, c+1, toRaw(value)); errors.As(err, &cellErr) {
				diags = append(diags, cellErr)
			}
		}
	}
	return t, diags, nil
}

// toRaw maps a workbook value to cell input: numbers, formulas, already
// quoted strings and the error marker pass through, everything else becomes
// quoted text.
func toRaw(value string) string {
	s := strutil.Trim(value)
	if s == errorMarker || strutil.IsNumber(s) || strutil.IsFormula(s) || strutil.IsQuotedText(s) {
		return s
	}
	return `"` + value + `"`
}
