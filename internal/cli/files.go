package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/etable/internal/textfile"
	"github.com/mesh-intelligence/etable/internal/xlsx"
	"github.com/mesh-intelligence/etable/pkg/table"
)

// readTable loads a .txt or .xlsx file and reports cell diagnostics on
// stderr.
func (a *app) readTable(path string, stderr io.Writer) (*table.Table, error) {
	if err := textfile.ValidateFileName(path, textfile.ExtText, textfile.ExtXLSX); err != nil {
		return nil, userError(fmt.Errorf("%s: %w", path, err))
	}

	var (
		t     *table.Table
		diags []*table.CellError
		err   error
	)
	opts := a.settings.Text
	if textfile.HasExt(path, textfile.ExtXLSX) {
		t, diags, err = xlsx.Import(a.fs, path, "", opts.DefaultRows, opts.DefaultColumns)
	} else {
		t, diags, err = textfile.Read(a.fs, path, opts)
	}
	if err != nil {
		return nil, userError(err)
	}

	for _, d := range diags {
		fmt.Fprintf(stderr, "warning: %v\n", d)
	}
	return t, nil
}

// writeTable stores t as .txt or .xlsx depending on the extension of path.
func (a *app) writeTable(path string, t *table.Table) error {
	if err := textfile.ValidateFileName(path, textfile.ExtText, textfile.ExtXLSX); err != nil {
		return userError(fmt.Errorf("%s: %w", path, err))
	}

	var err error
	if textfile.HasExt(path, textfile.ExtXLSX) {
		err = xlsx.Export(a.fs, path, t, "")
	} else {
		err = textfile.Write(a.fs, path, t, a.settings.Text)
	}
	if err != nil {
		return sysError(err)
	}
	return nil
}

// tableJSON is the JSON view of a table: rendered cells, row by row.
type tableJSON struct {
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Cells   [][]string `json:"cells"`
}

func toTableJSON(t *table.Table) tableJSON {
	out := tableJSON{Rows: t.Rows(), Columns: t.Columns(), Cells: make([][]string, t.Rows())}
	for row := 1; row <= t.Rows(); row++ {
		cells := make([]string, t.Columns())
		for col := 1; col <= t.Columns(); col++ {
			c, _ := t.Cell(row, col)
			cells[col-1] = c.Render()
		}
		out.Cells[row-1] = cells
	}
	return out
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
