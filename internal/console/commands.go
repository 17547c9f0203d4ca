package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/etable/internal/strutil"
	"github.com/mesh-intelligence/etable/internal/textfile"
	"github.com/mesh-intelligence/etable/internal/xlsx"
	"github.com/mesh-intelligence/etable/pkg/table"
	"github.com/mesh-intelligence/etable/pkg/types"
)

// command is one console verb. A usage equal to name means the command takes
// no arguments.
type command struct {
	name        string
	usage       string
	description string
	needsTable  bool
	run         func(m *Manager, args string) Status
}

const alreadyOpen = "A table is already open! (Hint: close it first)"

var (
	commands     []command
	commandIndex map[string]command
)

func init() {
	commands = []command{
		{name: "open", usage: "open <file>", description: "opens <file> (.txt or .xlsx)", run: (*Manager).open},
		{name: "close", usage: "close", description: "closes currently opened file", needsTable: true, run: (*Manager).close},
		{name: "save", usage: "save", description: "saves the currently open file", needsTable: true, run: (*Manager).save},
		{name: "saveas", usage: "saveas <file>", description: "saves the currently open file in <file>", needsTable: true, run: (*Manager).saveAs},
		{name: "print", usage: "print", description: "prints the current table", needsTable: true, run: (*Manager).print},
		{name: "edit", usage: "edit <row> <col> <value>", description: "sets the cell at <row>, <col> to <value>", needsTable: true, run: (*Manager).edit},
		{name: "export", usage: "export <file>.xlsx", description: "writes the current table to an Excel workbook", needsTable: true, run: (*Manager).export},
		{name: "store", usage: "store <name>", description: "stores the current table as sheet <name>", needsTable: true, run: (*Manager).storeSheet},
		{name: "load", usage: "load <name>", description: "loads sheet <name> from the store", run: (*Manager).loadSheet},
		{name: "sheets", usage: "sheets", description: "lists stored sheets", run: (*Manager).listSheets},
		{name: "help", usage: "help", description: "prints this information", run: (*Manager).help},
		{name: "exit", usage: "exit", description: "exits the program", run: (*Manager).exit},
	}

	commandIndex = make(map[string]command, len(commands))
	for _, c := range commands {
		commandIndex[c.name] = c
	}
}

// CommandNames returns every command name in help order.
func CommandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func (m *Manager) open(path string) Status {
	if m.table != nil {
		m.msg.errorf(alreadyOpen)
		return StatusContinue
	}
	if !m.validName(path, textfile.ExtText, textfile.ExtXLSX) {
		return StatusContinue
	}

	var (
		t     *table.Table
		diags []*table.CellError
		err   error
	)
	if textfile.HasExt(path, textfile.ExtXLSX) {
		t, diags, err = xlsx.Import(m.fs, path, "", m.text.DefaultRows, m.text.DefaultColumns)
	} else {
		created, ensureErr := textfile.Ensure(m.fs, path)
		if ensureErr != nil {
			err = ensureErr
		} else {
			if created {
				m.logger.Info("created file", "path", path)
			}
			t, diags, err = textfile.Read(m.fs, path, m.text)
		}
	}
	if err != nil {
		m.logger.Warn("open failed", "path", path, "err", err)
		m.msg.errorf("Error opening the file! (%v)", err)
		return StatusContinue
	}

	m.setTable(t, path)
	m.msg.successf("Successfully opened file %s!", path)
	if isBlank(t) && t.Rows() == m.text.DefaultRows && t.Columns() == m.text.DefaultColumns {
		m.msg.infof("File empty! Generated default %dx%d empty table", t.Rows(), t.Columns())
	}
	m.reportDiagnostics(diags)
	return StatusContinue
}

func (m *Manager) close(string) Status {
	m.setTable(nil, "")
	m.msg.successf("Successfully closed current file!")
	return StatusContinue
}

func (m *Manager) save(string) Status {
	if m.file == "" {
		m.msg.errorf("No file is associated with this table! (Hint: use saveas <file>)")
		return StatusContinue
	}
	if err := m.writeFile(m.file); err != nil {
		m.msg.errorf("Error saving the file! (%v)", err)
		return StatusContinue
	}
	m.msg.successf("Table saved successfully!")
	return StatusContinue
}

func (m *Manager) saveAs(path string) Status {
	if !m.validName(path, textfile.ExtText, textfile.ExtXLSX) {
		return StatusContinue
	}
	if err := m.writeFile(path); err != nil {
		m.msg.errorf("Error saving the file! (%v)", err)
		return StatusContinue
	}
	m.msg.successf("Table saved successfully as %s!", path)
	return StatusContinue
}

func (m *Manager) writeFile(path string) error {
	if textfile.HasExt(path, textfile.ExtXLSX) {
		return xlsx.Export(m.fs, path, m.table, "")
	}
	return textfile.Write(m.fs, path, m.table, m.text)
}

func (m *Manager) print(string) Status {
	if err := m.table.Print(m.out); err != nil {
		m.logger.Warn("print failed", "err", err)
	}
	return StatusContinue
}

func (m *Manager) edit(args string) Status {
	parts := strings.SplitN(args, " ", 3)
	if len(parts) != 3 || parts[2] == "" || !strutil.IsInteger(parts[0]) || !strutil.IsInteger(parts[1]) {
		m.msg.errorf("Invalid command! (Hint: Command should be: edit <row> <col> <value>)")
		return StatusContinue
	}

	// IsInteger admits values Atoi cannot hold; those are out of range.
	row, rowErr := strconv.Atoi(parts[0])
	col, colErr := strconv.Atoi(parts[1])
	if rowErr != nil || colErr != nil {
		m.msg.errorf("Invalid cell! Editing unsuccessful")
		return StatusContinue
	}

	err := m.table.EditCell(row, col, parts[2])
	switch {
	case err == nil:
		m.msg.successf("Cell edited successfully!")
	case errors.Is(err, table.ErrOutOfRange):
		m.msg.errorf("Invalid cell! Editing unsuccessful")
	case errors.Is(err, table.ErrDivisionByZero):
		m.msg.errorf("Error in cell! Dividing by zero is not allowed! Error cell is produced!")
	default:
		m.msg.errorf("Error in cell! Cell has invalid type! Error cell is produced!")
	}
	return StatusContinue
}

func (m *Manager) export(path string) Status {
	if !m.validName(path, textfile.ExtXLSX) {
		return StatusContinue
	}
	if err := xlsx.Export(m.fs, path, m.table, ""); err != nil {
		m.msg.errorf("Error exporting the table! (%v)", err)
		return StatusContinue
	}
	m.msg.successf("Table exported successfully to %s!", path)
	return StatusContinue
}

func (m *Manager) storeSheet(name string) Status {
	if m.store == nil {
		m.msg.errorf("No sheet store is configured!")
		return StatusContinue
	}

	sheet := &types.Sheet{
		Name:    name,
		Rows:    m.table.Rows(),
		Columns: m.table.Columns(),
		Content: m.table.Serialize(table.DefaultDelimiter),
	}
	if _, err := m.store.Save(sheet); err != nil {
		m.reportStoreError(name, err)
		return StatusContinue
	}
	m.msg.successf("Table stored as sheet %s!", name)
	return StatusContinue
}

func (m *Manager) loadSheet(name string) Status {
	if m.store == nil {
		m.msg.errorf("No sheet store is configured!")
		return StatusContinue
	}

	if m.table != nil {
		m.msg.errorf(alreadyOpen)
		return StatusContinue
	}

	sheet, err := m.store.Get(name)
	if err != nil {
		m.reportStoreError(name, err)
		return StatusContinue
	}

	t, diags, err := SheetTable(sheet, m.text)
	if err != nil {
		m.msg.errorf("Error loading sheet %s! (%v)", name, err)
		return StatusContinue
	}

	m.setTable(t, "")
	m.msg.successf("Loaded sheet %s (%dx%d)!", name, t.Rows(), t.Columns())
	m.reportDiagnostics(diags)
	return StatusContinue
}

func (m *Manager) listSheets(string) Status {
	if m.store == nil {
		m.msg.errorf("No sheet store is configured!")
		return StatusContinue
	}

	sheets, err := m.store.List()
	if err != nil {
		m.reportStoreError("", err)
		return StatusContinue
	}
	if len(sheets) == 0 {
		m.msg.infof("No stored sheets")
		return StatusContinue
	}
	for _, s := range sheets {
		m.msg.plain(fmt.Sprintf("%-24s %4dx%-4d updated %s\n", s.Name, s.Rows, s.Columns, humanize.Time(s.UpdatedAt)))
	}
	return StatusContinue
}

func (m *Manager) help(string) Status {
	var sb strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&sb, "%-28s %s\n", c.usage, c.description)
	}
	m.msg.plain(sb.String())
	return StatusContinue
}

func (m *Manager) exit(string) Status {
	m.msg.successf("Programme terminated successfully!")
	return StatusExit
}

func (m *Manager) validName(path string, allowed ...string) bool {
	err := textfile.ValidateFileName(path, allowed...)
	switch {
	case err == nil:
		return true
	case errors.Is(err, textfile.ErrFileNameTooShort):
		m.msg.errorf("Filename too short! (Hint: File format should be filename%s)", allowed[0])
	case errors.Is(err, textfile.ErrFileExtension):
		m.msg.errorf("Invalid file extension! (Hint: File should be %s)", strings.Join(allowed, " or "))
	default:
		m.msg.errorf("Invalid file name! (Hint: Check forbidden filename characters in Windows OS)")
	}
	return false
}

func (m *Manager) reportStoreError(name string, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		m.msg.errorf("Sheet %s not found!", name)
	case errors.Is(err, types.ErrInvalidName):
		m.msg.errorf("Invalid sheet name!")
	default:
		m.logger.Error("sheet store", "name", name, "err", err)
		m.msg.errorf("Sheet store error! (%v)", err)
	}
}

// SheetTable rebuilds the table held by a stored sheet. Sheet content always
// uses table.DefaultDelimiter.
func SheetTable(sheet *types.Sheet, opts textfile.Options) (*table.Table, []*table.CellError, error) {
	opts.Delimiter = table.DefaultDelimiter
	opts.DefaultRows, opts.DefaultColumns = sheet.Rows, sheet.Columns
	return textfile.Parse([]byte(sheet.Content), opts)
}

func isBlank(t *table.Table) bool {
	for row := 1; row <= t.Rows(); row++ {
		for col := 1; col <= t.Columns(); col++ {
			if c, _ := t.Cell(row, col); c.Kind() != table.KindEmpty {
				return false
			}
		}
	}
	return true
}
