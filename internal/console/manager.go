// Package console implements the interactive table manager: a command
// interpreter that opens, edits, prints, saves and stores one table at a
// time, and the read-eval loop that drives it.
package console

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/etable/internal/strutil"
	"github.com/mesh-intelligence/etable/internal/textfile"
	"github.com/mesh-intelligence/etable/pkg/table"
	"github.com/mesh-intelligence/etable/pkg/types"
)

// Status tells the driver whether to keep reading commands.
type Status int

const (
	StatusContinue Status = iota
	StatusExit
)

// minCommandLength is the shortest input treated as a command.
const minCommandLength = 4

// Options configure a Manager. Zero values select the OS filesystem,
// textfile.DefaultOptions, no sheet store and a discarding logger.
type Options struct {
	Fs     afero.Fs
	Text   textfile.Options
	Store  types.SheetStore
	Logger *slog.Logger
}

// Manager owns at most one table and the file it was opened from.
// A Manager is not safe for concurrent use.
type Manager struct {
	fs     afero.Fs
	text   textfile.Options
	store  types.SheetStore
	logger *slog.Logger
	msg    *messenger
	out    io.Writer

	table *table.Table
	file  string // empty when the table did not come from a file
}

// NewManager creates a manager with no table that writes to out.
func NewManager(out io.Writer, opts Options) *Manager {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Text == (textfile.Options{}) {
		opts.Text = textfile.DefaultOptions()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		fs:     opts.Fs,
		text:   opts.Text,
		store:  opts.Store,
		logger: opts.Logger,
		msg:    newMessenger(out),
		out:    out,
	}
}

// Table returns the current table, or nil.
func (m *Manager) Table() *table.Table {
	return m.table
}

// File returns the file the current table is bound to, or "".
func (m *Manager) File() string {
	return m.file
}

// Intro prints the greeting shown when the console starts.
func (m *Manager) Intro() {
	m.msg.infof("Open a text file (.txt) to read: (open <file>.txt). Type help for all commands.")
}

// Execute runs one command line and reports whether the session continues.
func (m *Manager) Execute(line string) Status {
	line = strutil.Trim(line)
	if len(line) < minCommandLength {
		m.msg.errorf("Command too short")
		return StatusContinue
	}

	name, args, _ := strings.Cut(line, " ")
	args = strutil.Trim(args)

	cmd, ok := commandIndex[name]
	if !ok {
		m.msg.errorf("Invalid command! (Hint: type help to see available commands)")
		return StatusContinue
	}
	if cmd.needsTable && m.table == nil {
		m.msg.errorf("Invalid command! (Hint: open a file first: open <file>.txt)")
		return StatusContinue
	}
	if takesArgs := cmd.usage != cmd.name; takesArgs == (args == "") {
		m.msg.errorf("Invalid command! (Hint: Command should be: %s)", cmd.usage)
		return StatusContinue
	}

	m.logger.Debug("execute", "command", name, "args", args)
	return cmd.run(m, args)
}

// setTable replaces the current table and file binding.
func (m *Manager) setTable(t *table.Table, file string) {
	m.table = t
	m.file = file
}

// reportDiagnostics summarizes cells that could not be classified while
// loading a table.
func (m *Manager) reportDiagnostics(diags []*table.CellError) {
	if len(diags) == 0 {
		return
	}
	for _, d := range diags {
		m.logger.Debug("cell diagnostic", "row", d.Row, "col", d.Col, "err", d.Err)
	}
	m.msg.warnf("%d cell(s) could not be read and now hold ERROR (first: %v)", len(diags), diags[0])
}
