// Package cli implements the etable command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries state shared by the commands of one root command.
type app struct {
	flags    rootFlags
	fs       afero.Fs
	logger   *slog.Logger
	settings settings
}

// exitError carries the process exit code for an error returned by a
// command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// NewRootCmd creates the top-level "etable" command with global flags and
// all subcommands registered. Without a subcommand it starts the console.
func NewRootCmd() *cobra.Command {
	a := &app{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:   "etable [file]",
		Short: "A small spreadsheet for delimited text files",
		Long: "etable edits delimited text tables of numbers, quoted text and\n" +
			"R<row>C<col> formulas, and keeps named sheets in a local store.",
		Args: cobra.MaximumNArgs(1),
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: a.runConsole,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: per-user config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "sheet store directory (default: .etable-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newConsoleCmd(a),
		newInitCmd(a),
		newVersionCmd(),
		newShowCmd(a),
		newEvalCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSheetCmd(a),
	)
	return root
}

// setup configures logging and loads configuration before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.flags.logLevel)
	if err != nil {
		return userError(err)
	}
	a.logger = logger

	s, err := a.loadSettings()
	if err != nil {
		return sysError(err)
	}
	a.settings = s
	a.logger.Debug("configuration loaded", "config_dir", s.ConfigDir, "data_dir", s.DataDir, "backend", s.Backend)
	return nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes root with args and maps the outcome to an exit code.
func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}

	fmt.Fprintln(stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
