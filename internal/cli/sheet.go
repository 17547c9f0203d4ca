package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/etable/internal/console"
	"github.com/mesh-intelligence/etable/pkg/store"
	"github.com/mesh-intelligence/etable/pkg/table"
	"github.com/mesh-intelligence/etable/pkg/types"
)

func newSheetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Manage sheets in the sheet store",
	}
	cmd.AddCommand(
		newSheetSaveCmd(a),
		newSheetListCmd(a),
		newSheetShowCmd(a),
		newSheetExportCmd(a),
		newSheetDeleteCmd(a),
	)
	return cmd
}

// withStore attaches the configured store for the duration of fn.
func (a *app) withStore(fn func(types.SheetStore) error) error {
	st, err := store.Open(a.settings.storeConfig(), a.logger)
	if err != nil {
		return sysError(err)
	}
	defer st.Detach()
	return storeError(fn(st))
}

// storeError classifies store failures into exit codes.
func storeError(err error) error {
	var ee *exitError
	switch {
	case err == nil, errors.As(err, &ee):
		return err
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrInvalidName), errors.Is(err, types.ErrInvalidData):
		return userError(err)
	default:
		return sysError(err)
	}
}

func newSheetSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Store the table in <file> as sheet <name>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.readTable(args[1], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.withStore(func(st types.SheetStore) error {
				sheet := &types.Sheet{
					Name:    args[0],
					Rows:    t.Rows(),
					Columns: t.Columns(),
					Content: t.Serialize(table.DefaultDelimiter),
				}
				id, err := st.Save(sheet)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved sheet %s (%s)\n", sheet.Name, id)
				return nil
			})
		},
	}
}

func newSheetListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.SheetStore) error {
				sheets, err := st.List()
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					if sheets == nil {
						sheets = []types.Sheet{}
					}
					return writeJSON(cmd.OutOrStdout(), sheets)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSIZE\tUPDATED")
				for _, s := range sheets {
					fmt.Fprintf(tw, "%s\t%dx%d\t%s\n", s.Name, s.Rows, s.Columns, humanize.Time(s.UpdatedAt))
				}
				return tw.Flush()
			})
		},
	}
}

func newSheetShowCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.SheetStore) error {
				sheet, err := st.Get(args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch {
				case a.flags.jsonMode:
					return writeJSON(out, sheet)
				case raw:
					_, err := fmt.Fprint(out, sheet.Content)
					return err
				}

				t, _, err := console.SheetTable(sheet, a.settings.Text)
				if err != nil {
					return err
				}
				return t.Print(out)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored delimited content")
	return cmd
}

func newSheetExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write stored sheet <name> to <file> (.txt or .xlsx)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.SheetStore) error {
				sheet, err := st.Get(args[0])
				if err != nil {
					return err
				}
				t, _, err := console.SheetTable(sheet, a.settings.Text)
				if err != nil {
					return err
				}
				if err := a.writeTable(args[1], t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote sheet %s to %s\n", sheet.Name, args[1])
				return nil
			})
		},
	}
}

func newSheetDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.SheetStore) error {
				if err := st.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted sheet %s\n", args[0])
				return nil
			})
		},
	}
}
