package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/etable/internal/textfile"
	"github.com/mesh-intelligence/etable/internal/xlsx"
)

func newExportCmd(a *app) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "export <in.txt> <out.xlsx>",
		Short: "Convert a delimited text table to an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := textfile.ValidateFileName(args[1], textfile.ExtXLSX); err != nil {
				return userError(fmt.Errorf("%s: %w", args[1], err))
			}
			t, err := a.readTable(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := xlsx.Export(a.fs, args[1], t, sheet); err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %dx%d table to %s\n", t.Rows(), t.Columns(), args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", xlsx.DefaultSheet, "worksheet name")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "import <in.xlsx> <out.txt>",
		Short: "Convert an Excel worksheet to a delimited text table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := textfile.ValidateFileName(args[0], textfile.ExtXLSX); err != nil {
				return userError(fmt.Errorf("%s: %w", args[0], err))
			}
			if err := textfile.ValidateFileName(args[1], textfile.ExtText); err != nil {
				return userError(fmt.Errorf("%s: %w", args[1], err))
			}

			opts := a.settings.Text
			t, diags, err := xlsx.Import(a.fs, args[0], sheet, opts.DefaultRows, opts.DefaultColumns)
			if err != nil {
				return userError(err)
			}
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", d)
			}
			if err := textfile.Write(a.fs, args[1], t, opts); err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %dx%d table to %s\n", t.Rows(), t.Columns(), args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (default: first worksheet)")
	return cmd
}
