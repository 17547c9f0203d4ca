package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a table file",
		Long:  "Print <file> (.txt or .xlsx) with aligned columns, or in delimited form with --raw.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.readTable(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case a.flags.jsonMode:
				return writeJSON(out, toTableJSON(t))
			case raw:
				_, err = fmt.Fprint(out, t.Serialize(a.settings.Text.Delimiter))
				return err
			default:
				return t.Print(out)
			}
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the delimited form")
	return cmd
}
