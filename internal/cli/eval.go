package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/etable/pkg/table"
)

// evalJSON is the --json output of eval.
type evalJSON struct {
	Input  string  `json:"input"`
	Kind   string  `json:"kind"`
	Value  float64 `json:"value"`
	Render string  `json:"render"`
	Error  string  `json:"error,omitempty"`
}

func newEvalCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "eval <input>",
		Short: "Classify and evaluate one cell input",
		Long: "Build a cell from <input> the way the console does and print its rendered value.\n" +
			"References resolve against --file when given, otherwise against an empty table.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				t   *table.Table
				err error
			)
			if file != "" {
				t, err = a.readTable(file, cmd.ErrOrStderr())
			} else {
				t, err = table.New(1, 1)
			}
			if err != nil {
				return err
			}

			cell, diag := t.CreateCell(args[0])
			if a.flags.jsonMode {
				res := evalJSON{Input: args[0], Kind: cell.Kind().String(), Value: cell.Evaluate(), Render: cell.Render()}
				if diag != nil {
					res.Error = diag.Error()
				}
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), cell.Render())
			}

			if diag != nil {
				return userError(diag)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "table file that references resolve against")
	return cmd
}
