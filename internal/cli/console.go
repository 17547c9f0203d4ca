package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/etable/internal/console"
	"github.com/mesh-intelligence/etable/pkg/store"
	"github.com/mesh-intelligence/etable/pkg/types"
)

func newConsoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console [file]",
		Short: "Start the interactive table console",
		Long:  "Start the interactive console, optionally opening <file> (.txt or .xlsx) first.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runConsole,
	}
}

func (a *app) runConsole(cmd *cobra.Command, args []string) error {
	var st types.SheetStore
	if s, err := store.Open(a.settings.storeConfig(), a.logger); err != nil {
		a.logger.Warn("sheet store unavailable", "err", err)
	} else {
		st = s
		defer st.Detach()
	}

	m := console.NewManager(cmd.OutOrStdout(), console.Options{
		Fs:     a.fs,
		Text:   a.settings.Text,
		Store:  st,
		Logger: a.logger,
	})
	if len(args) == 1 {
		m.Execute("open " + args[0])
	}

	if err := console.Run(cmd.Context(), m, cmd.InOrStdin(), a.settings.Prompt); err != nil {
		return sysError(err)
	}
	return nil
}
