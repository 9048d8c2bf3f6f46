package cli

import (
	"github.com/spf13/cobra"

	"alphaquant-console/internal/ui"
)

func newConsoleCmd(app *App) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Start the interactive full-screen console",
		Long: `Start the full-screen console with live dashboard, chart, trade
and algo views. Views poll the backend on their own cadence; switching
views retargets the polling without leaking stale data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			if symbol == "" {
				symbol = app.Config.Trading.DefaultSymbol
			}
			return ui.Run(ui.Deps{
				Config: app.Config,
				Logger: app.Logger,
				Client: app.Client,
				Store:  app.Store,
				Gate:   app.Gate,
				Symbol: symbol,
			})
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "initial chart symbol")
	return cmd
}
