package cli

import (
	"time"

	"github.com/spf13/cobra"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/models"
	"alphaquant-console/pkg/utils"
)

func addAccountCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAccountCmd(app))
	rootCmd.AddCommand(newPositionsCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newAccountCmd(app *App) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account balances and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var account *models.Account
			if cached {
				snap, fetchedAt, ok := readCached[*models.Account](cmd.Context(), app, api.ResourceAccount, nil)
				if !ok {
					output.Error("No cached account snapshot. Run without --cached first.")
					return nil
				}
				account = snap
				output.Dim("Cached snapshot from %s", fetchedAt.Local().Format("2006-01-02 15:04:05"))
			} else {
				if !app.requireClient(output) {
					return nil
				}
				fresh, err := fetchWithRetry(cmd.Context(), app.Client.Account)
				if err != nil {
					output.Error("Failed to fetch account: %v", err)
					return err
				}
				account = fresh
				app.cacheResult(cmd.Context(), api.ResourceAccount, nil, account)
			}

			if output.IsJSON() {
				return output.JSON(account)
			}

			output.Bold("Account")
			output.Printf("  Status:          %s\n", account.Status)
			output.Printf("  Mode:            %s\n", app.Config.Trading.Mode)
			output.Printf("  Market:          %s\n", output.MarketStatus(utils.GetMarketStatus(time.Now())))
			output.Printf("  Portfolio Value: %s\n", utils.FormatUSD(account.PortfolioValue))
			output.Printf("  Buying Power:    %s\n", utils.FormatUSD(account.BuyingPower))
			output.Printf("  Cash:            %s\n", utils.FormatUSD(account.Cash))
			output.Printf("  Daytrades:       %d\n", account.DaytradeCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "serve the last cached snapshot without contacting the backend")
	return cmd
}

func newPositionsCmd(app *App) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var positions []models.Position
			if cached {
				snap, fetchedAt, ok := readCached[[]models.Position](cmd.Context(), app, api.ResourcePositions, nil)
				if !ok {
					output.Error("No cached positions snapshot. Run without --cached first.")
					return nil
				}
				positions = snap
				output.Dim("Cached snapshot from %s", fetchedAt.Local().Format("2006-01-02 15:04:05"))
			} else {
				if !app.requireClient(output) {
					return nil
				}
				fresh, err := fetchWithRetry(cmd.Context(), app.Client.Positions)
				if err != nil {
					output.Error("Failed to fetch positions: %v", err)
					return err
				}
				positions = fresh
				app.cacheResult(cmd.Context(), api.ResourcePositions, nil, positions)
			}

			if output.IsJSON() {
				return output.JSON(positions)
			}
			if len(positions) == 0 {
				output.Dim("No open positions.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "SIDE", "QTY", "ENTRY", "CURRENT", "VALUE", "P&L", "P&L %")
			for _, p := range positions {
				table.AddRow(
					p.Symbol,
					p.Side,
					utils.FormatQuantity(p.Quantity),
					utils.FormatUSD(p.AvgEntryPrice),
					utils.FormatUSD(p.CurrentPrice),
					utils.FormatUSD(p.MarketValue),
					output.FormatPnL(p.UnrealizedPL),
					output.FormatPercent(p.UnrealizedPLP*100),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "serve the last cached snapshot without contacting the backend")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var sparkline bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the account equity curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}

			points, err := fetchWithRetry(cmd.Context(), app.Client.EquityHistory)
			if err != nil {
				output.Error("Failed to fetch history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(points)
			}
			if len(points) == 0 {
				output.Dim("No equity history yet.")
				return nil
			}

			if sparkline {
				output.Println(equitySparkline(points, 60))
			}

			last := points[len(points)-1]
			output.Bold("Equity")
			output.Printf("  Current:  %s\n", utils.FormatUSD(last.Equity))
			output.Printf("  P&L:      %s (%s)\n", output.FormatPnL(last.ProfitLoss), output.FormatPercent(last.ProfitLossPct))
			output.Printf("  Samples:  %d (%s .. %s)\n", len(points), points[0].Time, last.Time)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sparkline, "sparkline", true, "draw an equity sparkline")
	return cmd
}
