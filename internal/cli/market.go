package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/chart"
	"alphaquant-console/internal/models"
	"alphaquant-console/pkg/utils"
)

func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
	rootCmd.AddCommand(newScreenerCmd(app))
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the current market snapshot for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			symbol := strings.ToUpper(args[0])

			quote, err := fetchWithRetry(cmd.Context(), func(ctx context.Context) (*models.Quote, error) {
				return app.Client.Quote(ctx, symbol)
			})
			if err != nil {
				output.Error("Failed to fetch quote for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}

			output.Bold(quote.Symbol)
			output.Printf("  Price:   %s\n", utils.FormatUSD(quote.Price))
			output.Printf("  Change:  %s (%s)\n", output.FormatPnL(quote.Change), output.FormatPercent(quote.ChangePercent))
			output.Printf("  Volume:  %s\n", utils.FormatQuantity(float64(quote.Volume)))
			if quote.Timestamp != "" {
				output.Dim("  As of %s", quote.Timestamp)
			}
			return nil
		},
	}
}

func newChartCmd(app *App) *cobra.Command {
	var period, interval string
	var width int

	cmd := &cobra.Command{
		Use:   "chart SYMBOL",
		Short: "Render a candlestick chart with indicators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			symbol := strings.ToUpper(args[0])

			data, err := fetchWithRetry(cmd.Context(), func(ctx context.Context) (*models.ChartData, error) {
				return app.Client.Chart(ctx, symbol, api.ChartParams{
					Period:   period,
					Interval: interval,
				})
			})
			if err != nil {
				output.Error("Failed to fetch chart for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(data)
			}

			surface := chart.NewTermSurface(width)
			session := chart.NewSession(symbol, surface, app.Logger)
			defer session.Dispose()

			if err := session.ReplaceData(*data); err != nil {
				output.Error("Chart session failed: %v", err)
				return err
			}
			if session.State() != chart.StateLive {
				output.Dim("No chart data for %s.", symbol)
				return nil
			}

			output.Println(surface.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "lookback period, e.g. 1mo, 6mo, 1y (default from config)")
	cmd.Flags().StringVar(&interval, "interval", "", "bar interval, e.g. 1d, 1h (default from config)")
	cmd.Flags().IntVar(&width, "width", 100, "chart width in columns")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if period == "" {
			period = app.Config.UI.ChartPeriod
		}
		if interval == "" {
			interval = app.Config.UI.ChartBars
		}
	}
	return cmd
}

func newNewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Show recent headlines for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			symbol := strings.ToUpper(args[0])

			items, err := fetchWithRetry(cmd.Context(), func(ctx context.Context) ([]models.NewsItem, error) {
				return app.Client.News(ctx, symbol)
			})
			if err != nil {
				output.Error("Failed to fetch news for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			if len(items) == 0 {
				output.Dim("No recent headlines for %s.", symbol)
				return nil
			}

			for _, item := range items {
				output.Bold(item.Title)
				meta := item.Publisher
				if when := formatUnix(item.PublishTime); when != "" {
					meta += "  " + when
				}
				output.Dim("  %s", meta)
				if item.Link != "" {
					output.Printf("  %s\n", output.DimText(item.Link))
				}
				output.Println()
			}
			return nil
		},
	}
}

func newScreenerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "screener",
		Short: "Show the discovery screener",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}

			rows, err := fetchWithRetry(cmd.Context(), app.Client.Screener)
			if err != nil {
				output.Error("Failed to fetch screener: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}
			if len(rows) == 0 {
				output.Dim("Screener is empty.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "PRICE", "CHANGE %", "VOLUME")
			for _, r := range rows {
				table.AddRow(
					r.Symbol,
					utils.FormatUSD(r.Price),
					output.FormatPercent(r.ChangePercent),
					utils.FormatQuantity(float64(r.Volume)),
				)
			}
			table.Render()
			return nil
		},
	}
}
