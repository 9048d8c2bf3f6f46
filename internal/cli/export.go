package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/store"
)

func addExportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data to CSV",
	}
	cmd.AddCommand(newExportOrdersCmd(app))
	cmd.AddCommand(newExportPositionsCmd(app))
	cmd.AddCommand(newExportJournalCmd(app))
	rootCmd.AddCommand(cmd)
}

// orderCSV flattens an order for CSV export.
type orderCSV struct {
	ID          string  `csv:"id"`
	Symbol      string  `csv:"symbol"`
	Side        string  `csv:"side"`
	Type        string  `csv:"type"`
	Quantity    float64 `csv:"qty"`
	FilledQty   float64 `csv:"filled_qty"`
	LimitPrice  string  `csv:"limit_price"`
	FilledPrice string  `csv:"filled_avg_price"`
	Status      string  `csv:"status"`
	SubmittedAt string  `csv:"submitted_at"`
}

type positionCSV struct {
	Symbol        string  `csv:"symbol"`
	Side          string  `csv:"side"`
	Quantity      float64 `csv:"qty"`
	AvgEntryPrice float64 `csv:"avg_entry_price"`
	CurrentPrice  float64 `csv:"current_price"`
	MarketValue   float64 `csv:"market_value"`
	UnrealizedPL  float64 `csv:"unrealized_pl"`
	UnrealizedPLP float64 `csv:"unrealized_plpc"`
}

type journalCSV struct {
	SettledAt        string  `csv:"settled_at"`
	Symbol           string  `csv:"symbol"`
	Side             string  `csv:"side"`
	Quantity         float64 `csv:"qty"`
	Type             string  `csv:"type"`
	Outcome          string  `csv:"outcome"`
	Reason           string  `csv:"reason"`
	RiskScore        float64 `csv:"risk_score"`
	Message          string  `csv:"message"`
	OverrideRisk     bool    `csv:"override_risk"`
	OverrideStrategy bool    `csv:"override_strategy"`
}

func newExportOrdersCmd(app *App) *cobra.Command {
	var out, status string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Export orders to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			orders, err := fetchWithRetry(cmd.Context(), func(ctx context.Context) ([]models.Order, error) {
				return app.Client.Orders(ctx, status)
			})
			if err != nil {
				output.Error("Failed to fetch orders: %v", err)
				return err
			}

			rows := make([]orderCSV, 0, len(orders))
			for _, o := range orders {
				row := orderCSV{
					ID: o.ID, Symbol: o.Symbol, Side: string(o.Side), Type: string(o.Type),
					Quantity: o.Quantity, FilledQty: o.FilledQty,
					Status: o.Status, SubmittedAt: o.SubmittedAt,
				}
				if o.LimitPrice != nil {
					row.LimitPrice = fmt.Sprintf("%.2f", *o.LimitPrice)
				}
				if o.FilledPrice != nil {
					row.FilledPrice = fmt.Sprintf("%.2f", *o.FilledPrice)
				}
				rows = append(rows, row)
			}
			return writeCSV(output, out, &rows, len(rows))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "orders.csv", "output file")
	cmd.Flags().StringVar(&status, "status", api.OrderStatusAll, "filter: open, closed, all")
	return cmd
}

func newExportPositionsCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Export open positions to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			positions, err := fetchWithRetry(cmd.Context(), app.Client.Positions)
			if err != nil {
				output.Error("Failed to fetch positions: %v", err)
				return err
			}

			rows := make([]positionCSV, 0, len(positions))
			for _, p := range positions {
				rows = append(rows, positionCSV{
					Symbol: p.Symbol, Side: p.Side, Quantity: p.Quantity,
					AvgEntryPrice: p.AvgEntryPrice, CurrentPrice: p.CurrentPrice,
					MarketValue: p.MarketValue, UnrealizedPL: p.UnrealizedPL,
					UnrealizedPLP: p.UnrealizedPLP,
				})
			}
			return writeCSV(output, out, &rows, len(rows))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "positions.csv", "output file")
	return cmd
}

func newExportJournalCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Export the local submission journal to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Local store unavailable.")
				return nil
			}
			entries, err := app.Store.GetJournal(cmd.Context(), store.JournalFilter{})
			if err != nil {
				output.Error("Failed to read journal: %v", err)
				return err
			}

			rows := make([]journalCSV, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, journalCSV{
					SettledAt: e.SettledAt.UTC().Format("2006-01-02T15:04:05Z"),
					Symbol:    e.Symbol, Side: string(e.Side), Quantity: e.Quantity,
					Type: string(e.Type), Outcome: string(e.Outcome), Reason: e.Reason,
					RiskScore: e.RiskScore, Message: e.Message,
					OverrideRisk: e.OverrideRisk, OverrideStrategy: e.OverrideStrategy,
				})
			}
			return writeCSV(output, out, &rows, len(rows))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "journal.csv", "output file")
	return cmd
}

func writeCSV(output *Output, path string, rows interface{}, count int) error {
	file, err := os.Create(path)
	if err != nil {
		output.Error("Cannot create %s: %v", path, err)
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		output.Error("CSV export failed: %v", err)
		return err
	}
	output.Success("Wrote %d rows to %s", count, path)
	return nil
}
