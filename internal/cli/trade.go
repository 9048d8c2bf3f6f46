package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/gate"
	"alphaquant-console/internal/logging"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/store"
	"alphaquant-console/pkg/utils"
)

func addTradeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))
}

func newBuyCmd(app *App) *cobra.Command {
	return newOrderCmd(app, models.OrderSideBuy)
}

func newSellCmd(app *App) *cobra.Command {
	return newOrderCmd(app, models.OrderSideSell)
}

func newOrderCmd(app *App, side models.OrderSide) *cobra.Command {
	var limitPrice float64
	var yes bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s SYMBOL QTY", side),
		Short: fmt.Sprintf("Submit a %s order through the risk gate", side),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}

			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				output.Error("Invalid quantity %q", args[1])
				return err
			}

			req := models.OrderRequest{
				Symbol:      strings.ToUpper(args[0]),
				Quantity:    qty,
				Side:        side,
				Type:        models.OrderTypeMarket,
				TimeInForce: app.Config.Trading.TimeInForce,
			}
			if cmd.Flags().Changed("limit") {
				req.Type = models.OrderTypeLimit
				req.LimitPrice = &limitPrice
			}

			if app.Config.IsLiveMode() && !yes {
				if !confirm(cmd, output, fmt.Sprintf("LIVE order: %s %s %s. Proceed?",
					side, utils.FormatQuantity(qty), req.Symbol)) {
					output.Dim("Cancelled.")
					return nil
				}
			}

			return app.submitThroughGate(cmd, output, req, yes)
		},
	}

	cmd.Flags().Float64Var(&limitPrice, "limit", 0, "limit price (market order when omitted)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompts")
	return cmd
}

// submitThroughGate runs one submission cycle: submit, render the
// outcome, offer an override on blocks, journal the settle.
func (app *App) submitThroughGate(cmd *cobra.Command, output *Output, req models.OrderRequest, skipPrompts bool) error {
	outcome, err := app.Gate.Submit(cmd.Context(), req)
	if err != nil {
		output.Error("Submission refused: %v", err)
		return err
	}
	app.recordOutcome(cmd, req, outcome)
	renderOutcome(output, outcome)

	if outcome.Blocked() && !skipPrompts {
		prompt := "Override and resubmit anyway?"
		if outcome.Kind == models.OutcomeBlockedCritical {
			prompt = "Override the risk firewall and resubmit?"
		}
		if confirm(cmd, output, prompt) {
			overridden, err := app.Gate.Override(cmd.Context())
			if err != nil {
				output.Error("Override failed: %v", err)
				return err
			}
			app.recordOutcome(cmd, req, overridden)
			renderOutcome(output, overridden)
			outcome = overridden
		}
	}

	// One-shot commands acknowledge implicitly so the next invocation
	// starts from an idle gate.
	if app.Gate.State() == gate.StateSettled {
		app.Gate.Acknowledge()
	}

	if output.IsJSON() {
		return output.JSON(outcome)
	}
	return nil
}

func (app *App) recordOutcome(cmd *cobra.Command, req models.OrderRequest, outcome models.OrderOutcome) {
	logging.LogOrderOutcome(app.Logger, req.Symbol, string(req.Side), req.Quantity, string(outcome.Kind), outcome.Reason)
	if app.Store != nil {
		if err := app.Store.JournalOutcome(cmd.Context(), req, outcome); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to journal order outcome")
		}
	}
}

func confirm(cmd *cobra.Command, output *Output, prompt string) bool {
	output.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newOrdersCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders",
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

			if output.IsJSON() {
				return output.JSON(orders)
			}
			if len(orders) == 0 {
				output.Dim("No %s orders.", status)
				return nil
			}

			table := NewTable(output, "ID", "SYMBOL", "SIDE", "TYPE", "QTY", "FILLED", "PRICE", "STATUS", "SUBMITTED")
			for _, o := range orders {
				price := "-"
				if o.LimitPrice != nil {
					price = utils.FormatUSD(*o.LimitPrice)
				} else if o.FilledPrice != nil {
					price = utils.FormatUSD(*o.FilledPrice)
				}
				table.AddRow(
					shortID(o.ID),
					o.Symbol,
					string(o.Side),
					string(o.Type),
					utils.FormatQuantity(o.Quantity),
					utils.FormatQuantity(o.FilledQty),
					price,
					o.Status,
					o.SubmittedAt,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", api.OrderStatusOpen, "filter: open, closed, all")
	return cmd
}

func newJournalCmd(app *App) *cobra.Command {
	var symbol string
	var outcome string
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show locally recorded submissions, blocks included",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Local store unavailable.")
				return nil
			}

			entries, err := app.Store.GetJournal(cmd.Context(), store.JournalFilter{
				Symbol:  strings.ToUpper(symbol),
				Outcome: models.OutcomeKind(outcome),
				Limit:   limit,
			})
			if err != nil {
				output.Error("Failed to read journal: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Dim("Journal is empty.")
				return nil
			}

			table := NewTable(output, "WHEN", "SYMBOL", "SIDE", "QTY", "OUTCOME", "DETAIL")
			for _, e := range entries {
				detail := e.Reason
				if detail == "" {
					detail = e.Message
				}
				table.AddRow(
					e.SettledAt.Local().Format("Jan 02 15:04"),
					e.Symbol,
					string(e.Side),
					utils.FormatQuantity(e.Quantity),
					journalOutcomeCell(output, e.Outcome),
					detail,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&outcome, "outcome", "", "filter: accepted, blocked_critical, blocked_warning, failed")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries")
	return cmd
}

func journalOutcomeCell(output *Output, kind models.OutcomeKind) string {
	switch kind {
	case models.OutcomeAccepted:
		return output.Green(string(kind))
	case models.OutcomeBlockedCritical:
		return output.Red(string(kind))
	case models.OutcomeBlockedWarning:
		return output.Yellow(string(kind))
	default:
		return output.DimText(string(kind))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
