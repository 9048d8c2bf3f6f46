package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"alphaquant-console/internal/models"
)

func addAlgoCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "algo",
		Short: "Control the backend's background strategy",
	}
	cmd.AddCommand(newAlgoStatusCmd(app))
	cmd.AddCommand(newAlgoStartCmd(app))
	cmd.AddCommand(newAlgoStopCmd(app))
	rootCmd.AddCommand(cmd)
}

func newAlgoStatusCmd(app *App) *cobra.Command {
	var logLimit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show strategy state and activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			status, err := fetchWithRetry(cmd.Context(), app.Client.AlgoStatus)
			if err != nil {
				output.Error("Failed to fetch algo status: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(status)
			}
			renderAlgoStatus(output, status, logLimit)
			return nil
		},
	}
	cmd.Flags().IntVar(&logLimit, "logs", 20, "max log entries to show")
	return cmd
}

func newAlgoStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.algoCommand(cmd, true)
		},
	}
}

func newAlgoStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.algoCommand(cmd, false)
		},
	}
}

// algoCommand issues the start/stop command and then re-fetches status:
// the backend's confirmed state is what gets shown, not the ack.
func (app *App) algoCommand(cmd *cobra.Command, start bool) error {
	output := NewOutput(cmd)
	if !app.requireClient(output) {
		return nil
	}

	var err error
	if start {
		_, err = app.Client.StartAlgo(cmd.Context())
	} else {
		_, err = app.Client.StopAlgo(cmd.Context())
	}
	if err != nil {
		output.Error("Algo command failed: %v", err)
		return err
	}

	status, err := fetchWithRetry(cmd.Context(), app.Client.AlgoStatus)
	if err != nil {
		output.Warning("Command sent, but status confirmation failed: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(status)
	}
	renderAlgoStatus(output, status, 5)
	return nil
}

func renderAlgoStatus(output *Output, status *models.AlgoStatus, logLimit int) {
	state := output.Red("● STOPPED")
	if status.Running {
		state = output.Green("● RUNNING")
	}
	output.Bold("Strategy")
	output.Printf("  State:  %s\n", state)
	if status.Symbol != "" {
		output.Printf("  Symbol: %s\n", status.Symbol)
	}

	if len(status.Logs) == 0 {
		return
	}
	output.Println()
	output.Bold("Activity")
	for _, entry := range status.RecentLogs(logLimit) {
		line := entry.Time + "  " + algoActionCell(output, entry.Action)
		if entry.Price > 0 {
			line += output.DimText("  price=") + formatAlgoValue(entry.Price)
		}
		if entry.SMA > 0 {
			line += output.DimText("  sma=") + formatAlgoValue(entry.SMA)
		}
		output.Printf("  %s\n", line)
	}
}

func algoActionCell(output *Output, action models.AlgoAction) string {
	switch action {
	case models.AlgoActionSignalBuy:
		return output.Green(string(action))
	case models.AlgoActionSignalSell:
		return output.Red(string(action))
	case models.AlgoActionError:
		return output.Red(string(action))
	case models.AlgoActionStarted, models.AlgoActionStopped:
		return output.Cyan(string(action))
	default:
		return output.DimText(string(action))
	}
}

func formatAlgoValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
