package cli

import (
	"github.com/spf13/cobra"

	"alphaquant-console/internal/models"
)

func addSettingsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Backend settings: credentials, mode, sim reset",
	}
	cmd.AddCommand(newSettingsStatusCmd(app))
	cmd.AddCommand(newSettingsKeysCmd(app))
	cmd.AddCommand(newSettingsModeCmd(app))
	cmd.AddCommand(newSimResetCmd(app))
	rootCmd.AddCommand(cmd)
}

func newSettingsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backend's stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			status, err := fetchWithRetry(cmd.Context(), app.Client.SettingsStatus)
			if err != nil {
				output.Error("Failed to fetch settings: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(status)
			}

			output.Bold("Backend Settings")
			output.Printf("  Mode:        %s\n", status.Mode)
			keys := output.Red("not stored")
			if status.KeysStored {
				keys = output.Green("stored")
			}
			output.Printf("  Broker keys: %s\n", keys)
			output.Printf("  Sim resets:  %d\n", status.SimResetCount)
			if status.UpdatedAt != "" {
				output.Dim("  Updated: %s", status.UpdatedAt)
			}
			return nil
		},
	}
}

func newSettingsKeysCmd(app *App) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "keys KEY_ID SECRET",
		Short: "Store broker API keys server-side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			err := app.Client.SaveCredentials(cmd.Context(), models.CredentialRequest{
				APIKeyID:  args[0],
				APISecret: args[1],
				Mode:      models.Mode(mode),
			})
			if err != nil {
				output.Error("Failed to store keys: %v", err)
				return err
			}
			output.Success("Broker keys stored for %s mode.", mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(models.ModePaper), "mode the keys are for: paper, live")
	return cmd
}

func newSettingsModeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mode {sim|paper|live}",
		Short: "Switch the backend trading mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			mode := models.Mode(args[0])
			if mode == models.ModeLive {
				if !confirm(cmd, output, "Switch to LIVE trading with real money?") {
					output.Dim("Cancelled.")
					return nil
				}
			}
			if err := app.Client.SetMode(cmd.Context(), mode); err != nil {
				output.Error("Failed to switch mode: %v", err)
				return err
			}

			// Account state changes with the mode; show the fresh view
			// immediately instead of leaving a stale impression.
			account, err := app.Client.Account(cmd.Context())
			if err != nil {
				output.Warning("Mode switched, but account refresh failed: %v", err)
				return nil
			}
			output.Success("Mode switched to %s.", mode)
			output.Printf("  Portfolio value: %.2f %s\n", account.PortfolioValue, account.Currency)
			return nil
		},
	}
}

func newSimResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sim-reset",
		Short: "Reset the simulation account to its starting balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			if !confirm(cmd, output, "Reset the sim account? All sim positions and history are lost.") {
				output.Dim("Cancelled.")
				return nil
			}
			if err := app.Client.ResetSim(cmd.Context()); err != nil {
				output.Error("Failed to reset sim: %v", err)
				return err
			}
			output.Success("Simulation account reset.")
			return nil
		},
	}
}
