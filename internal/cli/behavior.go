package cli

import (
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alphaquant-console/pkg/utils"
)

func addBehaviorCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "behavior",
		Short: "Behavioral analytics computed by the backend",
	}
	cmd.AddCommand(newRiskScoreCmd(app))
	cmd.AddCommand(newStrategyDNACmd(app))
	cmd.AddCommand(newPatternsCmd(app))
	cmd.AddCommand(newSkillCmd(app))
	cmd.AddCommand(newBiasesCmd(app))
	cmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(cmd)
}

func newRiskScoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Show the psychological risk score behind the order firewall",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			score, err := fetchWithRetry(cmd.Context(), app.Client.RiskScore)
			if err != nil {
				output.Error("Failed to fetch risk score: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(score)
			}

			state := color.New(color.FgGreen)
			switch score.RiskState {
			case "elevated":
				state = color.New(color.FgYellow)
			case "critical":
				state = color.New(color.FgRed, color.Bold)
			}

			output.Bold("Risk Score")
			output.Printf("  Score:  %d/100 (%s)\n", score.Score, state.Sprint(strings.ToUpper(score.RiskState)))
			output.Printf("  Window: %d trades over %d days\n", score.TradesAnalyzed, score.LookbackDays)

			if len(score.Factors) > 0 {
				output.Println()
				output.Bold("Factors")
				names := make([]string, 0, len(score.Factors))
				for name := range score.Factors {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					output.Printf("  %-28s %s\n", name, factorBar(score.Factors[name]))
				}
			}
			return nil
		},
	}
}

// factorBar draws a 20-column intensity bar colored by severity.
func factorBar(value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value * 20)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
	switch {
	case value >= 0.7:
		return color.RedString(bar)
	case value >= 0.4:
		return color.YellowString(bar)
	default:
		return color.GreenString(bar)
	}
}

func newStrategyDNACmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dna",
		Short: "Show identified strategy fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			dna, err := fetchWithRetry(cmd.Context(), app.Client.StrategyDNA)
			if err != nil {
				output.Error("Failed to fetch strategy DNA: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(dna)
			}
			if len(dna.Fingerprints) == 0 {
				output.Dim("Not enough history to identify strategies yet.")
				return nil
			}

			table := NewTable(output, "STRATEGY", "TRADES", "WIN RATE", "AVG HOLD", "CONFIDENCE")
			for _, fp := range dna.Fingerprints {
				table.AddRow(
					fp.Name,
					utils.FormatQuantity(float64(fp.TradeCount)),
					utils.FormatPercent(fp.WinRate*100),
					fp.AvgHoldTime,
					utils.FormatPercent(fp.Confidence*100),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Show detected behavior chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			patterns, err := fetchWithRetry(cmd.Context(), app.Client.BehaviorPatterns)
			if err != nil {
				output.Error("Failed to fetch behavior patterns: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(patterns)
			}
			if len(patterns.Patterns) == 0 {
				output.Dim("No behavior chains detected.")
				return nil
			}

			names := make([]string, 0, len(patterns.Patterns))
			for name := range patterns.Patterns {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				return patterns.Patterns[names[i]] > patterns.Patterns[names[j]]
			})

			output.Bold("Behavior chains (%d total)", patterns.TotalChains)
			for _, name := range names {
				output.Printf("  %-32s %d\n", name, patterns.Patterns[name])
			}
			return nil
		},
	}
}

func newSkillCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skill",
		Short: "Show the trader skill profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			skill, err := fetchWithRetry(cmd.Context(), app.Client.SkillScore)
			if err != nil {
				output.Error("Failed to fetch skill score: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(skill)
			}
			if len(skill.Current) == 0 {
				output.Dim("No skill data yet.")
				return nil
			}

			dims := make([]string, 0, len(skill.Current))
			for dim := range skill.Current {
				dims = append(dims, dim)
			}
			sort.Strings(dims)

			output.Bold("Skill Profile")
			for _, dim := range dims {
				output.Printf("  %-20s %s %.0f\n", dim, factorBar(skill.Current[dim]/100), skill.Current[dim])
			}
			return nil
		},
	}
}

func newBiasesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "biases",
		Short: "Show the cognitive bias heatmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			heatmap, err := fetchWithRetry(cmd.Context(), app.Client.BiasHeatmap)
			if err != nil {
				output.Error("Failed to fetch bias heatmap: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(heatmap)
			}
			if len(heatmap.Cells) == 0 {
				output.Dim("No bias data yet.")
				return nil
			}

			table := NewTable(output, "BIAS", "BUCKET", "INTENSITY", "COUNT")
			for _, cell := range heatmap.Cells {
				table.AddRow(
					cell.Bias,
					cell.Bucket,
					factorBar(cell.Intensity),
					utils.FormatQuantity(float64(cell.Count)),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newBacktestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Compare actual P&L against the disciplined what-if curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !app.requireClient(output) {
				return nil
			}
			comparison, err := fetchWithRetry(cmd.Context(), app.Client.BehavioralBacktest)
			if err != nil {
				output.Error("Failed to fetch backtest: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(comparison)
			}

			output.Bold("Behavioral Backtest")
			output.Printf("  Actual P&L:       %s\n", output.FormatPnL(comparison.ActualPnL))
			output.Printf("  Disciplined P&L:  %s\n", output.FormatPnL(comparison.DisciplinedPnL))
			output.Printf("  Emotional trades: %d\n", comparison.EmotionalTrades)
			delta := comparison.DisciplinedPnL - comparison.ActualPnL
			output.Printf("  Cost of emotion:  %s\n", output.FormatPnL(-delta))

			if len(comparison.ActualCurve) > 1 {
				output.Println()
				output.Printf("  actual   %s\n", equitySparkline(comparison.ActualCurve, 50))
			}
			if len(comparison.WhatIfCurve) > 1 {
				output.Printf("  what-if  %s\n", equitySparkline(comparison.WhatIfCurve, 50))
			}
			return nil
		},
	}
}
