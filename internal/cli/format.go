package cli

import (
	"time"

	"alphaquant-console/internal/models"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// equitySparkline compresses the equity curve into one line of block
// characters, at most width columns wide.
func equitySparkline(points []models.EquityPoint, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	lo, hi := points[0].Equity, points[0].Equity
	for _, p := range points {
		if p.Equity < lo {
			lo = p.Equity
		}
		if p.Equity > hi {
			hi = p.Equity
		}
	}

	out := make([]rune, len(points))
	for i, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p.Equity - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// renderOutcome prints a settled submission in the class-appropriate tone.
func renderOutcome(output *Output, outcome models.OrderOutcome) {
	switch outcome.Kind {
	case models.OutcomeAccepted:
		output.Success("Order accepted.")
		if outcome.Order != nil {
			output.Printf("  ID:     %s\n", outcome.Order.ID)
			output.Printf("  Status: %s\n", outcome.Order.Status)
		}
	case models.OutcomeBlockedCritical:
		output.Error("BLOCKED by risk firewall")
		output.Printf("  Reason:     %s\n", outcome.Reason)
		output.Printf("  Risk score: %.1f\n", outcome.RiskScore)
	case models.OutcomeBlockedWarning:
		output.Warning("Blocked: strategy mismatch")
		output.Printf("  Reason:        %s\n", outcome.Reason)
		output.Printf("  Compatibility: %.1f\n", outcome.CompatibilityScore)
	case models.OutcomeFailed:
		output.Error("Order failed: %s", outcome.Message)
	}
}

// formatUnix renders a unix timestamp for headlines.
func formatUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).Format("Jan 02 15:04")
}
