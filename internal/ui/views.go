package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"alphaquant-console/internal/models"
	"alphaquant-console/internal/poll"
	"alphaquant-console/pkg/utils"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	staleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	focusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.outcome != nil {
		b.WriteString(m.renderOutcomeModal())
	} else {
		switch m.active {
		case viewDashboard:
			b.WriteString(m.renderDashboard())
		case viewChart:
			b.WriteString(m.renderChart())
		case viewTrade:
			b.WriteString(m.renderTrade())
		case viewAlgo:
			b.WriteString(m.renderAlgo())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *model) renderTabs() string {
	var tabs []string
	for v := viewDashboard; v <= viewAlgo; v++ {
		label := fmt.Sprintf("%d %s", int(v)+1, v.title())
		if v == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) renderStatusBar() string {
	parts := []string{
		labelStyle.Render(string(m.eng.deps.Config.Mode())),
		labelStyle.Render(string(utils.GetMarketStatus(time.Now()))),
	}
	if m.status != "" {
		parts = append(parts, errStyle.Render(m.status))
	}
	help := "1-4 views · q quit"
	switch m.active {
	case viewChart:
		help = "s symbol · 1-4 views · q quit"
	case viewTrade:
		help = "tab field · b/s side · enter submit · q quit"
	case viewAlgo:
		help = "space toggle · 1-4 views · q quit"
	}
	parts = append(parts, helpStyle.Render(help))
	return strings.Join(parts, "  ")
}

// freshness renders the snapshot's age and error state. A failing
// snapshot keeps showing its last good data, flagged as stale.
func freshness[T any](snap poll.Snapshot[T]) string {
	if snap.UpdatedAt.IsZero() {
		return staleStyle.Render("waiting for data...")
	}
	age := time.Since(snap.UpdatedAt).Round(time.Second)
	if snap.Err != nil {
		return staleStyle.Render(fmt.Sprintf("STALE · last update %s ago · %v", age, snap.Err))
	}
	return labelStyle.Render(fmt.Sprintf("updated %s ago", age))
}

func (m *model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Account"))
	b.WriteString("\n")

	if !m.dashboard.HasData {
		b.WriteString(freshness(m.dashboard))
		return b.String()
	}

	if account, ok := poll.Get[*models.Account](m.dashboard.Data, memberAccount); ok {
		b.WriteString(kv("Portfolio", utils.FormatUSD(account.PortfolioValue)))
		b.WriteString(kv("Buying power", utils.FormatUSD(account.BuyingPower)))
		b.WriteString(kv("Cash", utils.FormatUSD(account.Cash)))
		b.WriteString(kv("Status", account.Status))
	}

	if equity, ok := poll.Get[[]models.EquityPoint](m.dashboard.Data, memberEquity); ok && len(equity) > 0 {
		last := equity[len(equity)-1]
		b.WriteString(kv("P&L", pnl(last.ProfitLoss)+" ("+pnl(last.ProfitLossPct)+"%)"))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  equity "))
		b.WriteString(equityLine(equity, 50))
		b.WriteString("\n")
	}

	if positions, ok := poll.Get[[]models.Position](m.dashboard.Data, memberPositions); ok {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Positions"))
		b.WriteString("\n")
		if len(positions) == 0 {
			b.WriteString(labelStyle.Render("  none"))
			b.WriteString("\n")
		}
		for _, p := range positions {
			line := fmt.Sprintf("  %-6s %-5s %8s @ %10s  %12s  %s",
				p.Symbol, p.Side,
				utils.FormatQuantity(p.Quantity),
				utils.FormatUSD(p.AvgEntryPrice),
				utils.FormatUSD(p.MarketValue),
				pnl(p.UnrealizedPL))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(freshness(m.dashboard))
	return b.String()
}

func (m *model) renderChart() string {
	var b strings.Builder
	if m.editSymbol {
		b.WriteString(titleStyle.Render("Symbol: "))
		b.WriteString(focusStyle.Render(m.symbolInput + "▏"))
		b.WriteString("\n\n")
	}
	b.WriteString(m.surface.Render())
	b.WriteString("\n\n")
	b.WriteString(freshness(m.chartSnap))
	return b.String()
}

func (m *model) renderTrade() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Order"))
	b.WriteString("\n\n")

	b.WriteString(m.formLine(fieldSymbol, "Symbol", m.form.symbol))
	b.WriteString(m.formLine(fieldQty, "Quantity", m.form.qty))
	b.WriteString(m.formLine(fieldSide, "Side", strings.ToUpper(string(m.form.side))))

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(warnStyle.Render("submitting..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Open Orders"))
	b.WriteString("\n")
	if m.orders.HasData && len(m.orders.Data) > 0 {
		for _, o := range m.orders.Data {
			b.WriteString(fmt.Sprintf("  %-6s %-4s %8s  %-10s %s\n",
				o.Symbol, o.Side, utils.FormatQuantity(o.Quantity), o.Status, o.SubmittedAt))
		}
	} else {
		b.WriteString(labelStyle.Render("  none"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(freshness(m.orders))
	return b.String()
}

func (m *model) formLine(field tradeField, label, value string) string {
	cursor := "  "
	rendered := valueStyle.Render(value)
	if m.form.focused == field {
		cursor = "> "
		rendered = focusStyle.Render(value + "▏")
	}
	return fmt.Sprintf("%s%-10s %s\n", cursor, labelStyle.Render(label), rendered)
}

func (m *model) renderAlgo() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Strategy"))
	b.WriteString("\n")

	if !m.algoSnap.HasData || m.algoSnap.Data == nil {
		b.WriteString(freshness(m.algoSnap))
		return b.String()
	}
	status := m.algoSnap.Data

	state := lossStyle.Render("● STOPPED")
	if status.Running {
		state = gainStyle.Render("● RUNNING")
	}
	b.WriteString(kv("State", state))
	if status.Symbol != "" {
		b.WriteString(kv("Symbol", status.Symbol))
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Activity"))
	b.WriteString("\n")
	for _, entry := range status.RecentLogs(m.height - 14) {
		action := string(entry.Action)
		switch entry.Action {
		case models.AlgoActionSignalBuy:
			action = gainStyle.Render(action)
		case models.AlgoActionSignalSell, models.AlgoActionError:
			action = lossStyle.Render(action)
		default:
			action = labelStyle.Render(action)
		}
		line := fmt.Sprintf("  %s  %-22s", entry.Time, action)
		if entry.Price > 0 {
			line += fmt.Sprintf("  price %.2f  sma %.2f", entry.Price, entry.SMA)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(freshness(m.algoSnap))
	return b.String()
}

func (m *model) renderOutcomeModal() string {
	o := m.outcome
	var lines []string
	switch o.Kind {
	case models.OutcomeAccepted:
		lines = append(lines, gainStyle.Render("ORDER ACCEPTED"))
		if o.Order != nil {
			lines = append(lines, fmt.Sprintf("id %s · %s", o.Order.ID, o.Order.Status))
		}
		lines = append(lines, "", helpStyle.Render("enter dismiss"))
	case models.OutcomeBlockedCritical:
		lines = append(lines, errStyle.Render("BLOCKED BY RISK FIREWALL"))
		lines = append(lines, "reason: "+o.Reason)
		lines = append(lines, fmt.Sprintf("risk score: %.1f", o.RiskScore))
		lines = append(lines, "", helpStyle.Render("o override · enter dismiss"))
	case models.OutcomeBlockedWarning:
		lines = append(lines, warnStyle.Render("STRATEGY MISMATCH"))
		lines = append(lines, "reason: "+o.Reason)
		lines = append(lines, fmt.Sprintf("compatibility: %.1f", o.CompatibilityScore))
		lines = append(lines, "", helpStyle.Render("o override · enter dismiss"))
	case models.OutcomeFailed:
		lines = append(lines, errStyle.Render("ORDER FAILED"))
		lines = append(lines, o.Message)
		lines = append(lines, "", helpStyle.Render("enter dismiss"))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func kv(label, value string) string {
	return fmt.Sprintf("  %-14s %s\n", labelStyle.Render(label), value)
}

func pnl(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	if v < 0 {
		return lossStyle.Render(s)
	}
	return gainStyle.Render(s)
}

var equityBlocks = []rune("▁▂▃▄▅▆▇█")

func equityLine(points []models.EquityPoint, width int) string {
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
			idx = int((p.Equity - lo) / (hi - lo) * float64(len(equityBlocks)-1))
		}
		out[i] = equityBlocks[idx]
	}
	return string(out)
}
