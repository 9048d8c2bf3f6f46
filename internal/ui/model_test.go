package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/config"
	"alphaquant-console/internal/gate"
	"alphaquant-console/internal/models"
)

func testModel(t *testing.T) *model {
	t.Helper()
	logger := zerolog.Nop()
	client, err := api.New(api.Config{BaseURL: "http://127.0.0.1:1"}, logger)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	eng := newEngine(Deps{
		Config: &config.Config{},
		Logger: logger,
		Client: client,
		Gate:   gate.New(client, logger),
		Symbol: "SPY",
	})
	eng.runCtx = context.Background()
	return newModel(eng, "SPY")
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *model, msg tea.Msg) *model {
	next, _ := m.Update(msg)
	return next.(*model)
}

func TestNumberKeysSwitchViews(t *testing.T) {
	m := testModel(t)

	m = press(m, keyRunes("2"))
	if m.active != viewChart {
		t.Fatalf("active = %v after '2', want chart", m.active)
	}
	m = press(m, keyRunes("4"))
	if m.active != viewAlgo {
		t.Fatalf("active = %v after '4', want algo", m.active)
	}
	m = press(m, keyRunes("1"))
	if m.active != viewDashboard {
		t.Fatalf("active = %v after '1', want dashboard", m.active)
	}
}

func TestQuantityFieldKeepsDigits(t *testing.T) {
	m := testModel(t)
	m.active = viewTrade
	m.form.focused = fieldQty

	for _, k := range []string{"1", "2", ".", "5"} {
		m = press(m, keyRunes(k))
	}
	if m.form.qty != "12.5" {
		t.Fatalf("qty = %q, want 12.5", m.form.qty)
	}
	if m.active != viewTrade {
		t.Fatalf("digit input switched view to %v", m.active)
	}
}

func TestSymbolFieldKeepsLetters(t *testing.T) {
	m := testModel(t)
	m.active = viewTrade
	m.form.focused = fieldSymbol
	m.form.symbol = ""

	var cmd tea.Cmd
	for _, k := range []string{"q", "q", "q"} {
		next, c := m.Update(keyRunes(k))
		m = next.(*model)
		cmd = c
	}
	if m.form.symbol != "QQQ" {
		t.Fatalf("symbol = %q, want QQQ", m.form.symbol)
	}
	if cmd != nil {
		t.Fatal("typing into the symbol field produced a command")
	}
}

func TestSideFieldToggle(t *testing.T) {
	m := testModel(t)
	m.active = viewTrade
	m.form.focused = fieldSide

	m = press(m, keyRunes("s"))
	if m.form.side != models.OrderSideSell {
		t.Fatalf("side = %v after 's', want sell", m.form.side)
	}
	m = press(m, keyRunes("b"))
	if m.form.side != models.OrderSideBuy {
		t.Fatalf("side = %v after 'b', want buy", m.form.side)
	}
}

func TestOutcomeModalBlocksViewKeys(t *testing.T) {
	m := testModel(t)
	outcome := models.OrderOutcome{Kind: models.OutcomeFailed, Message: "nope"}
	m.outcome = &outcome

	m = press(m, keyRunes("2"))
	if m.active == viewChart {
		t.Fatal("view switched while outcome modal was up")
	}
	if m.outcome == nil {
		t.Fatal("outcome cleared by a non-dismiss key")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.outcome != nil {
		t.Fatal("outcome not cleared by enter")
	}
}

func TestSymbolEditCapturesInput(t *testing.T) {
	m := testModel(t)
	m.active = viewChart

	m = press(m, keyRunes("s"))
	if !m.editSymbol {
		t.Fatal("'s' did not open symbol entry")
	}

	for _, k := range []string{"q", "q", "q"} {
		m = press(m, keyRunes(k))
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	defer m.eng.stop()

	if m.editSymbol {
		t.Fatal("symbol entry still open after enter")
	}
	if m.symbol != "QQQ" {
		t.Fatalf("symbol = %q after entry, want QQQ", m.symbol)
	}
	if m.form.symbol != "QQQ" {
		t.Fatalf("trade form symbol = %q, want QQQ", m.form.symbol)
	}
	if m.chartSnap.HasData {
		t.Fatal("chart snapshot survived a symbol change")
	}
}

func TestSymbolEditEscCancels(t *testing.T) {
	m := testModel(t)
	m.active = viewChart

	m = press(m, keyRunes("s"))
	m = press(m, keyRunes("q"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.editSymbol {
		t.Fatal("esc did not close symbol entry")
	}
	if m.symbol != "SPY" {
		t.Fatalf("symbol = %q after cancel, want SPY", m.symbol)
	}
}
