package ui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"alphaquant-console/internal/chart"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/poll"
)

// view identifies the active console view.
type view int

const (
	viewDashboard view = iota
	viewChart
	viewTrade
	viewAlgo
)

func (v view) title() string {
	switch v {
	case viewDashboard:
		return "Dashboard"
	case viewChart:
		return "Chart"
	case viewTrade:
		return "Trade"
	case viewAlgo:
		return "Algo"
	default:
		return "?"
	}
}

// resizeDebounce is how long the window size must hold still before the
// chart surface is resized.
const resizeDebounce = 250 * time.Millisecond

// tradeField indexes the trade form inputs.
type tradeField int

const (
	fieldSymbol tradeField = iota
	fieldQty
	fieldSide
)

type tradeForm struct {
	symbol  string
	qty     string
	side    models.OrderSide
	focused tradeField
}

// wantsRune reports whether the focused field consumes the rune.
func (f tradeForm) wantsRune(r rune) bool {
	switch f.focused {
	case fieldSymbol:
		return isSymbolRune(r)
	case fieldQty:
		return (r >= '0' && r <= '9') || r == '.'
	case fieldSide:
		return r == 'b' || r == 's'
	}
	return false
}

type model struct {
	eng    *engine
	width  int
	height int
	active view

	symbol      string
	symbolInput string
	editSymbol  bool

	dashboard poll.Snapshot[poll.GroupResult]
	chartSnap poll.Snapshot[*models.ChartData]
	orders    poll.Snapshot[[]models.Order]
	algoSnap  poll.Snapshot[*models.AlgoStatus]

	surface *chart.TermSurface
	session *chart.Session

	form       tradeForm
	submitting bool
	outcome    *models.OrderOutcome
	status     string

	pendingWidth int
}

func newModel(eng *engine, symbol string) *model {
	surface := chart.NewTermSurface(100)
	return &model{
		eng:     eng,
		symbol:  symbol,
		surface: surface,
		session: chart.NewSession(symbol, surface, eng.deps.Logger),
		form: tradeForm{
			symbol: symbol,
			side:   models.OrderSideBuy,
		},
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.pendingWidth = msg.Width
		return m, tea.Tick(resizeDebounce, func(time.Time) tea.Msg {
			return resizeMsg{width: msg.Width}
		})

	case resizeMsg:
		// Apply only the debounced size that is still current.
		if msg.width == m.pendingWidth && m.session.State() == chart.StateLive {
			m.session.Resize(chartWidth(msg.width))
		}
		return m, nil

	case dashboardMsg:
		m.dashboard = poll.Snapshot[poll.GroupResult](msg)
		return m, nil

	case ordersMsg:
		m.orders = poll.Snapshot[[]models.Order](msg)
		return m, nil

	case algoMsg:
		m.algoSnap = poll.Snapshot[*models.AlgoStatus](msg)
		return m, nil

	case chartMsg:
		m.chartSnap = poll.Snapshot[*models.ChartData](msg)
		m.applyChartSnapshot()
		return m, nil

	case outcomeMsg:
		m.submitting = false
		outcome := models.OrderOutcome(msg)
		m.outcome = &outcome
		return m, nil

	case submitErrMsg:
		m.submitting = false
		m.status = "submit: " + msg.err.Error()
		return m, nil

	case toggleErrMsg:
		m.status = "algo: " + msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyChartSnapshot feeds a fresh payload into the chart session,
// rebuilding the session if it was disposed.
func (m *model) applyChartSnapshot() {
	if !m.chartSnap.HasData || m.chartSnap.Data == nil {
		return
	}
	if m.session.State() == chart.StateDisposed {
		m.session = chart.NewSession(m.symbol, m.surface, m.eng.deps.Logger)
	}
	if err := m.session.ReplaceData(*m.chartSnap.Data); err != nil {
		m.eng.deps.Logger.Warn().Err(err).Msg("Chart update rejected")
	}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Symbol entry captures all input until confirmed or cancelled.
	if m.editSymbol {
		return m.handleSymbolKey(msg)
	}
	// A settled outcome must be acted on before anything else.
	if m.outcome != nil {
		return m.handleOutcomeKey(key)
	}

	// Runes the focused trade field would consume never reach the
	// global bindings, so symbols like "QQQ" are typable.
	if m.active == viewTrade && len(msg.Runes) == 1 && m.form.wantsRune(msg.Runes[0]) {
		return m.handleTradeKey(msg)
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.active = viewDashboard
	case "2":
		m.active = viewChart
	case "3":
		m.active = viewTrade
	case "4":
		m.active = viewAlgo
	default:
		switch m.active {
		case viewChart:
			if key == "s" {
				m.editSymbol = true
				m.symbolInput = ""
			}
		case viewTrade:
			return m.handleTradeKey(msg)
		case viewAlgo:
			if key == " " || key == "t" {
				m.status = ""
				return m, m.eng.toggleAlgo()
			}
		}
	}
	return m, nil
}

func (m *model) handleSymbolKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editSymbol = false
		symbol := strings.ToUpper(strings.TrimSpace(m.symbolInput))
		if symbol != "" && symbol != m.symbol {
			m.retarget(symbol)
		}
	case "esc":
		m.editSymbol = false
	case "backspace":
		if len(m.symbolInput) > 0 {
			m.symbolInput = m.symbolInput[:len(m.symbolInput)-1]
		}
	default:
		if len(msg.Runes) == 1 && isSymbolRune(msg.Runes[0]) {
			m.symbolInput += string(msg.Runes)
		}
	}
	return m, nil
}

// retarget switches the chart to a new symbol: the old session is
// disposed (releasing the surface for its successor) and the poller is
// restarted so any in-flight fetch for the old symbol is discarded.
func (m *model) retarget(symbol string) {
	m.symbol = symbol
	m.form.symbol = symbol
	m.session.Dispose()
	m.session = chart.NewSession(symbol, m.surface, m.eng.deps.Logger)
	m.chartSnap = poll.Snapshot[*models.ChartData]{}
	m.eng.retargetChart(symbol)
}

func (m *model) handleOutcomeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "o":
		if m.outcome.Blocked() {
			m.outcome = nil
			m.submitting = true
			return m, m.eng.overrideOrder()
		}
	case "enter", "esc":
		m.outcome = nil
		m.eng.deps.Gate.Acknowledge()
	}
	return m, nil
}

func (m *model) handleTradeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "tab":
		m.form.focused = (m.form.focused + 1) % 3
	case "shift+tab":
		m.form.focused = (m.form.focused + 2) % 3
	case "enter":
		return m.submitForm()
	case "backspace":
		switch m.form.focused {
		case fieldSymbol:
			if len(m.form.symbol) > 0 {
				m.form.symbol = m.form.symbol[:len(m.form.symbol)-1]
			}
		case fieldQty:
			if len(m.form.qty) > 0 {
				m.form.qty = m.form.qty[:len(m.form.qty)-1]
			}
		}
	default:
		if len(msg.Runes) != 1 {
			break
		}
		r := msg.Runes[0]
		switch m.form.focused {
		case fieldSymbol:
			if isSymbolRune(r) {
				m.form.symbol += strings.ToUpper(string(r))
			}
		case fieldQty:
			if (r >= '0' && r <= '9') || r == '.' {
				m.form.qty += string(r)
			}
		case fieldSide:
			if r == 'b' {
				m.form.side = models.OrderSideBuy
			}
			if r == 's' {
				m.form.side = models.OrderSideSell
			}
		}
	}
	return m, nil
}

func (m *model) submitForm() (tea.Model, tea.Cmd) {
	qty, err := strconv.ParseFloat(m.form.qty, 64)
	if err != nil {
		m.status = "invalid quantity"
		return m, nil
	}
	req := models.OrderRequest{
		Symbol:      strings.ToUpper(strings.TrimSpace(m.form.symbol)),
		Quantity:    qty,
		Side:        m.form.side,
		Type:        models.OrderTypeMarket,
		TimeInForce: m.eng.deps.Config.Trading.TimeInForce,
	}
	m.status = ""
	m.submitting = true
	return m, m.eng.submitOrder(req)
}

func isSymbolRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '.' || r == '-'
}

func chartWidth(total int) int {
	if total <= 0 {
		return 100
	}
	return total - 2
}
