// Package ui implements the interactive full-screen console.
//
// Each view owns a polled resource: the scheduler goroutines push
// snapshots into the bubbletea program as messages, so the UI thread
// only ever sees consistent, generation-checked state.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"alphaquant-console/internal/algo"
	"alphaquant-console/internal/api"
	"alphaquant-console/internal/config"
	"alphaquant-console/internal/gate"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/poll"
	"alphaquant-console/internal/store"
)

// Deps are the dependencies the console runs on.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger
	Client *api.Client
	Store  store.DataStore
	Gate   *gate.Gate
	Symbol string
}

// Snapshot messages pushed from the poll scheduler into the UI loop.
type (
	dashboardMsg poll.Snapshot[poll.GroupResult]
	chartMsg     poll.Snapshot[*models.ChartData]
	ordersMsg    poll.Snapshot[[]models.Order]
	algoMsg      poll.Snapshot[*models.AlgoStatus]

	outcomeMsg   models.OrderOutcome
	submitErrMsg struct{ err error }
	toggleErrMsg struct{ err error }
	resizeMsg    struct{ width int }
)

// Dashboard composite member names.
const (
	memberAccount   = "account"
	memberPositions = "positions"
	memberEquity    = "equity"
)

// engine owns the pollers and bridges their callbacks into the program.
type engine struct {
	deps    Deps
	program *tea.Program
	runCtx  context.Context

	dashboard *poll.Poller[poll.GroupResult]
	chart     *poll.Poller[*models.ChartData]
	orders    *poll.Poller[[]models.Order]
	algo      *algo.Controller
}

func newEngine(deps Deps) *engine {
	client := deps.Client
	logger := deps.Logger

	e := &engine{deps: deps}

	e.dashboard = poll.NewPoller(
		poll.Composite(map[string]poll.FetchFunc[interface{}]{
			memberAccount: poll.Untyped(func(ctx context.Context, _ poll.Subscription) (*models.Account, error) {
				return client.Account(ctx)
			}),
			memberPositions: poll.Untyped(func(ctx context.Context, _ poll.Subscription) ([]models.Position, error) {
				return client.Positions(ctx)
			}),
			memberEquity: poll.Untyped(func(ctx context.Context, _ poll.Subscription) ([]models.EquityPoint, error) {
				return client.EquityHistory(ctx)
			}),
		}),
		pollConfig(deps.Config.Poll.DashboardSeconds),
		logger,
	)

	e.chart = poll.NewPoller(
		func(ctx context.Context, sub poll.Subscription) (*models.ChartData, error) {
			return client.Chart(ctx, sub.Param("symbol"), api.ChartParams{
				Period:   sub.Param("period"),
				Interval: sub.Param("interval"),
			})
		},
		pollConfig(deps.Config.Poll.ChartSeconds),
		logger,
	)

	e.orders = poll.NewPoller(
		func(ctx context.Context, _ poll.Subscription) ([]models.Order, error) {
			return client.Orders(ctx, api.OrderStatusOpen)
		},
		pollConfig(deps.Config.Poll.OrdersSeconds),
		logger,
	)

	e.algo = algo.NewController(client, pollConfig(deps.Config.Poll.AlgoSeconds), logger)

	return e
}

func pollConfig(seconds int) poll.Config {
	cfg := poll.DefaultConfig()
	if seconds > 0 {
		cfg.Interval = time.Duration(seconds) * time.Second
	}
	return cfg
}

// start wires snapshot delivery and begins polling. Callbacks run on
// scheduler goroutines; program.Send hands them to the UI loop.
func (e *engine) start(ctx context.Context, program *tea.Program, symbol string) {
	e.program = program
	e.runCtx = ctx

	e.dashboard.OnUpdate(func(s poll.Snapshot[poll.GroupResult]) { program.Send(dashboardMsg(s)) })
	e.orders.OnUpdate(func(s poll.Snapshot[[]models.Order]) { program.Send(ordersMsg(s)) })
	e.chart.OnUpdate(func(s poll.Snapshot[*models.ChartData]) { program.Send(chartMsg(s)) })
	e.algo.OnUpdate(func(s poll.Snapshot[*models.AlgoStatus]) { program.Send(algoMsg(s)) })

	// An accepted order changes open orders and balances right away.
	e.deps.Gate.OnAccepted(func(models.OrderOutcome) {
		e.orders.RefreshNow()
		e.dashboard.RefreshNow()
	})

	e.dashboard.Start(ctx, poll.NewSubscription("dashboard", nil))
	e.orders.Start(ctx, poll.NewSubscription("orders", nil))
	e.algo.Start(ctx)
	e.retargetChart(symbol)
}

// retargetChart replaces the chart subscription; in-flight results for
// the old symbol are invalidated by the generation bump.
func (e *engine) retargetChart(symbol string) {
	e.chart.Start(e.runCtx, poll.NewSubscription("chart", map[string]string{
		"symbol":   symbol,
		"period":   e.deps.Config.UI.ChartPeriod,
		"interval": e.deps.Config.UI.ChartBars,
	}))
}

func (e *engine) stop() {
	e.dashboard.Stop()
	e.chart.Stop()
	e.orders.Stop()
	e.algo.Stop()
}

// submitOrder runs a gate submission off the UI thread.
func (e *engine) submitOrder(req models.OrderRequest) tea.Cmd {
	return func() tea.Msg {
		outcome, err := e.deps.Gate.Submit(context.Background(), req)
		if err != nil {
			return submitErrMsg{err}
		}
		e.journal(req, outcome)
		return outcomeMsg(outcome)
	}
}

// overrideOrder resubmits the retained blocked request.
func (e *engine) overrideOrder() tea.Cmd {
	return func() tea.Msg {
		req := e.deps.Gate.LastRequest()
		outcome, err := e.deps.Gate.Override(context.Background())
		if err != nil {
			return submitErrMsg{err}
		}
		if req != nil {
			e.journal(*req, outcome)
		}
		return outcomeMsg(outcome)
	}
}

func (e *engine) journal(req models.OrderRequest, outcome models.OrderOutcome) {
	if e.deps.Store == nil {
		return
	}
	if err := e.deps.Store.JournalOutcome(context.Background(), req, outcome); err != nil {
		e.deps.Logger.Warn().Err(err).Msg("Failed to journal order outcome")
	}
}

// toggleAlgo flips the strategy off the UI thread; the confirming status
// poll arrives as a regular algoMsg.
func (e *engine) toggleAlgo() tea.Cmd {
	return func() tea.Msg {
		if err := e.algo.Toggle(context.Background()); err != nil {
			return toggleErrMsg{err}
		}
		return nil
	}
}

// Run starts the console and blocks until the user quits.
func Run(deps Deps) error {
	eng := newEngine(deps)
	m := newModel(eng, deps.Symbol)

	program := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.start(ctx, program, deps.Symbol)
	defer eng.stop()

	_, err := program.Run()
	return err
}
