// Package algo drives the control panel for the backend's background
// strategy.
//
// The backend is the only authority on whether the strategy is running.
// The controller never applies a start/stop acknowledgment to its own
// state; every command is followed by an immediate status poll, and the
// activity log is replaced wholesale on each refresh.
package algo

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/logging"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/poll"
)

// Engine is the backend surface the controller talks to.
type Engine interface {
	StartAlgo(ctx context.Context) (*models.AlgoCommandResult, error)
	StopAlgo(ctx context.Context) (*models.AlgoCommandResult, error)
	AlgoStatus(ctx context.Context) (*models.AlgoStatus, error)
}

// Controller keeps the strategy status synchronized and issues
// start/stop commands. Toggle decisions use the last confirmed status,
// never an optimistic local flag.
type Controller struct {
	engine Engine
	poller *poll.Poller[*models.AlgoStatus]
	logger zerolog.Logger

	mu       sync.Mutex
	toggling bool
}

// NewController creates a controller polling status on the given cadence.
func NewController(engine Engine, cfg poll.Config, logger zerolog.Logger) *Controller {
	c := &Controller{
		engine: engine,
		logger: logger,
	}
	c.poller = poll.NewPoller(
		func(ctx context.Context, _ poll.Subscription) (*models.AlgoStatus, error) {
			return engine.AlgoStatus(ctx)
		},
		cfg,
		logger,
	)
	return c
}

// OnUpdate registers a callback fired with every applied status snapshot.
// Must be set before Start.
func (c *Controller) OnUpdate(fn func(poll.Snapshot[*models.AlgoStatus])) {
	c.poller.OnUpdate(fn)
}

// Start begins status polling.
func (c *Controller) Start(ctx context.Context) {
	c.poller.Start(ctx, poll.NewSubscription("algo", nil))
}

// Stop halts status polling. It does not stop the strategy itself.
func (c *Controller) Stop() {
	c.poller.Stop()
}

// Status returns the latest status snapshot.
func (c *Controller) Status() poll.Snapshot[*models.AlgoStatus] {
	return c.poller.Snapshot()
}

// Toggle flips the strategy based on the last confirmed status: a running
// strategy is stopped, anything else is started. The acknowledgment is
// discarded and a fresh status poll is issued immediately, so the panel
// only ever shows backend-confirmed state. Concurrent toggles coalesce
// into one.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	if c.toggling {
		c.mu.Unlock()
		return nil
	}
	c.toggling = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.toggling = false
		c.mu.Unlock()
	}()

	snap := c.poller.Snapshot()
	running := snap.HasData && snap.Data != nil && snap.Data.Running

	command := "start"
	var result *models.AlgoCommandResult
	var err error
	if running {
		command = "stop"
		result, err = c.engine.StopAlgo(ctx)
	} else {
		result, err = c.engine.StartAlgo(ctx)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("command", command).Msg("Algo command failed")
		return err
	}
	logging.LogAlgoEvent(c.logger, command, result.Symbol, !running)

	// Confirm rather than assume: the ack is advisory.
	c.poller.RefreshNow()
	return nil
}
