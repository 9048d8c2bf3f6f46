// Package gate funnels every order submission through a single
// classification point.
//
// The gate cycles Idle -> Submitting -> Settled -> Idle. Each submission
// settles with exactly one outcome: accepted, blocked by the risk
// firewall, blocked by a strategy mismatch, or failed. Blocked outcomes
// retain the original request so the trader can resubmit it with the
// matching override flag after an explicit confirmation.
package gate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// State is the gate lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSettled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Submitter places orders with the backend.
type Submitter interface {
	SubmitOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
}

// Gate serializes order submissions and classifies their results. At most
// one submission is in flight, and a settled outcome must be acknowledged
// before the next submission is accepted.
type Gate struct {
	submitter Submitter
	logger    zerolog.Logger

	mu          sync.Mutex
	state       State
	outcome     *models.OrderOutcome
	lastRequest *models.OrderRequest

	// onAccepted fires after an accepted settle so open-order and
	// account views can refresh immediately instead of waiting a tick.
	onAccepted func(models.OrderOutcome)
}

// New creates an idle gate.
func New(submitter Submitter, logger zerolog.Logger) *Gate {
	return &Gate{
		submitter: submitter,
		logger:    logger,
	}
}

// OnAccepted registers a callback fired outside the gate's lock after
// every accepted submission.
func (g *Gate) OnAccepted(fn func(models.OrderOutcome)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onAccepted = fn
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Outcome returns a copy of the settled outcome, or nil before settle.
func (g *Gate) Outcome() *models.OrderOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outcome == nil {
		return nil
	}
	copied := *g.outcome
	return &copied
}

// LastRequest returns a copy of the most recently submitted request, or
// nil when nothing has been submitted since the last accepted settle.
func (g *Gate) LastRequest() *models.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastRequest == nil {
		return nil
	}
	copied := *g.lastRequest
	return &copied
}

// Submit validates and places one order, settling the gate with exactly
// one outcome. A request that fails client-side validation settles as
// failed without touching the backend. Submit refuses to run while a
// previous submission is in flight or unacknowledged.
func (g *Gate) Submit(ctx context.Context, req models.OrderRequest) (models.OrderOutcome, error) {
	g.mu.Lock()
	switch g.state {
	case StateSubmitting:
		g.mu.Unlock()
		return models.OrderOutcome{}, errors.ErrSubmitInFlight
	case StateSettled:
		g.mu.Unlock()
		return models.OrderOutcome{}, errors.ErrGateNotIdle
	}
	g.state = StateSubmitting
	g.outcome = nil
	stored := req
	g.lastRequest = &stored
	g.mu.Unlock()

	if err := req.Validate(); err != nil {
		outcome := models.OrderOutcome{
			Kind:      models.OutcomeFailed,
			Message:   err.Error(),
			SettledAt: time.Now(),
		}
		return g.settle(req, outcome), nil
	}

	order, err := g.submitter.SubmitOrder(ctx, req)
	return g.settle(req, g.classify(order, err)), nil
}

// Override resubmits the retained blocked request with the override flag
// matching the block class: override_risk for a firewall block,
// override_strategy for a strategy mismatch. Only valid while a blocked
// outcome is settled.
func (g *Gate) Override(ctx context.Context) (models.OrderOutcome, error) {
	g.mu.Lock()
	if g.state != StateSettled || g.outcome == nil || !g.outcome.Blocked() || g.lastRequest == nil {
		g.mu.Unlock()
		return models.OrderOutcome{}, errors.ErrNoBlockedRequest
	}

	req := *g.lastRequest
	switch g.outcome.Kind {
	case models.OutcomeBlockedCritical:
		req.OverrideRisk = true
	case models.OutcomeBlockedWarning:
		req.OverrideStrategy = true
	}

	// Reopen the gate for the resubmission; the override run produces
	// its own single outcome.
	g.state = StateIdle
	g.outcome = nil
	g.mu.Unlock()

	g.logger.Info().
		Str("symbol", req.Symbol).
		Bool("override_risk", req.OverrideRisk).
		Bool("override_strategy", req.OverrideStrategy).
		Msg("Resubmitting blocked order with override")

	return g.Submit(ctx, req)
}

// Acknowledge clears the settled outcome and returns the gate to Idle.
func (g *Gate) Acknowledge() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateSettled {
		return errors.ErrGateNotIdle
	}
	g.state = StateIdle
	g.outcome = nil
	return nil
}

func (g *Gate) settle(req models.OrderRequest, outcome models.OrderOutcome) models.OrderOutcome {
	g.mu.Lock()
	g.state = StateSettled
	stored := outcome
	g.outcome = &stored
	if outcome.Kind == models.OutcomeAccepted {
		g.lastRequest = nil
	}
	onAccepted := g.onAccepted
	g.mu.Unlock()

	g.logger.Info().
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Float64("qty", req.Quantity).
		Str("outcome", string(outcome.Kind)).
		Str("reason", outcome.Reason).
		Msg("Order submission settled")

	if outcome.Kind == models.OutcomeAccepted && onAccepted != nil {
		onAccepted(outcome)
	}
	return outcome
}

// classify maps a submission result to its outcome class. Block responses
// are recognized by status and backend code together; anything else that
// errors is a plain failure.
func (g *Gate) classify(order *models.Order, err error) models.OrderOutcome {
	now := time.Now()
	if err == nil {
		return models.OrderOutcome{
			Kind:      models.OutcomeAccepted,
			Order:     order,
			SettledAt: now,
		}
	}

	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 403 && apiErr.Code == errors.CodeRiskFirewallBlock:
			return models.OrderOutcome{
				Kind:      models.OutcomeBlockedCritical,
				Reason:    apiErr.Reason,
				RiskScore: apiErr.RiskScore,
				Message:   apiErr.Message,
				SettledAt: now,
			}
		case apiErr.Status == 400 && apiErr.Code == errors.CodeStrategyMismatch:
			return models.OrderOutcome{
				Kind:               models.OutcomeBlockedWarning,
				Reason:             apiErr.Reason,
				CompatibilityScore: apiErr.CompatibilityScore,
				Message:            apiErr.Message,
				SettledAt:          now,
			}
		}
	}
	return models.OrderOutcome{
		Kind:      models.OutcomeFailed,
		Message:   err.Error(),
		SettledAt: now,
	}
}
