// Package resilience guards the backend connection with a circuit
// breaker. Repeated transport failures open the circuit so the pollers
// stop hammering a backend that is down; a cooldown later, a single
// probe request decides whether to close it again.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting requests.
var ErrCircuitOpen = errors.New("backend circuit open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes the breaker.
type Config struct {
	// FailureThreshold is how many consecutive failures open the circuit.
	FailureThreshold int
	// SuccessThreshold is how many half-open successes close it again.
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration
}

// DefaultConfig matches the dashboard poll cadence: five failed cycles
// open the circuit, one clean probe cycle starts closing it.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Cooldown:         30 * time.Second,
	}
}

// Breaker is a consecutive-failure circuit breaker. Classification
// errors from the backend do not count as failures; only the caller
// decides what trips it, via Record.
type Breaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	rejected  uint64
}

func NewBreaker(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	return &Breaker{cfg: cfg}
}

// Allow reports whether a request may proceed. In the open state it
// returns ErrCircuitOpen until the cooldown has elapsed, then admits a
// probe by moving to half-open.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cfg.Cooldown {
			b.rejected++
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.successes = 0
	}
	return nil
}

// Record feeds the outcome of an admitted request back into the
// breaker. failed should be true only for transport-level problems,
// not for requests the backend answered.
func (b *Breaker) Record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if failed {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
		}
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.failures = 0
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Rejected returns how many requests were refused while open.
func (b *Breaker) Rejected() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rejected
}

// Reset force-closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
