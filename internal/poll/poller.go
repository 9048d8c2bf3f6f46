// Package poll provides the polling scheduler that keeps view snapshots
// consistent with their latest subscription.
//
// Every fetch task carries the generation number current at issue time.
// Replacing a subscription (or stopping the poller) bumps the generation,
// so results from superseded tasks are discarded on arrival instead of
// overwriting newer state. Failed fetches keep the last good payload.
package poll

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/logging"
)

// Subscription identifies what a view wants synchronized: a resource kind
// plus its parameter set. The parameter set is immutable once issued; a
// parameter change creates a new Subscription.
type Subscription struct {
	kind   string
	params map[string]string
}

// NewSubscription creates a subscription, copying the parameter map so
// later mutation by the caller cannot leak into an issued subscription.
func NewSubscription(kind string, params map[string]string) Subscription {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return Subscription{kind: kind, params: copied}
}

// Kind returns the resource kind being watched.
func (s Subscription) Kind() string {
	return s.kind
}

// Param returns one parameter value, or "" when absent.
func (s Subscription) Param(key string) string {
	return s.params[key]
}

// Equal reports whether two subscriptions watch the same resource with
// the same parameters.
func (s Subscription) Equal(other Subscription) bool {
	if s.kind != other.kind || len(s.params) != len(other.params) {
		return false
	}
	for k, v := range s.params {
		if other.params[k] != v {
			return false
		}
	}
	return true
}

// String renders the subscription for logs, with parameters in stable order.
func (s Subscription) String() string {
	if len(s.params) == 0 {
		return s.kind
	}
	keys := make([]string, 0, len(s.params))
	for k := range s.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(s.kind)
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.params[k])
	}
	b.WriteByte(')')
	return b.String()
}

// FetchFunc performs one remote read for a subscription.
type FetchFunc[T any] func(ctx context.Context, sub Subscription) (T, error)

// Snapshot is the view-facing state of one polled resource. On fetch
// failure Err is set but Data keeps the last successful payload, so a
// transient failure never blanks a working view.
type Snapshot[T any] struct {
	Data       T
	HasData    bool
	Err        error
	Generation uint64
	UpdatedAt  time.Time
}

// Config holds poller configuration.
type Config struct {
	// Interval is the cadence between fetch tasks.
	Interval time.Duration
	// Timeout bounds each individual fetch so a hung request cannot
	// block future ticks from firing.
	Timeout time.Duration
}

// DefaultConfig returns the default poller configuration.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Poller drives one fetch resource on a fixed cadence. At most one polling
// loop is live per Poller; Start on a running poller replaces the previous
// loop, and Stop is idempotent.
type Poller[T any] struct {
	fetch    FetchFunc[T]
	config   Config
	logger   zerolog.Logger
	onUpdate func(Snapshot[T])

	mu         sync.Mutex
	sub        Subscription
	generation uint64
	snapshot   Snapshot[T]
	runCtx     context.Context
	cancel     context.CancelFunc
	running    bool
}

// NewPoller creates a poller for one fetch resource.
func NewPoller[T any](fetch FetchFunc[T], config Config, logger zerolog.Logger) *Poller[T] {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Poller[T]{
		fetch:  fetch,
		config: config,
		logger: logger,
	}
}

// OnUpdate registers a callback invoked with a snapshot copy after every
// applied result. Must be set before Start; the callback runs outside the
// poller's lock.
func (p *Poller[T]) OnUpdate(fn func(Snapshot[T])) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Start begins polling the given subscription: one immediate fetch task,
// then one per interval tick. If the poller is already running, the old
// loop is stopped first and its in-flight results are invalidated, so a
// subscription replacement can never apply stale data.
func (p *Poller[T]) Start(ctx context.Context, sub Subscription) {
	p.mu.Lock()
	if p.running {
		p.stopLocked()
	}

	p.sub = sub
	p.running = true
	p.snapshot = Snapshot[T]{Generation: p.generation}
	gen := p.generation

	runCtx, cancel := context.WithCancel(ctx)
	p.runCtx = runCtx
	p.cancel = cancel
	p.mu.Unlock()

	go p.loop(runCtx, gen, sub)
}

// Stop cancels the polling loop and bumps the generation so any task still
// in flight is discarded when it resolves. Safe to call repeatedly.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller[T]) stopLocked() {
	if !p.running {
		return
	}
	p.cancel()
	p.cancel = nil
	p.runCtx = nil
	p.running = false
	p.generation++
}

// RefreshNow issues an out-of-band fetch task at the current generation
// without waiting for the next tick. No-op when stopped.
func (p *Poller[T]) RefreshNow() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	ctx, gen, sub := p.runCtx, p.generation, p.sub
	p.mu.Unlock()

	go p.runFetch(ctx, gen, sub)
}

// Snapshot returns a copy of the current snapshot.
func (p *Poller[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Running reports whether a polling loop is live.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Subscription returns the subscription currently being polled.
func (p *Poller[T]) Subscription() Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub
}

func (p *Poller[T]) loop(ctx context.Context, gen uint64, sub Subscription) {
	p.runFetch(ctx, gen, sub)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Each tick runs its own task; a stalled request only
			// costs its own timeout, never a missed tick.
			go p.runFetch(ctx, gen, sub)
		}
	}
}

func (p *Poller[T]) runFetch(ctx context.Context, gen uint64, sub Subscription) {
	if ctx == nil || ctx.Err() != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	data, err := p.fetch(fetchCtx, sub)
	logging.LogPollCycle(p.logger, sub.Kind(), gen, time.Since(start), err)

	p.mu.Lock()
	if gen != p.generation {
		current := p.generation
		p.mu.Unlock()
		logging.LogStaleDiscard(p.logger, sub.Kind(), gen, current)
		return
	}

	if err != nil {
		p.snapshot.Err = err
	} else {
		p.snapshot.Data = data
		p.snapshot.HasData = true
		p.snapshot.Err = nil
	}
	p.snapshot.Generation = gen
	p.snapshot.UpdatedAt = time.Now()

	snap := p.snapshot
	onUpdate := p.onUpdate
	p.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snap)
	}
}
