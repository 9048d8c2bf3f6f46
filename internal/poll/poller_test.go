package poll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
)

func fastConfig() Config {
	return Config{Interval: time.Hour, Timeout: 5 * time.Second}
}

// collectUpdates registers a channel-backed update callback.
func collectUpdates[T any](p *Poller[T]) chan Snapshot[T] {
	updates := make(chan Snapshot[T], 64)
	p.OnUpdate(func(s Snapshot[T]) { updates <- s })
	return updates
}

func waitSnapshot[T any](t *testing.T, updates chan Snapshot[T]) Snapshot[T] {
	t.Helper()
	select {
	case s := <-updates:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot[T]{}
	}
}

func TestPollerAppliesFreshResult(t *testing.T) {
	p := NewPoller(func(ctx context.Context, sub Subscription) (string, error) {
		return "quote:" + sub.Param("symbol"), nil
	}, fastConfig(), zerolog.Nop())
	updates := collectUpdates(p)

	p.Start(context.Background(), NewSubscription("quote", map[string]string{"symbol": "SPY"}))
	defer p.Stop()

	snap := waitSnapshot(t, updates)
	if !snap.HasData || snap.Data != "quote:SPY" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Err != nil {
		t.Fatalf("unexpected err: %v", snap.Err)
	}
}

// A result that was fetched for a replaced subscription must be discarded
// even though it arrives after the replacement, and must never overwrite
// the replacement's data.
func TestPollerDiscardsStaleResultAfterReplacement(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	firstCall := true

	p := NewPoller(func(ctx context.Context, sub Subscription) (string, error) {
		mu.Lock()
		first := firstCall
		firstCall = false
		mu.Unlock()
		if first {
			// Simulate a slow in-flight request for the old subscription.
			<-release
		}
		return "chart:" + sub.Param("symbol"), nil
	}, fastConfig(), zerolog.Nop())
	updates := collectUpdates(p)

	p.Start(context.Background(), NewSubscription("chart", map[string]string{"symbol": "SPY"}))
	defer p.Stop()

	// Replace the subscription while the SPY fetch hangs.
	p.Start(context.Background(), NewSubscription("chart", map[string]string{"symbol": "QQQ"}))

	snap := waitSnapshot(t, updates)
	if snap.Data != "chart:QQQ" {
		t.Fatalf("first applied snapshot = %q, want chart:QQQ", snap.Data)
	}

	// Let the stale SPY result land; it must be dropped silently.
	close(release)
	time.Sleep(50 * time.Millisecond)

	final := p.Snapshot()
	if final.Data != "chart:QQQ" {
		t.Fatalf("stale result overwrote snapshot: %q", final.Data)
	}
	if !p.Subscription().Equal(NewSubscription("chart", map[string]string{"symbol": "QQQ"})) {
		t.Fatalf("subscription = %s", p.Subscription())
	}
}

// A failing fetch keeps the last good payload so a transient outage never
// blanks a working view.
func TestPollerKeepsLastGoodValueThroughFailures(t *testing.T) {
	var mu sync.Mutex
	fail := false

	p := NewPoller(func(ctx context.Context, sub Subscription) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return 0, errors.NewRequestError("GET", "http://localhost:8000/positions", context.DeadlineExceeded)
		}
		return 42, nil
	}, fastConfig(), zerolog.Nop())
	updates := collectUpdates(p)

	p.Start(context.Background(), NewSubscription("positions", nil))
	defer p.Stop()

	snap := waitSnapshot(t, updates)
	if snap.Data != 42 {
		t.Fatalf("initial data = %d", snap.Data)
	}

	mu.Lock()
	fail = true
	mu.Unlock()

	for i := 0; i < 3; i++ {
		p.RefreshNow()
		snap = waitSnapshot(t, updates)
		if snap.Err == nil {
			t.Fatal("failure not surfaced in snapshot")
		}
		if !snap.HasData || snap.Data != 42 {
			t.Fatalf("last good value lost after failure %d: %+v", i+1, snap)
		}
	}

	// Recovery clears the error and refreshes the data.
	mu.Lock()
	fail = false
	mu.Unlock()
	p.RefreshNow()
	snap = waitSnapshot(t, updates)
	if snap.Err != nil || snap.Data != 42 {
		t.Fatalf("snapshot after recovery = %+v", snap)
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := NewPoller(func(ctx context.Context, sub Subscription) (string, error) {
		return "ok", nil
	}, fastConfig(), zerolog.Nop())

	p.Start(context.Background(), NewSubscription("account", nil))
	p.Stop()
	p.Stop()
	p.Stop()

	if p.Running() {
		t.Fatal("poller still running after stop")
	}
}

func TestPollerRefreshNowAfterStopIsNoop(t *testing.T) {
	var calls int
	var mu sync.Mutex

	p := NewPoller(func(ctx context.Context, sub Subscription) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "ok", nil
	}, fastConfig(), zerolog.Nop())
	updates := collectUpdates(p)

	p.Start(context.Background(), NewSubscription("account", nil))
	waitSnapshot(t, updates)
	p.Stop()

	mu.Lock()
	before := calls
	mu.Unlock()

	p.RefreshNow()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != before {
		t.Fatalf("RefreshNow fetched after stop: %d -> %d", before, calls)
	}
}

func TestSubscriptionImmutability(t *testing.T) {
	params := map[string]string{"symbol": "SPY"}
	sub := NewSubscription("chart", params)

	params["symbol"] = "QQQ"
	if sub.Param("symbol") != "SPY" {
		t.Fatal("caller mutation leaked into subscription")
	}
}

func TestSubscriptionString(t *testing.T) {
	sub := NewSubscription("chart", map[string]string{"symbol": "SPY", "period": "1mo"})
	if got := sub.String(); got != "chart(period=1mo,symbol=SPY)" {
		t.Fatalf("String() = %q", got)
	}
	if got := NewSubscription("account", nil).String(); got != "account" {
		t.Fatalf("String() = %q", got)
	}
}

func TestCompositeAllOrNothing(t *testing.T) {
	fetch := Composite(map[string]FetchFunc[interface{}]{
		"account": func(ctx context.Context, sub Subscription) (interface{}, error) {
			return "account-data", nil
		},
		"positions": func(ctx context.Context, sub Subscription) (interface{}, error) {
			return nil, errors.NewRequestError("GET", "http://localhost:8000/positions", context.DeadlineExceeded)
		},
	})

	_, err := fetch(context.Background(), NewSubscription("dashboard", nil))
	if err == nil {
		t.Fatal("composite succeeded despite a failed member")
	}

	ok := Composite(map[string]FetchFunc[interface{}]{
		"account": func(ctx context.Context, sub Subscription) (interface{}, error) {
			return "account-data", nil
		},
		"equity": func(ctx context.Context, sub Subscription) (interface{}, error) {
			return 12, nil
		},
	})
	result, err := ok(context.Background(), NewSubscription("dashboard", nil))
	if err != nil {
		t.Fatalf("composite: %v", err)
	}
	account, present := Get[string](result, "account")
	if !present || account != "account-data" {
		t.Fatalf("account member = %q present=%v", account, present)
	}
	if _, present := Get[string](result, "equity"); present {
		t.Fatal("Get with wrong type reported present")
	}
}

// Property: across any interleaving of restarts, an applied snapshot's
// generation always equals the poller's current generation; results
// carrying an older generation are never observable.
func TestProperty_GenerationConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	symbols := []string{"SPY", "QQQ", "TSLA", "AAPL", "NVDA"}

	properties.Property("applied snapshots match the live subscription", prop.ForAll(
		func(restarts int) bool {
			p := NewPoller(func(ctx context.Context, sub Subscription) (string, error) {
				return sub.Param("symbol"), nil
			}, fastConfig(), zerolog.Nop())

			var mu sync.Mutex
			var applied []Snapshot[string]
			p.OnUpdate(func(s Snapshot[string]) {
				mu.Lock()
				applied = append(applied, s)
				mu.Unlock()
			})

			var last string
			for i := 0; i <= restarts; i++ {
				last = symbols[i%len(symbols)]
				p.Start(context.Background(), NewSubscription("quote", map[string]string{"symbol": last}))
			}

			// Wait for the final subscription's result to land.
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				snap := p.Snapshot()
				if snap.HasData && snap.Data == last {
					break
				}
				time.Sleep(time.Millisecond)
			}
			p.Stop()
			time.Sleep(10 * time.Millisecond)

			final := p.Snapshot()
			if final.HasData && final.Data != last {
				return false
			}

			// Every applied snapshot carried the generation that was
			// current when it was applied, so none may hold a symbol
			// from a later subscription than its generation allows.
			mu.Lock()
			defer mu.Unlock()
			for i := 1; i < len(applied); i++ {
				if applied[i].Generation < applied[i-1].Generation {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
