package algo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
	"alphaquant-console/internal/poll"
)

// fakeEngine serves a mutable status and counts the commands it received.
type fakeEngine struct {
	mu         sync.Mutex
	status     models.AlgoStatus
	statusErr  error
	commandErr error
	starts     int
	stops      int
	polls      int
}

func (f *fakeEngine) StartAlgo(ctx context.Context) (*models.AlgoCommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commandErr != nil {
		return nil, f.commandErr
	}
	f.starts++
	f.status.Running = true
	return &models.AlgoCommandResult{Status: "started", Symbol: f.status.Symbol}, nil
}

func (f *fakeEngine) StopAlgo(ctx context.Context) (*models.AlgoCommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commandErr != nil {
		return nil, f.commandErr
	}
	f.stops++
	f.status.Running = false
	return &models.AlgoCommandResult{Status: "stopped"}, nil
}

func (f *fakeEngine) AlgoStatus(ctx context.Context) (*models.AlgoStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	f.polls++
	copied := f.status
	copied.Logs = append([]models.AlgoLogEntry(nil), f.status.Logs...)
	return &copied, nil
}

func (f *fakeEngine) setLogs(logs []models.AlgoLogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Logs = logs
}

func testConfig() poll.Config {
	return poll.Config{Interval: time.Hour, Timeout: time.Second}
}

// waitController starts the controller and blocks until the first status
// snapshot lands.
func waitController(t *testing.T, c *Controller) chan poll.Snapshot[*models.AlgoStatus] {
	t.Helper()
	updates := make(chan poll.Snapshot[*models.AlgoStatus], 16)
	c.OnUpdate(func(s poll.Snapshot[*models.AlgoStatus]) { updates <- s })
	c.Start(context.Background())
	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial status snapshot")
	}
	return updates
}

func TestToggleStartsWhenStopped(t *testing.T) {
	engine := &fakeEngine{status: models.AlgoStatus{Symbol: "SPY"}}
	c := NewController(engine, testConfig(), zerolog.Nop())
	updates := waitController(t, c)
	defer c.Stop()

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	select {
	case snap := <-updates:
		if !snap.Data.Running {
			t.Fatal("status after toggle not running")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no confirming poll after toggle")
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.starts != 1 || engine.stops != 0 {
		t.Fatalf("starts=%d stops=%d, want 1/0", engine.starts, engine.stops)
	}
}

func TestToggleStopsWhenRunning(t *testing.T) {
	engine := &fakeEngine{status: models.AlgoStatus{Symbol: "SPY", Running: true}}
	c := NewController(engine, testConfig(), zerolog.Nop())
	updates := waitController(t, c)
	defer c.Stop()

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	select {
	case snap := <-updates:
		if snap.Data.Running {
			t.Fatal("status after toggle still running")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no confirming poll after toggle")
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.stops != 1 || engine.starts != 0 {
		t.Fatalf("starts=%d stops=%d, want 0/1", engine.starts, engine.stops)
	}
}

func TestToggleDecidesFromConfirmedStateNotAck(t *testing.T) {
	// Before any confirmed status, the controller must treat the strategy
	// as not running and issue a start.
	engine := &fakeEngine{status: models.AlgoStatus{Running: true}, statusErr: errors.ErrDataNotFound}
	c := NewController(engine, testConfig(), zerolog.Nop())
	c.Start(context.Background())
	defer c.Stop()

	// Give the failing initial poll time to settle into the snapshot.
	time.Sleep(50 * time.Millisecond)

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.starts != 1 {
		t.Fatalf("starts=%d, want 1: unconfirmed state must not be trusted", engine.starts)
	}
}

func TestToggleCommandFailure(t *testing.T) {
	engine := &fakeEngine{commandErr: errors.NewRequestError("POST", "http://localhost:8000/algo/start", context.DeadlineExceeded)}
	c := NewController(engine, testConfig(), zerolog.Nop())
	waitController(t, c)
	defer c.Stop()

	engine.mu.Lock()
	pollsBefore := engine.polls
	engine.mu.Unlock()

	if err := c.Toggle(context.Background()); err == nil {
		t.Fatal("Toggle returned nil for a failed command")
	}

	// A failed command must not trigger a confirming refresh.
	time.Sleep(50 * time.Millisecond)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.polls != pollsBefore {
		t.Fatalf("polls went %d -> %d after failed command", pollsBefore, engine.polls)
	}
}

func TestStatusLogsReplacedWholesale(t *testing.T) {
	engine := &fakeEngine{status: models.AlgoStatus{Symbol: "SPY", Running: true, Logs: []models.AlgoLogEntry{
		{Time: "10:00:00", Action: models.AlgoActionStarted},
	}}}
	c := NewController(engine, testConfig(), zerolog.Nop())
	updates := waitController(t, c)
	defer c.Stop()

	engine.setLogs([]models.AlgoLogEntry{
		{Time: "10:00:10", Action: models.AlgoActionSignalBuy, Price: 101.2, SMA: 100.8},
	})
	c.poller.RefreshNow()

	select {
	case snap := <-updates:
		logs := snap.Data.Logs
		if len(logs) != 1 || logs[0].Action != models.AlgoActionSignalBuy {
			t.Fatalf("logs = %+v, want wholesale replacement with the new entry", logs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no refreshed snapshot")
	}
}
