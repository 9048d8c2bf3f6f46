package store

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// Property: for any payload, writing a snapshot and reading it back under
// the same key returns the identical payload, and a second write for the
// same key fully replaces the first.
func TestProperty_SnapshotRoundTrip(t *testing.T) {
	dbPath := "test_snapshots_property.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	kinds := []string{"account", "positions", "chart", "equity", "orders"}

	properties.Property("snapshot round-trip returns the written payload", prop.ForAll(
		func(kindIdx int, symbol string, payload []byte) bool {
			ctx := context.Background()
			key := SnapshotKey(kinds[kindIdx%len(kinds)], map[string]string{"symbol": symbol})

			if err := store.SaveSnapshot(ctx, key, payload); err != nil {
				t.Logf("SaveSnapshot: %v", err)
				return false
			}
			got, err := store.GetSnapshot(ctx, key)
			if err != nil {
				t.Logf("GetSnapshot: %v", err)
				return false
			}
			return got.Key == key && bytes.Equal(got.Payload, payload)
		},
		gen.IntRange(0, len(kinds)-1),
		gen.Identifier(),
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("second write for the same key wins", prop.ForAll(
		func(symbol string, first, second []byte) bool {
			ctx := context.Background()
			key := SnapshotKey("chart", map[string]string{"symbol": symbol, "period": "1mo"})

			if err := store.SaveSnapshot(ctx, key, first); err != nil {
				return false
			}
			if err := store.SaveSnapshot(ctx, key, second); err != nil {
				return false
			}
			got, err := store.GetSnapshot(ctx, key)
			if err != nil {
				return false
			}
			return bytes.Equal(got.Payload, second)
		},
		gen.Identifier(),
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

func TestSnapshotKeyStableOrder(t *testing.T) {
	a := SnapshotKey("chart", map[string]string{"symbol": "SPY", "period": "1mo", "interval": "1d"})
	b := SnapshotKey("chart", map[string]string{"interval": "1d", "period": "1mo", "symbol": "SPY"})
	if a != b {
		t.Fatalf("key depends on map order: %q vs %q", a, b)
	}
	want := "chart(interval=1d,period=1mo,symbol=SPY)"
	if a != want {
		t.Fatalf("key = %q, want %q", a, want)
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	dbPath := "test_snapshots_missing.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.GetSnapshot(context.Background(), "never-written")
	if !errors.Is(err, errors.ErrDataNotFound) {
		t.Fatalf("err = %v, want ErrDataNotFound", err)
	}
}

func TestJournalOutcomeAndQuery(t *testing.T) {
	dbPath := "test_journal.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC)

	limit := 412.50
	submissions := []struct {
		req     models.OrderRequest
		outcome models.OrderOutcome
	}{
		{
			req: models.OrderRequest{Symbol: "SPY", Side: models.OrderSideBuy, Quantity: 10, Type: models.OrderTypeMarket},
			outcome: models.OrderOutcome{Kind: models.OutcomeAccepted, SettledAt: base},
		},
		{
			req: models.OrderRequest{Symbol: "TSLA", Side: models.OrderSideBuy, Quantity: 500, Type: models.OrderTypeMarket},
			outcome: models.OrderOutcome{
				Kind: models.OutcomeBlockedCritical, Reason: "revenge_trading_detected",
				RiskScore: 88.5, SettledAt: base.Add(time.Minute),
			},
		},
		{
			req: models.OrderRequest{Symbol: "SPY", Side: models.OrderSideSell, Quantity: 5, Type: models.OrderTypeLimit, LimitPrice: &limit, OverrideRisk: true},
			outcome: models.OrderOutcome{Kind: models.OutcomeAccepted, SettledAt: base.Add(2 * time.Minute)},
		},
	}
	for _, s := range submissions {
		if err := store.JournalOutcome(ctx, s.req, s.outcome); err != nil {
			t.Fatalf("JournalOutcome: %v", err)
		}
	}

	all, err := store.GetJournal(ctx, JournalFilter{})
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("journal has %d entries, want 3", len(all))
	}
	if all[0].Symbol != "SPY" || all[0].Side != models.OrderSideSell {
		t.Fatalf("entries not newest-first: %+v", all[0])
	}
	if all[0].LimitPrice == nil || *all[0].LimitPrice != limit {
		t.Fatalf("limit price = %v, want %v", all[0].LimitPrice, limit)
	}
	if !all[0].OverrideRisk {
		t.Fatal("override flag lost in journal")
	}

	blocked, err := store.GetJournal(ctx, JournalFilter{Outcome: models.OutcomeBlockedCritical})
	if err != nil {
		t.Fatalf("GetJournal(blocked): %v", err)
	}
	if len(blocked) != 1 || blocked[0].Reason != "revenge_trading_detected" || blocked[0].RiskScore != 88.5 {
		t.Fatalf("blocked entries = %+v", blocked)
	}

	spy, err := store.GetJournal(ctx, JournalFilter{Symbol: "SPY", Limit: 1})
	if err != nil {
		t.Fatalf("GetJournal(SPY): %v", err)
	}
	if len(spy) != 1 || spy[0].Symbol != "SPY" {
		t.Fatalf("filtered entries = %+v", spy)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	dbPath := "test_settings.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SetSetting(ctx, "last_symbol", "SPY"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := store.SetSetting(ctx, "last_symbol", "QQQ"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	got, err := store.GetSetting(ctx, "last_symbol")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "QQQ" {
		t.Fatalf("value = %q, want QQQ", got)
	}

	if _, err := store.GetSetting(ctx, "missing"); !errors.Is(err, errors.ErrDataNotFound) {
		t.Fatalf("missing key err = %v, want ErrDataNotFound", err)
	}
}
