package cli

import (
	"context"
	"encoding/json"
	"time"

	"alphaquant-console/internal/store"
)

// cacheResult stores the JSON rendering of a freshly fetched resource
// so --cached can serve it when the backend is unreachable.
func (app *App) cacheResult(ctx context.Context, kind string, params map[string]string, v interface{}) {
	if app.Store == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := store.SnapshotKey(kind, params)
	if err := app.Store.SaveSnapshot(ctx, key, payload); err != nil {
		app.Logger.Warn().Err(err).Str("key", key).Msg("Failed to cache snapshot")
	}
}

// readCached loads the last cached payload for a resource. The second
// return is the time it was fetched.
func readCached[T any](ctx context.Context, app *App, kind string, params map[string]string) (T, time.Time, bool) {
	var out T
	if app.Store == nil {
		return out, time.Time{}, false
	}
	snap, err := app.Store.GetSnapshot(ctx, store.SnapshotKey(kind, params))
	if err != nil {
		return out, time.Time{}, false
	}
	if err := json.Unmarshal(snap.Payload, &out); err != nil {
		return out, time.Time{}, false
	}
	return out, snap.FetchedAt, true
}
