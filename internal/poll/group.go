package poll

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GroupResult maps member names to their fetched payloads.
type GroupResult map[string]interface{}

// Get returns a member payload cast to T. ok is false when the member is
// absent or holds a different type.
func Get[T any](r GroupResult, name string) (T, bool) {
	var zero T
	raw, present := r[name]
	if !present {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Untyped adapts a typed fetch for use as a group member.
func Untyped[T any](fetch FetchFunc[T]) FetchFunc[interface{}] {
	return func(ctx context.Context, sub Subscription) (interface{}, error) {
		return fetch(ctx, sub)
	}
}

// Composite combines named fetches into a single fetch that issues all
// members concurrently and succeeds only when every member succeeds.
// A single failure cancels the remaining members and surfaces as one
// error for the whole group, so a combined view repaints all-or-nothing.
func Composite(members map[string]FetchFunc[interface{}]) FetchFunc[GroupResult] {
	return func(ctx context.Context, sub Subscription) (GroupResult, error) {
		g, gctx := errgroup.WithContext(ctx)

		var mu sync.Mutex
		result := make(GroupResult, len(members))

		for name, fetch := range members {
			name, fetch := name, fetch
			g.Go(func() error {
				data, err := fetch(gctx, sub)
				if err != nil {
					return err
				}
				mu.Lock()
				result[name] = data
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return result, nil
	}
}
