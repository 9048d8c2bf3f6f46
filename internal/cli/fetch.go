package cli

import (
	"context"

	"alphaquant-console/internal/errors"
	"alphaquant-console/pkg/utils"
)

// fetchWithRetry runs a one-shot backend read, retrying transient
// failures with backoff. Classification errors and other terminal
// failures surface immediately. The interactive console never uses
// this; its pollers recover on the next tick instead.
func fetchWithRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	cfg := utils.DefaultRetryConfig()
	cfg.Retryable = errors.Transient
	return utils.RetryWithResult(ctx, cfg, func() (T, error) {
		return fn(ctx)
	})
}
