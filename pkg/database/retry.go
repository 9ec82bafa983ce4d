package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	connectAttempts     = 3
	connectBaseWait     = time.Second
	retryJitterFraction = 0.25
)

// retryBackoff returns 1s, 2s, 4s... for attempt 0, 1, 2 with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := connectBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- retry jitter
	return base + jitter
}

// connectWithRetry calls connect up to connectAttempts times, sleeping with
// backoff between failures. It stops early when ctx is done.
func connectWithRetry[T any](ctx context.Context, name string, logger *slog.Logger, connect func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < connectAttempts; attempt++ {
		conn, err := connect(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if attempt == connectAttempts-1 {
			break
		}
		wait := retryBackoff(attempt)
		if logger != nil {
			logger.Warn(name+" connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", connectAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("connect to %s: %w", name, ctx.Err())
		case <-time.After(wait):
		}
	}

	return zero, fmt.Errorf("connect to %s after %d attempts: %w", name, connectAttempts, lastErr)
}
