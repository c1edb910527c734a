package api

import (
	"context"
	"time"

	"github.com/matthieukhl/storefront/internal/config"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often an idempotent call is repeated.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// NewRetryPolicy converts the configured retry settings.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}
}

// Backoff returns the wait before the given retry (1 for the first retry):
// initial doubled per attempt, capped at MaxBackoff.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if p.InitialBackoff <= 0 {
		return 0
	}
	shift := retry - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 20 {
		shift = 20
	}
	backoff := p.InitialBackoff * time.Duration(1<<shift)
	if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}
	return backoff
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted or ctx is done. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !KindOf(lastErr).Retryable() || attempt == attempts || ctx.Err() != nil {
			break
		}

		wait := p.Backoff(attempt)
		logger.Info("retrying request",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}
