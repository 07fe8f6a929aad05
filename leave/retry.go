package leave

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds how often a transaction that lost a concurrency race
// is re-run.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is used when a service is built with a zero policy.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

// delay returns a full-jitter exponential delay in [0, base * 2^attempt).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt > 16 {
		attempt = 16
	}
	ceiling := int64(p.BaseDelay) << attempt
	n, err := rand.Int(rand.Reader, big.NewInt(ceiling))
	if err != nil {
		return time.Duration(ceiling / 2)
	}
	return time.Duration(n.Int64())
}

// run executes fn until it succeeds, fails with a non-retryable error, or
// the attempts are exhausted.
func (p RetryPolicy) run(ctx context.Context, logger *zap.Logger, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.delay(attempt)
		logger.Warn("retrying after concurrent modification",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context done: %w", ctx.Err())
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempts, err)
}
