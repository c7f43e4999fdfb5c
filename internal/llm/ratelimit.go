package llm

import (
	"context"
	"sync"
	"time"

	"vibe-stock-dashboard/internal/interfaces"
)

// RateLimiter is a token bucket shared by every call to one provider.
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillRate     time.Duration
	lastRefillTime time.Time
	mu             sync.Mutex
	now            func() time.Time
}

// NewRateLimiter allows burst calls at once and one more every refillRate.
func NewRateLimiter(burst int, refillRate time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		tokens:         burst,
		maxTokens:      burst,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
		now:            time.Now,
	}
}

// PerMinute spreads n requests evenly over a minute with a burst of n/4.
func PerMinute(n int) *RateLimiter {
	if n <= 0 {
		return nil
	}
	return NewRateLimiter(max(1, n/4), time.Minute/time.Duration(n))
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := rl.tryAcquire()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// tryAcquire returns how long until the next refill when the bucket is empty.
func (rl *RateLimiter) tryAcquire() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefillTime)
	if add := int(elapsed / rl.refillRate); add > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+add)
		rl.lastRefillTime = rl.lastRefillTime.Add(time.Duration(add) * rl.refillRate)
	}

	if rl.tokens > 0 {
		rl.tokens--
		return 0, true
	}
	return rl.refillRate - now.Sub(rl.lastRefillTime), false
}

type limitedCompleter struct {
	next    interfaces.Completer
	limiter *RateLimiter
}

// WithRateLimit returns next unchanged when limiter is nil.
func WithRateLimit(next interfaces.Completer, limiter *RateLimiter) interfaces.Completer {
	if limiter == nil {
		return next
	}
	return &limitedCompleter{next: next, limiter: limiter}
}

func (l *limitedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.next.Complete(ctx, prompt)
}
