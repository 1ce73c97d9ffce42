// Package ratelimit spaces out calls to upstream LLM APIs.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/folio/internal/ai"
	"github.com/amishk599/folio/internal/model"
)

var _ ai.LLMProvider = (*Provider)(nil)

// MinDelayLimiter enforces a minimum delay between calls sharing the same key.
type MinDelayLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: upstream name
	minDelay time.Duration
}

// NewMinDelayLimiter creates a limiter that enforces minDelay between
// consecutive calls with the same key.
func NewMinDelayLimiter(minDelay time.Duration) *MinDelayLimiter {
	return &MinDelayLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last call for key.
// The slot is reserved before sleeping so concurrent callers queue up behind it.
func (r *MinDelayLimiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	now := time.Now()
	next := now
	if last, ok := r.lastCall[key]; ok {
		if earliest := last.Add(r.minDelay); earliest.After(now) {
			next = earliest
		}
	}
	r.lastCall[key] = next
	r.mu.Unlock()

	remaining := next.Sub(now)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Provider waits on a shared limiter before delegating to the wrapped provider.
type Provider struct {
	inner   ai.LLMProvider
	limiter *MinDelayLimiter
	key     string
}

// NewProvider wraps an LLMProvider with upstream rate limiting.
// Providers hitting the same upstream should share one limiter and key.
func NewProvider(inner ai.LLMProvider, limiter *MinDelayLimiter, key string) *Provider {
	return &Provider{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Complete waits for the limiter, then delegates.
func (p *Provider) Complete(ctx context.Context, messages []model.Message) (string, error) {
	if err := p.limiter.Wait(ctx, p.key); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, messages)
}
