// Package retry decorates upstream calls with exponential backoff on
// transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/amishk599/folio/internal/ai"
	"github.com/amishk599/folio/internal/model"
)

var (
	_ ai.LLMProvider     = (*Provider)(nil)
	_ model.ResumeSource = (*Source)(nil)
)

// Policy holds the retry budget shared by the decorators in this package.
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
}

// Provider retries an LLM provider on transient errors.
type Provider struct {
	inner  ai.LLMProvider
	policy Policy
}

// NewProvider wraps an LLMProvider with retry logic.
func NewProvider(inner ai.LLMProvider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay, Logger: logger},
	}
}

// Complete attempts the completion, retrying on transient errors.
func (p *Provider) Complete(ctx context.Context, messages []model.Message) (string, error) {
	return do(ctx, p.policy, func(ctx context.Context) (string, error) {
		return p.inner.Complete(ctx, messages)
	})
}

// Source retries a resume source on transient errors.
type Source struct {
	inner  model.ResumeSource
	policy Policy
}

// NewSource wraps a ResumeSource with retry logic.
func NewSource(inner model.ResumeSource, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Source {
	return &Source{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay, Logger: logger},
	}
}

// FetchResume attempts the fetch, retrying on transient errors.
func (s *Source) FetchResume(ctx context.Context) (model.Resume, error) {
	return do(ctx, s.policy, s.inner.FetchResume)
}

func do[T any](ctx context.Context, p Policy, call func(context.Context) (T, error)) (T, error) {
	out, err := call(ctx)
	if err == nil {
		return out, nil
	}

	var zero T
	if !isRetryable(err) {
		return zero, err
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		p.Logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		out, err = call(ctx)
		if err == nil {
			return out, nil
		}

		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration on the error takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Disabled providers will never succeed.
	if errors.Is(err, ai.ErrDisabled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	// Network, DNS and decode errors.
	return true
}
