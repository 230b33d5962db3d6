// Package ratelimit throttles calls to an embedding service.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultBackoff is used when a provider rejects a request for rate
// reasons without saying how long to wait.
const DefaultBackoff = 30 * time.Second

// EmbeddingService wraps another embedding service with a token bucket.
// Each Embed or EmbedBatch call consumes one token.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap returns next throttled to rps requests per second with the given
// burst. A non-positive rps disables throttling and returns next unchanged.
func Wrap(next driven.EmbeddingService, rps float64, burst int) driven.EmbeddingService {
	if next == nil || rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Backoff pauses all calls for d. Zero means DefaultBackoff.
func (s *EmbeddingService) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAt = time.Now().Add(d)
}

func (s *EmbeddingService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

// Embed waits for a token, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.next.Close() }
