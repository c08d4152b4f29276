package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder wraps an Embedder with a token-bucket rate limit so
// concurrent pipelines do not overwhelm the embedding provider. A batch
// call reserves one token per text.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

var _ Embedder = (*RateLimitedEmbedder)(nil)

// NewRateLimitedEmbedder wraps inner with a limit of rps requests per
// second. If rps is zero or negative, inner is returned unwrapped.
func NewRateLimitedEmbedder(inner Embedder, rps float64) Embedder {
	if rps <= 0 {
		return inner
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// EmbedText waits for the rate limiter, then delegates.
func (e *RateLimitedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.EmbedText(ctx, text)
}

// EmbedTexts reserves one token per text, then delegates the whole batch.
func (e *RateLimitedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	// Wait per text rather than WaitN so batches larger than the burst
	// size do not fail outright.
	for range texts {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return e.inner.EmbedTexts(ctx, texts)
}
