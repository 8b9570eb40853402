// Package embedding provides text embedding via ONNX, caching, and a
// deterministic mock for tests.
package embedding

import (
	"context"
	"time"
)

// Embedder produces vector embeddings for text. All embeddings compared
// in one ranking call must share the same dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// TimeoutEmbedder wraps an Embedder with a bounded per-call timeout so a
// slow provider degrades scoring quality instead of hanging the request.
type TimeoutEmbedder struct {
	inner   Embedder
	timeout time.Duration
}

// NewTimeoutEmbedder wraps inner with the given per-call timeout.
// A non-positive timeout disables the bound.
func NewTimeoutEmbedder(inner Embedder, timeout time.Duration) *TimeoutEmbedder {
	return &TimeoutEmbedder{inner: inner, timeout: timeout}
}

// Embed calls the wrapped embedder with a deadline.
func (e *TimeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout <= 0 {
		return e.inner.Embed(ctx, text)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		emb []float32
		err error
	}
	ch := make(chan result, 1)
	go func() {
		emb, err := e.inner.Embed(ctx, text)
		ch <- result{emb, err}
	}()
	select {
	case r := <-ch:
		return r.emb, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EmbedBatch calls Embed for each text.
func (e *TimeoutEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (e *TimeoutEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the wrapped embedder.
func (e *TimeoutEmbedder) Close() error {
	return e.inner.Close()
}
