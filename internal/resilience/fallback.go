// Package resilience provides degradation helpers for operations that depend
// on public upstream APIs. A [FallbackChain] tries a sequence of sources in
// order and returns the first successful result, so tools can serve a static
// answer when a live catalog is unreachable.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every source in a [FallbackChain] fails.
var ErrAllFailed = errors.New("all sources failed")

// source pairs a fetch function with a name used in logs.
type source[T any] struct {
	name  string
	fetch func(context.Context) (T, error)
}

// FallbackChain wraps a primary and zero or more fallback sources producing
// the same result type. When the primary fails, the next source is tried in
// registration order.
//
// FallbackChain is safe for concurrent use once construction is complete.
type FallbackChain[T any] struct {
	sources []source[T]
}

// NewFallbackChain creates a [FallbackChain] with primary as the first
// source. Additional sources are registered via [FallbackChain.AddFallback].
func NewFallbackChain[T any](name string, primary func(context.Context) (T, error)) *FallbackChain[T] {
	return &FallbackChain[T]{
		sources: []source[T]{{name: name, fetch: primary}},
	}
}

// AddFallback appends a fallback source. Fallbacks are tried in the order
// they are added, after the primary.
func (fc *FallbackChain[T]) AddFallback(name string, fetch func(context.Context) (T, error)) {
	fc.sources = append(fc.sources, source[T]{name: name, fetch: fetch})
}

// Execute tries each source in order until one succeeds. Returns
// [ErrAllFailed] wrapped with the last error if every source fails, and the
// context error immediately when ctx is cancelled between sources.
func (fc *FallbackChain[T]) Execute(ctx context.Context) (T, error) {
	var (
		lastErr error
		zero    T
	)
	for _, s := range fc.sources {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := s.fetch(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		slog.Warn("source failed, trying next", "source", s.name, "error", err)
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
