// Package cache memoises engine evaluations by canonical position for the
// lifetime of one run.
package cache

import (
	"context"
	"fmt"
)

// Evaluator scores a position. score is white-relative centipawns; ok is
// false when no usable score came back. A non-nil error means the evaluator
// itself failed.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (score int, ok bool, err error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, fen string, depth int) (int, bool, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, fen string, depth int) (int, bool, error) {
	return f(ctx, fen, depth)
}

// Entry is one remembered evaluation. Entries with Scored false record that
// the evaluator had nothing to say about the position.
type Entry struct {
	Key    string
	FEN    string
	Score  int
	Scored bool
	Depth  int
}

// Store holds entries for the cache.
type Store interface {
	Lookup(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, e Entry) error
}

// Stats counts how the cache answered.
type Stats struct {
	Calls     int
	Hits      int
	Fallbacks int
}

// Cache evaluates each canonical position at most once.
type Cache struct {
	eval  Evaluator
	store Store
	depth int
	stats Stats
}

func New(eval Evaluator, store Store, depth int) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{eval: eval, store: store, depth: depth}
}

// Score returns the white-relative score of the position with canonical key
// key and full FEN fen. When the evaluator has no score for the position,
// now or on an earlier call, fallback is returned.
func (c *Cache) Score(ctx context.Context, key, fen string, fallback int) (int, error) {
	e, found, err := c.store.Lookup(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("cache lookup: %w", err)
	}
	if found {
		c.stats.Hits++
		if !e.Scored {
			c.stats.Fallbacks++
			return fallback, nil
		}
		return e.Score, nil
	}

	c.stats.Calls++
	score, ok, err := c.eval.Evaluate(ctx, fen, c.depth)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", fen, err)
	}
	e = Entry{Key: key, FEN: fen, Score: score, Scored: ok, Depth: c.depth}
	if err := c.store.Save(ctx, e); err != nil {
		return 0, fmt.Errorf("cache save: %w", err)
	}
	if !ok {
		c.stats.Fallbacks++
		return fallback, nil
	}
	return score, nil
}

func (c *Cache) Stats() Stats {
	return c.stats
}
