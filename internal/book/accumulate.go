package book

import (
	"context"
	"fmt"

	"github.com/notnil/chess"

	"ecobook/internal/line"
)

// Scorer returns a white-relative score for a position, or fallback when
// none is available. *cache.Cache implements it.
type Scorer interface {
	Score(ctx context.Context, key, fen string, fallback int) (int, error)
}

// Accumulator folds expanded lines into a book.
type Accumulator struct {
	book   *Book
	scores Scorer
}

func NewAccumulator(b *Book, s Scorer) *Accumulator {
	return &Accumulator{book: b, scores: s}
}

func (a *Accumulator) Book() *Book {
	return a.book
}

// AddLine walks l ply by ply. Every position it reaches gets an entry, and
// every move is scored in the position it was played from as the change in
// evaluation it caused, signed so that a good move is positive for the side
// that made it. A move already scored from an earlier line keeps its score.
func (a *Accumulator) AddLine(ctx context.Context, label Label, l line.Line) error {
	prevKey := ""
	prevScore := 0
	for i, st := range l.Steps {
		key := line.Key(st.Position)
		a.book.observe(key, label, l.Plies)

		score, err := a.scores.Score(ctx, key, st.Position.String(), prevScore)
		if err != nil {
			return fmt.Errorf("ply %d: %w", i, err)
		}

		if st.Move != nil {
			delta := score - prevScore
			if st.Mover == chess.Black {
				delta = -delta
			}
			prev, ok := a.book.Entry(prevKey)
			if !ok {
				return fmt.Errorf("ply %d: no entry for %q", i, prevKey)
			}
			prev.Moves.Add(st.UCI, delta)
		}

		prevKey = key
		prevScore = score
	}
	return nil
}
