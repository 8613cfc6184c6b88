package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEvalUpsertAndLookup(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	key := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"
	if _, err := s.EvalByKey(ctx, key); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing key: err = %v, want sql.ErrNoRows", err)
	}

	in := Eval{PositionKey: key, FEN: key + " 0 1", Score: 18, Scored: true, Depth: 20}
	if err := s.UpsertEval(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.EvalByKey(ctx, key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != in {
		t.Fatalf("got %+v, want %+v", got, in)
	}

	in.Score = -4
	in.Depth = 24
	if err := s.UpsertEval(ctx, in); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = s.EvalByKey(ctx, key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Score != -4 || got.Depth != 24 {
		t.Fatalf("upsert did not update: %+v", got)
	}

	n, err := s.CountEvals(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestSummarizeEvals(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	sum, err := s.SummarizeEvals(ctx)
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if sum != (EvalSummary{}) {
		t.Fatalf("empty summary = %+v", sum)
	}

	rows := []Eval{
		{PositionKey: "a", FEN: "a", Score: 1, Scored: true, Depth: 10},
		{PositionKey: "b", FEN: "b", Scored: false, Depth: 0},
		{PositionKey: "c", FEN: "c", Score: 999, Scored: true, Depth: 30},
	}
	for _, r := range rows {
		if err := s.UpsertEval(ctx, r); err != nil {
			t.Fatalf("upsert %s: %v", r.PositionKey, err)
		}
	}
	sum, err = s.SummarizeEvals(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := EvalSummary{Total: 3, Unscorable: 1, MaxDepth: 30}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}
}
