package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"ecobook/internal/cache"
	"ecobook/internal/config"
	"ecobook/internal/line"
)

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -"

func stubEvaluator(scores map[string]int) cache.Evaluator {
	return cache.EvaluatorFunc(func(_ context.Context, fen string, _ int) (int, bool, error) {
		key, err := line.KeyFromFEN(fen)
		if err != nil {
			return 0, false, err
		}
		return scores[key], true, nil
	})
}

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newApp(t *testing.T, cfg config.Config, ev cache.Evaluator) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, zerolog.Nop(), WithEvaluator(ev))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestRunEndToEnd(t *testing.T) {
	for _, store := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.Default()
			cfg.EvalStore = store
			cfg.Inputs = []string{writeInput(t, dir, "a.tsv", "eco\tname\tpgn\nC20\tKing's Pawn\t1. e4\n")}
			cfg.Output = filepath.Join(dir, "book.json")

			a := newApp(t, cfg, stubEvaluator(map[string]int{afterE4: 25}))
			if err := a.Run(context.Background()); err != nil {
				t.Fatalf("run: %v", err)
			}

			got, err := os.ReadFile(cfg.Output)
			if err != nil {
				t.Fatal(err)
			}
			want := `{
    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -": {
        "eco": "",
        "name": "Initial position",
        "moves": {
            "e2e4": 25
        }
    },
    "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -": {
        "eco": "C20",
        "name": "King's Pawn",
        "moves": {}
    }
}
`
			if string(got) != want {
				t.Fatalf("got\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestRunSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = []string{
		writeInput(t, dir, "a.tsv", "eco\tname\tpgn\nA00\tnonsense\t1. e5\nA00\tshort row\n"),
		writeInput(t, dir, "b.tsv", "eco\tname\tpgn\nA40\tQueen's Pawn\t1. d4\n"),
	}
	cfg.Output = filepath.Join(dir, "book.json.zst")

	a := newApp(t, cfg, stubEvaluator(map[string]int{}))
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Book().Len() != 2 {
		t.Fatalf("book has %d positions, want 2", a.Book().Len())
	}
	start, _ := a.Book().Entry(line.InitialKey)
	if _, ok := start.Moves.Get("d2d4"); !ok || start.Moves.Len() != 1 {
		t.Fatalf("initial moves = %v", start.Moves.List())
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = []string{filepath.Join(dir, "missing.tsv")}
	cfg.Output = filepath.Join(dir, "book.json")

	a := newApp(t, cfg, stubEvaluator(nil))
	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing input")
	}
	if _, err := os.Stat(cfg.Output); !os.IsNotExist(err) {
		t.Fatalf("output written despite failure: %v", err)
	}
}

func TestRunEvaluatorFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = []string{writeInput(t, dir, "a.tsv", "eco\tname\tpgn\nC20\tKing's Pawn\t1. e4\n")}
	cfg.Output = filepath.Join(dir, "book.json")

	ev := cache.EvaluatorFunc(func(context.Context, string, int) (int, bool, error) {
		return 0, false, os.ErrClosed
	})
	a := newApp(t, cfg, ev)
	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected evaluator error")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Depth = 0
	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected config error")
	}
}

func TestNewEngineStartFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Path = filepath.Join(t.TempDir(), "no-such-engine")
	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected engine start error")
	}
}
