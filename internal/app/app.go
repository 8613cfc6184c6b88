package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"

	"ecobook/internal/book"
	"ecobook/internal/cache"
	"ecobook/internal/config"
	"ecobook/internal/db"
	"ecobook/internal/engine"
	"ecobook/internal/line"
	"ecobook/internal/tsv"
)

type App struct {
	cfg config.Config
	log zerolog.Logger

	eval   cache.Evaluator
	engine *engine.UCIEngine
	store  *db.Store
	cache  *cache.Cache
	acc    *book.Accumulator

	closeOnce sync.Once
}

type Option func(*App)

// WithEvaluator replaces the engine. No engine process is started.
func WithEvaluator(ev cache.Evaluator) Option {
	return func(a *App) {
		a.eval = ev
	}
}

// New prepares a run: it opens the eval store and starts the engine unless
// an evaluator was supplied.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &App{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(a)
	}

	var store cache.Store
	if cfg.EvalStore == config.StoreSQLite {
		s, err := db.Open(db.MemoryDSN)
		if err != nil {
			return nil, err
		}
		a.store = s
		store = cache.NewDBStore(s)
	}

	if a.eval == nil {
		started := time.Now()
		eng, err := engine.Open(ctx, cfg.Engine.Path, cfg.EngineArgs(), engine.Options{
			Threads:       cfg.Engine.Threads,
			HashMB:        cfg.Engine.HashMB,
			Init:          cfg.Engine.Init,
			SearchTimeout: cfg.SearchTimeout(),
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.engine = eng
		a.eval = eng
		log.Info().
			Str("engine", eng.Name()).
			Int("threads", cfg.Engine.Threads).
			Int("hash_mb", cfg.Engine.HashMB).
			Dur("startup", time.Since(started)).
			Msg("engine ready")
	}

	a.cache = cache.New(a.eval, store, cfg.Depth)
	a.acc = book.NewAccumulator(book.New(), a.cache)
	return a, nil
}

// Run builds the book from every input file in order and writes it out.
func (a *App) Run(ctx context.Context) error {
	started := time.Now()
	files := make([]tsv.File, 0, len(a.cfg.Inputs))
	total := 0
	for _, path := range a.cfg.Inputs {
		f, err := tsv.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		a.log.Info().
			Str("file", path).
			Str("size", bytesize.ByteSize(f.Size).String()).
			Int("rows", len(f.Rows)).
			Msg("importing file")
		for _, bad := range f.Bad {
			a.log.Warn().Str("file", path).Int("line", bad.LineNo).Str("text", bad.Text).Msg("skipping short row")
		}
		files = append(files, f)
		total += len(f.Rows)
	}

	done, skipped := 0, 0
	for _, f := range files {
		for _, row := range f.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			done++
			l, err := line.Parse(row.Movetext)
			if err != nil {
				skipped++
				a.log.Warn().
					Err(err).
					Str("file", f.Path).
					Int("line", row.LineNo).
					Str("movetext", row.Movetext).
					Msg("skipping line")
				continue
			}

			rowStarted := time.Now()
			label := book.Label{ECO: row.ECO, Name: row.Name}
			if err := a.acc.AddLine(ctx, label, l); err != nil {
				return fmt.Errorf("%s:%d: %w", f.Path, row.LineNo, err)
			}
			a.log.Info().
				Str("progress", fmt.Sprintf("[%d/%d]", done, total)).
				Str("eco", row.ECO).
				Str("name", row.Name).
				Str("movetext", row.Movetext).
				Dur("took", time.Since(rowStarted)).
				Dur("elapsed", time.Since(started)).
				Msg("line added")
		}
	}

	b := a.acc.Book()
	b.Finalize()
	n, err := book.WriteFile(a.cfg.Output, b)
	if err != nil {
		return err
	}

	var sum db.EvalSummary
	if a.store != nil {
		if sum, err = a.store.SummarizeEvals(ctx); err != nil {
			return fmt.Errorf("summarize evals: %w", err)
		}
	}

	stats := a.cache.Stats()
	ev := a.log.Info().
		Str("output", a.cfg.Output).
		Str("size", bytesize.ByteSize(n).String()).
		Int("positions", b.Len()).
		Int("skipped", skipped).
		Int("evaluations", stats.Calls).
		Int("cache_hits", stats.Hits).
		Int("fallbacks", stats.Fallbacks).
		Dur("elapsed", time.Since(started))
	if a.store != nil {
		ev = ev.Int("stored", sum.Total).Int("unscorable", sum.Unscorable)
	}
	ev.Msg("book written")
	return nil
}

func (a *App) Book() *book.Book {
	return a.acc.Book()
}

func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.engine != nil {
			if err := a.engine.Close(); err != nil {
				a.log.Warn().Err(err).Msg("engine close")
			}
		}
		if a.store != nil {
			_ = a.store.Close()
		}
	})
}
