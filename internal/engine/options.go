package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Options configure a session once, right after the UCI handshake.
type Options struct {
	Threads int
	HashMB  int
	// Init holds extra raw UCI commands, one per line.
	Init string
	// SearchTimeout bounds a single Evaluate call; zero means no bound.
	SearchTimeout time.Duration
}

// Open starts the engine at path and configures it. The returned engine is
// ready for Evaluate and must be closed by the caller.
func Open(ctx context.Context, path string, args []string, opts Options) (*UCIEngine, error) {
	e := NewUCIEngine(path, args)
	if err := e.Start(ctx); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("engine start: %w", err)
	}
	if err := e.Configure(ctx, opts); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("engine init: %w", err)
	}
	return e, nil
}

func (e *UCIEngine) Configure(ctx context.Context, opts Options) error {
	if opts.Threads > 0 {
		if err := e.SetOption("Threads", fmt.Sprint(opts.Threads)); err != nil {
			return err
		}
	}
	if opts.HashMB > 0 {
		if err := e.SetOption("Hash", fmt.Sprint(opts.HashMB)); err != nil {
			return err
		}
	}
	if err := applyInit(ctx, e, opts.Init); err != nil {
		return err
	}
	e.searchTimeout = opts.SearchTimeout
	return e.NewGame(ctx)
}

func (e *UCIEngine) SetOption(name, value string) error {
	return e.Send("setoption name " + name + " value " + value)
}

// Evaluate searches fen to depth and returns a white-relative centipawn
// score. ok is false when the engine produced no usable score.
func (e *UCIEngine) Evaluate(ctx context.Context, fen string, depth int) (score int, ok bool, err error) {
	a, err := e.Analyse(ctx, fen, depth, e.searchTimeout)
	if err != nil {
		return 0, false, err
	}
	if !a.HasScore {
		return 0, false, nil
	}
	return a.WhiteCentipawns(fen), true, nil
}

func applyInit(ctx context.Context, e *UCIEngine, init string) error {
	lines := strings.Split(init, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := e.Send(line); err != nil {
			return err
		}
	}
	return e.IsReady(ctx)
}

func engineDisplayName(path string, fallback string) string {
	base := filepath.Base(path)
	if base == "." || base == "/" || base == "" {
		return fallback
	}
	return base
}
