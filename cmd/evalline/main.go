package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ecobook/internal/config"
	"ecobook/internal/engine"
	"ecobook/internal/line"
)

// evalline prints the engine's white-relative score after every ply of one
// line, for checking what the book builder will see.
func main() {
	def := config.Default()
	enginePath := flag.String("engine", def.Engine.Path, "UCI engine binary")
	depth := flag.Int("depth", 20, "search depth per position")
	threads := flag.Int("threads", def.Engine.Threads, "engine Threads option")
	hash := flag.Int("hash", def.Engine.HashMB, "engine Hash option in MB")
	timeout := flag.Duration("timeout", 0, "stop a search after this long (0 = no limit)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	movetext := "1. g4 d5"
	if flag.NArg() > 0 {
		movetext = strings.Join(flag.Args(), " ")
	}
	l, err := line.Parse(movetext)
	if err != nil {
		log.Fatal().Err(err).Str("movetext", movetext).Msg("parse line")
	}

	ctx := context.Background()
	eng, err := engine.Open(ctx, *enginePath, nil, engine.Options{
		Threads:       *threads,
		HashMB:        *hash,
		SearchTimeout: *timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open engine")
	}
	defer eng.Close()

	for _, st := range l.Steps {
		fen := st.Position.String()
		score, ok, err := eng.Evaluate(ctx, fen, *depth)
		if err != nil {
			log.Error().Err(err).Str("fen", fen).Msg("evaluate")
			return
		}
		if st.Move != nil {
			fmt.Printf("move=%s\n", st.UCI)
		}
		if ok {
			fmt.Printf("fen=%s, eval=%d\n", fen, score)
		} else {
			fmt.Printf("fen=%s, eval=none\n", fen)
		}
	}
}
