package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ecobook/internal/app"
	"ecobook/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	output := flag.String("output", "", "book file to write (.json or .json.zst)")
	enginePath := flag.String("engine", "", "UCI engine binary")
	depth := flag.Int("depth", 0, "search depth per position")
	threads := flag.Int("threads", 0, "engine Threads option")
	hash := flag.Int("hash", 0, "engine Hash option in MB")
	store := flag.String("eval-store", "", "eval cache store: memory or sqlite")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	cfg, err := cfg.WithEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("environment")
	}

	if flag.NArg() > 0 {
		cfg.Inputs = flag.Args()
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}
	if *threads > 0 {
		cfg.Engine.Threads = *threads
	}
	if *hash > 0 {
		cfg.Engine.HashMB = *hash
	}
	if *store != "" {
		cfg.EvalStore = *store
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("log level")
	}
	log = log.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("ecobook failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	log.Info().
		Strs("inputs", cfg.Inputs).
		Str("output", cfg.Output).
		Int("depth", cfg.Depth).
		Str("eval_store", cfg.EvalStore).
		Msg("building book")
	return application.Run(ctx)
}
