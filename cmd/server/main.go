package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/robofield/internal/config"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlaid on the defaults")
	seed := flag.Uint64("seed", 0, "simulation seed (overrides config)")
	maxTicks := flag.Uint64("max-ticks", 0, "stop after this many ticks (overrides config)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Simulation.Seed = *seed
		case "max-ticks":
			cfg.Simulation.MaxTicks = *maxTicks
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error in flags:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building simulator:", err)
		os.Exit(1)
	}
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	if err := a.Run(ctx); err != nil {
		logger.Error("Simulator failed", log.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
