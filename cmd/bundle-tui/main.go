package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
	"github.com/eugenenazirov/bundle-optimizer/internal/config"
	"github.com/eugenenazirov/bundle-optimizer/internal/logging"
	"github.com/eugenenazirov/bundle-optimizer/internal/tui"
)

func main() {
	app := kingpin.New("bundle-tui", "Terminal workspace for picking the most profitable product bundle")
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	capacity := app.Flag("capacity", "Initial budget").Default("0").Int()
	memoryMode := app.Flag("memory-mode", "Solver table strategy").Enum("", "auto", "full", "rolling")
	logLevel := app.Flag("log-level", "Minimum log level (debug, info, warn, error)").String()
	logFile := app.Flag("log-file", "File receiving JSON logs").Default(filepath.Join(os.TempDir(), "bundle-tui.log")).String()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(&config.CLIOverrides{
		ConfigFile:      *configFile,
		DefaultCapacity: capacity,
		MemoryMode:      memoryMode,
		LogLevel:        logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFile(cfg.LogLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store := catalog.NewMemoryCatalog()
	if err := store.SetCapacity(cfg.DefaultCapacity); err != nil {
		logger.Fatal("invalid default capacity", zap.Error(err))
	}
	planner := bundle.NewPlanner(logger,
		bundle.WithSolverOptions(cfg.SolverOptions()),
		bundle.WithLimits(bundle.Limits{MaxCapacity: cfg.MaxCapacity, MaxItems: cfg.MaxItems}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, store, planner, tui.WithLogger(logger)); err != nil {
		logger.Error("terminal UI exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "bundle-tui: %v\n", err)
		os.Exit(1)
	}
}
