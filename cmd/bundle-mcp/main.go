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
	"github.com/eugenenazirov/bundle-optimizer/internal/config"
	"github.com/eugenenazirov/bundle-optimizer/internal/logging"
	"github.com/eugenenazirov/bundle-optimizer/internal/mcptool"
	"github.com/eugenenazirov/bundle-optimizer/internal/telemetry"
)

var version = "dev"

func main() {
	app := kingpin.New("bundle-mcp", "MCP stdio server exposing the knapsack_solve tool")
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	maxCapacity := app.Flag("max-capacity", "Largest capacity accepted per run").Default("0").Int()
	memoryMode := app.Flag("memory-mode", "Solver table strategy").Enum("", "auto", "full", "rolling")
	logLevel := app.Flag("log-level", "Minimum log level (debug, info, warn, error)").String()
	logFile := app.Flag("log-file", "File receiving JSON logs (stdout carries the protocol)").Default(filepath.Join(os.TempDir(), "bundle-mcp.log")).String()
	otlpEndpoint := app.Flag("otlp-endpoint", "OTLP/HTTP endpoint for traces").String()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(&config.CLIOverrides{
		ConfigFile:   *configFile,
		MaxCapacity:  maxCapacity,
		MemoryMode:   memoryMode,
		LogLevel:     logLevel,
		OTLPEndpoint: otlpEndpoint,
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "bundle-mcp", cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("trace flush failed", zap.Error(err))
		}
	}()

	planner := bundle.NewPlanner(logger,
		bundle.WithSolverOptions(cfg.SolverOptions()),
		bundle.WithLimits(bundle.Limits{MaxCapacity: cfg.MaxCapacity, MaxItems: cfg.MaxItems}),
	)

	logger.Info("mcp server starting", zap.String("version", version))
	if err := mcptool.ServeStdio(ctx, mcptool.NewServer(planner, logger, version)); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		os.Exit(1)
	}
}
