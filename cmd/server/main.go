package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bundle-optimizer/internal/application"
	"github.com/eugenenazirov/bundle-optimizer/internal/config"
	"github.com/eugenenazirov/bundle-optimizer/internal/logging"
	"github.com/eugenenazirov/bundle-optimizer/internal/telemetry"
)

const serviceName = "bundle-optimizer"

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New(serviceName, "Bundle Optimizer - picks the most profitable product bundle within a budget")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	defaultCapacity := kingpinApp.Flag("default-capacity", "Initial budget of the shared workspace").Default("0").Int()
	maxCapacity := kingpinApp.Flag("max-capacity", "Largest capacity accepted per run").Default("0").Int()
	memoryMode := kingpinApp.Flag("memory-mode", "Solver table strategy").Enum("", "auto", "full", "rolling")
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	logLevel := kingpinApp.Flag("log-level", "Minimum log level (debug, info, warn, error)").String()
	otlpEndpoint := kingpinApp.Flag("otlp-endpoint", "OTLP/HTTP endpoint for traces, e.g. http://localhost:4318").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile:      *configFile,
		Port:            port,
		DefaultCapacity: defaultCapacity,
		MaxCapacity:     maxCapacity,
		MemoryMode:      memoryMode,
		LogLevel:        logLevel,
		OTLPEndpoint:    otlpEndpoint,
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracing, err := telemetry.Setup(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger, shutdownTracing)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger, flush telemetry.ShutdownFunc) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if flush != nil {
		if err := flush(ctx); err != nil {
			logger.Warn("trace flush failed", zap.Error(err))
		}
	}
}
