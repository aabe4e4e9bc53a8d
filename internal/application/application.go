package application

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/bundle-optimizer/internal/api"
	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
	"github.com/eugenenazirov/bundle-optimizer/internal/config"
	"github.com/eugenenazirov/bundle-optimizer/web"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog catalog.Catalog
	planner *bundle.Planner
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := catalog.NewMemoryCatalog()
	if err := store.SetCapacity(cfg.DefaultCapacity); err != nil {
		return nil, fmt.Errorf("failed to apply default capacity: %w", err)
	}

	planner := bundle.NewPlanner(logger,
		bundle.WithSolverOptions(cfg.SolverOptions()),
		bundle.WithLimits(bundle.Limits{MaxCapacity: cfg.MaxCapacity, MaxItems: cfg.MaxItems}),
	)
	handler := api.NewHandler(store, planner)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		catalog: store,
		planner: planner,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler serves the embedded browser workspace and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	return buildRootHandler(web.Assets, apiHandler)
}

func buildRootHandler(assets fs.FS, apiHandler http.Handler) (http.Handler, error) {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("locate static assets: %w", err)
	}
	index, err := fs.ReadFile(assets, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("locate index page: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
