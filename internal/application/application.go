package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/load-planner/internal/api"
	"github.com/eugenenazirov/load-planner/internal/catalog"
	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/metrics"
	"github.com/eugenenazirov/load-planner/internal/packer"
	"github.com/eugenenazirov/load-planner/internal/plan"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog *catalog.MemoryCatalog
	planner *plan.Service
	metrics *metrics.Recorder
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// NewCatalog builds the preset catalog described by the configuration.
func NewCatalog(cfg config.Config) (*catalog.MemoryCatalog, error) {
	store := catalog.NewMemoryCatalog(catalog.WithMaxGrossWeight(cfg.ContainerMaxGrossWeight))
	if len(cfg.Containers) > 0 {
		if err := store.SetContainers(cfg.Containers); err != nil {
			return nil, fmt.Errorf("failed to apply container presets: %w", err)
		}
	}
	if len(cfg.Trucks) > 0 {
		if err := store.SetTrucks(cfg.Trucks); err != nil {
			return nil, fmt.Errorf("failed to apply truck classes: %w", err)
		}
	}
	return store, nil
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewCatalog(cfg)
	if err != nil {
		return nil, err
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder, err = metrics.NewRecorder()
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	planner := plan.NewService(packer.New(), store,
		plan.WithLogger(logger),
		plan.WithMetrics(recorder),
	)
	handler := api.NewHandler(planner, store)

	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if recorder != nil {
		routerOpts = append(routerOpts, api.WithMetrics(recorder))
	}
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		catalog: store,
		planner: planner,
		metrics: recorder,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, apiRouter),
	}, nil
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

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
