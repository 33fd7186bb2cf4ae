package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/box-packer/internal/api"
	"github.com/eugenenazirov/box-packer/internal/config"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	runs    *storage.RunStore
	engine  *packing.Engine
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetContainerTypes(cfg.ContainerTypes); err != nil {
		return nil, fmt.Errorf("failed to apply initial container types: %w", err)
	}

	if cfg.GridStep <= 0 {
		return nil, fmt.Errorf("grid step %v: %w", cfg.GridStep, packing.ErrInvalidGridStep)
	}
	engine := packing.NewEngine(packing.WithGridStep(cfg.GridStep))
	runs := storage.NewRunStore(cfg.RunHistory)

	handler := api.NewHandler(engine, store,
		api.WithLogger(logger),
		api.WithRunStore(runs),
		api.WithPackTimeout(cfg.PackTimeout),
		api.WithDefaultStrategy(cfg.DefaultStrategy),
		api.WithMaxItems(cfg.MaxItems),
		api.WithMaxGridCells(cfg.MaxGridCells),
		api.WithMaxConcurrentRuns(cfg.MaxConcurrentRuns),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, BuildRootHandler(apiRouter))

	logger.Info("application configured",
		zap.Int("container_types", len(cfg.ContainerTypes)),
		zap.String("default_strategy", cfg.DefaultStrategy.String()),
		zap.Float64("grid_step", engine.GridStep()),
		zap.Duration("pack_timeout", cfg.PackTimeout),
		zap.Int("max_items", cfg.MaxItems),
	)

	return &App{
		storage: store,
		runs:    runs,
		engine:  engine,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  server,
	}, nil
}

// BuildRootHandler mounts the API under /api/ and serves a JSON index at /.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(serviceIndex())
	}))
	return mux
}

type indexResponse struct {
	Service    string   `json:"service"`
	Strategies []string `json:"strategies"`
	Endpoints  []string `json:"endpoints"`
}

func serviceIndex() indexResponse {
	strategies := make([]string, 0, len(packing.Strategies))
	for _, s := range packing.Strategies {
		strategies = append(strategies, s.String())
	}
	return indexResponse{
		Service:    "box-packer",
		Strategies: strategies,
		Endpoints: []string{
			"GET /api/health",
			"GET /api/container-types",
			"PUT /api/container-types",
			"GET /api/sample",
			"POST /api/pack",
			"GET /api/runs/{id}",
			"GET /api/runs/{id}/report.pdf",
			"GET /api/runs/{id}/labels.pdf",
			"GET /api/runs/{id}/workbook.xlsx",
			"GET /api/runs/{id}/containers/{n}/preview.png",
		},
	}
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

// Handler returns the root HTTP handler, useful for in-process testing.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
