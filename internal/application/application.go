package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envguard/internal/api"
	"github.com/eugenenazirov/envguard/internal/config"
	"github.com/eugenenazirov/envguard/internal/envguard"
	"github.com/eugenenazirov/envguard/internal/environ"
	"github.com/eugenenazirov/envguard/internal/manifest"
)

// App encapsulates the guarded environment and the HTTP server exposing it.
type App struct {
	env     *envguard.Container
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// Option configures New.
type Option func(*options)

type options struct {
	table environ.Table
	raw   envguard.Raw
}

// WithTable replaces the process environment as the global table.
func WithTable(table environ.Table) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithRaw supplies explicit raw values instead of reading environment files.
func WithRaw(raw envguard.Raw) Option {
	return func(o *options) {
		o.raw = raw
	}
}

// LoadEnvironment builds the container described by cfg.Manifest.
func LoadEnvironment(cfg config.Config, logger *zap.Logger, opts ...Option) (*envguard.Container, error) {
	o := options{table: environ.OS()}
	for _, opt := range opts {
		opt(&o)
	}

	env, err := manifest.Build(cfg.Manifest, envguard.Options{
		Path:     cfg.EnvFiles,
		Encoding: cfg.Encoding,
		Quiet:    cfg.Quiet,
		Table:    o.table,
		Logger:   logger,
	}, o.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build environment from %s: %w", cfg.Manifest, err)
	}

	logger.Debug("environment ready",
		zap.String("manifest", cfg.Manifest),
		zap.Int("variables", len(env.Keys())),
	)
	return env, nil
}

// New builds the environment and wires the read-only HTTP view over it.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	env, err := LoadEnvironment(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(env)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		env:     env,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler routes API requests and redirects the root path to the
// variable listing.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/env", http.StatusFound)
	}))
	return mux
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

// Environment returns the guarded environment served by the app.
func (a *App) Environment() *envguard.Container {
	return a.env
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
