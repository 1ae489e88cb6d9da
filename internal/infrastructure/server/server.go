package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/switcher/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/app"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
)

const (
	seedTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	appManager     *app.Manager
	sessionManager *session.Manager
	logger         *logging.Logger
	config         *config.Config
	metrics        *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, logger), nil
}

func newServer(cfg *config.Config, logger *logging.Logger) *Server {
	logger.Info("Initializing App Switcher Server",
		zap.String("port", cfg.Server.Port),
		zap.String("apps_dir", cfg.Registry.AppsDir),
		zap.Int("inline_budget", cfg.Switcher.InlineBudget),
	)

	// Initialize metrics first (needed by other components)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	appManager := app.NewManager().WithMetrics(metrics)
	seedApps(cfg, appManager, logger)

	sessionManager := session.NewManager(appManager, logger.Component("session")).
		WithBudget(cfg.Switcher.InlineBudget).
		WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(rl))
		} else {
			router.Use(middleware.RateLimit(rl))
		}
	}

	// Register routes
	handlers := apihttp.NewHandlers(appManager, sessionManager, logger.Component("api")).WithMetrics(metrics)
	handlers.Register(router)

	wsHandler := ws.NewHandler(sessionManager, logger.Component("ws")).WithMetrics(metrics)
	router.GET("/sessions/:id/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))

	logger.Info("Server initialized successfully", zap.Int("apps", appManager.Stats().InstalledApps))

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		appManager:     appManager,
		sessionManager: sessionManager,
		logger:         logger,
		config:         cfg,
		metrics:        metrics,
	}
}

// seedApps installs apps from disk, the remote registry or the default catalog
func seedApps(cfg *config.Config, apps *app.Manager, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	seeder := registry.NewSeeder(apps, cfg.Registry.AppsDir, logger.Component("registry"))
	loaded, err := seeder.SeedApps(ctx)
	if err != nil {
		logger.Warn("Failed to seed apps", zap.Error(err))
	}

	if cfg.Registry.URL != "" {
		remote := registry.NewRemote(registry.RemoteConfig{
			URL:     cfg.Registry.URL,
			Timeout: cfg.Registry.Timeout,
			Retries: cfg.Registry.Retries,
		}, logger.Component("registry"))
		n, err := remote.Sync(ctx, apps)
		if err != nil {
			logger.Warn("Failed to sync remote registry", zap.String("url", cfg.Registry.URL), zap.Error(err))
		}
		loaded += n
	}

	if loaded == 0 {
		if err := seeder.SeedDefaultApps(); err != nil {
			logger.Warn("Failed to seed default apps", zap.Error(err))
		}
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
	}

	// Shutdown skips hijacked connections; ending sessions closes their streams
	s.sessionManager.CloseAll()

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
