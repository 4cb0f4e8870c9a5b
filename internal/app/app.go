package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"postpulse/internal/config"
	"postpulse/internal/dataprocessing"
	apierrors "postpulse/internal/errors"
	"postpulse/internal/exporter"
	"postpulse/internal/files"
	"postpulse/internal/infrastructure"
	customMiddleware "postpulse/internal/middleware"
	"postpulse/internal/services"
	"postpulse/internal/session"
	handlers "postpulse/internal/transport/http"
	ws "postpulse/internal/websocket"
	"postpulse/pkg/contracts/domain"
	"postpulse/pkg/contracts/events"
)

const (
	VERSION = "1.2.0"
	AppName = "PostPulse - LinkedIn Post Analytics"
)

var (
	// BuildTime is set at compile time via -ldflags
	BuildTime = time.Now().UTC().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(BuildTime))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	WebSocketHub     *ws.Hub
	SessionStore     *session.Store
	AnalyticsService *services.AnalyticsService
	HealthService    *services.HealthService
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
	FrontendFS       fs.FS

	janitorCancel context.CancelFunc
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Observability is best effort: a broken exporter must not keep the
	// dashboard from serving uploads.
	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		logger.Warn("OpenTelemetry initialization failed, continuing without it",
			slog.String("error", err.Error()))
		otelProviders = nil
	}
	if err := ws.InitOTelMetrics(); err != nil {
		logger.Warn("WebSocket metrics initialization failed",
			slog.String("error", err.Error()))
	}

	// One shared instrument set: the HTTP middleware, the handlers and the
	// session store all record into the same metrics.
	var businessMetrics *infrastructure.BusinessMetrics
	if otelProviders != nil {
		businessMetrics, err = infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			logger.Warn("business metrics initialization failed, continuing without them",
				slog.String("error", err.Error()))
			businessMetrics = nil
		}
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       businessMetrics,
		FrontendFS:    frontendFS,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the hub, session store and analytics pipeline.
// The store's eviction callback feeds the hub so dashboards learn when
// their dataset aged out rather than discovering it on the next query.
func (app *Application) initializeServices() {
	cfg := app.Config

	hub := ws.NewHub(app.Logger, cfg.WebSocket)

	store := session.NewStore(app.Logger, session.Options{
		TTL:           cfg.Session.TTL,
		Limit:         cfg.Session.Limit,
		SweepInterval: cfg.Session.SweepInterval,
		OnEvict: func(sessionID string, dataset *domain.Dataset) {
			infrastructure.RecordSessionEviction(context.Background(), app.Metrics, "expired")
			hub.BroadcastDatasetExpired(events.DatasetExpiredData{
				SessionID: sessionID,
				DatasetID: dataset.ID,
				ExpiredAt: time.Now().UTC(),
			})
		},
	})

	if app.Metrics != nil {
		if err := infrastructure.RegisterActiveDatasetsGauge(app.OTelProviders.Meter, app.Metrics, store.Len); err != nil {
			app.Logger.Warn("active dataset gauge registration failed",
				slog.String("error", err.Error()))
		}
	}

	parser := dataprocessing.NewParser(app.Logger, dataprocessing.DefaultParseOptions())
	summarizer := dataprocessing.NewSummarizer(app.Logger)
	postExporter := exporter.NewPostExporter(app.Logger)
	archive := files.NewArchive(app.Paths, files.DefaultKeep, app.Logger)

	app.WebSocketHub = hub
	app.SessionStore = store
	app.AnalyticsService = services.NewAnalyticsService(store, parser, summarizer, postExporter, hub, archive, app.Logger)
	app.HealthService = services.NewHealthServiceWithBuildInfo(VERSION, BuildTime, BuildID, store, hub, app.Logger)
}

// setupRouter configures the HTTP router with middleware and routes
func (app *Application) setupRouter() {
	r := chi.NewRouter()

	// Base middleware for every route, including upgrades and static files
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	// WebSocket endpoint stays outside the API group: request timeouts and
	// rate limiting would kill long-lived connections. The upgrade itself is
	// still traced so dropped dashboards can be correlated with server state.
	r.With(customMiddleware.WebSocketTraceMiddleware(app.Logger)).Get("/ws", app.handleWebSocket)

	// Dashboard pages are served outside the group too, so a rate-limited
	// client can still load the UI and read the error it is shown.
	if app.FrontendFS != nil {
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Compress(5))
			r.Get("/", handlers.ServeDashboard(app.FrontendFS))
			r.Handle("/static/*", handlers.StaticAssets(app.FrontendFS))
		})
	}

	r.Group(func(r chi.Router) {
		if app.OTelProviders != nil && app.Metrics != nil {
			otelMW := customMiddleware.NewOTelMiddleware(app.OTelProviders, app.Metrics)
			r.Use(otelMW.Handler)
			r.Use(customMiddleware.BusinessMetricsMiddleware(app.Metrics))
		}

		r.Use(customMiddleware.StructuredLogger(app.Logger))
		r.Use(customMiddleware.Recoverer(app.Logger))

		secureHeaders := customMiddleware.DefaultSecureHeaders()
		secureHeaders.DevMode = app.isDevelopmentMode()
		r.Use(secureHeaders.Handler)

		if app.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(app.getCORSConfig()))
		}
		if app.Config.Security.RateLimit.Enabled {
			limiter := customMiddleware.NewRateLimiter(
				app.Config.Security.RateLimit.RPS,
				app.Config.Security.RateLimit.Burst,
				app.Logger)
			r.Use(limiter.Handler)
		}

		app.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint, outside the group so scrapers are never
	// rate limited and never counted in request metrics.
	if app.OTelProviders != nil && app.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", app.OTelProviders.PrometheusHTTP)
	}

	app.Router = r
}

// setupAPIRoutes mounts the versionless JSON API under /api
func (app *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(app.Logger, app.isDevelopmentMode())
	validation := customMiddleware.NewValidationMiddleware(app.Logger, errorHandler)

	healthHandler := handlers.NewHealthHandler(app.HealthService, app.Logger)
	metricsHandler := handlers.NewMetricsHandler(app.HealthService, app.WebSocketHub)
	analyticsHandler := handlers.NewAnalyticsHandler(
		app.AnalyticsService, app.Config.Upload, app.Config.Analytics, app.Logger, errorHandler)
	clientLogHandler := handlers.NewClientLogHandler(app.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		// Writes are JSON or multipart; rejecting anything else early keeps
		// handler-level decoding failures out of the logs.
		r.Use(customMiddleware.ContentTypeValidator("application/json", "multipart/form-data"))
		r.Use(validation.ValidateRequest)

		// Unknown API paths and wrong methods render problem details too.
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/health/stats", healthHandler.SystemStats)
		r.Get("/version", healthHandler.Version)

		r.Post("/client-logs", clientLogHandler.Handle)

		r.Mount("/metrics", metricsHandler.Routes())
		r.Mount("/analytics", analyticsHandler.Routes())
	})
}

// getCORSConfig builds the CORS policy. The session header must be both
// accepted and exposed: the dashboard mints a session on first upload by
// reading it back from the response.
func (app *Application) getCORSConfig() customMiddleware.CORSConfig {
	allowedOrigins := app.Config.Security.AllowedOrigins
	if app.isDevelopmentMode() {
		allowedOrigins = append(allowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			fmt.Sprintf("http://localhost:%d", app.Config.Server.Port),
		)
	}

	return customMiddleware.CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-Request-ID",
			config.SessionIDHeader,
		},
		ExposedHeaders: []string{
			"X-Request-ID", config.SessionIDHeader, "Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           app.Logger,
	}
}

// isDevelopmentMode reports whether the app runs with relaxed origins and
// verbose error payloads
func (app *Application) isDevelopmentMode() bool {
	if app.Config.Logging.Development {
		return true
	}
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return env == "development" || env == "dev"
}

// createServer creates the HTTP server from the server configuration
func (app *Application) createServer() {
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    app.Config.Server.ReadTimeout,
		WriteTimeout:   app.Config.Server.WriteTimeout,
		IdleTimeout:    app.Config.Server.IdleTimeout,
		MaxHeaderBytes: app.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener and starts serving. The bind happens
// synchronously so a port conflict fails Start instead of surfacing later
// as a log line from a goroutine.
func (app *Application) Start(ctx context.Context) error {
	app.WebSocketHub.Start()

	janitorCtx, cancel := context.WithCancel(context.Background())
	app.janitorCancel = cancel
	go app.SessionStore.Run(janitorCtx)

	listener, err := net.Listen("tcp", app.Server.Addr)
	if err != nil {
		cancel()
		app.WebSocketHub.Stop()
		return fmt.Errorf("failed to listen on %s: %w", app.Server.Addr, err)
	}

	app.Logger.InfoContext(ctx, "HTTP server listening",
		slog.String("addr", app.Server.Addr),
		slog.String("url", app.localURL()))

	go func() {
		if err := app.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("HTTP server failed",
				slog.String("error", err.Error()))
		}
	}()

	if app.Config.Server.OpenBrowser {
		go app.openBrowserWhenReady(ctx)
	}

	return nil
}

// Stop gracefully shuts down the server and all background workers
func (app *Application) Stop(ctx context.Context) error {
	app.Logger.InfoContext(ctx, "Application shutting down")

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Logger.ErrorContext(ctx, "HTTP server shutdown failed",
			slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown: %w", err)
	}

	if app.janitorCancel != nil {
		app.janitorCancel()
	}
	app.WebSocketHub.Stop()

	if app.OTelProviders != nil {
		if err := app.OTelProviders.Shutdown(ctx); err != nil {
			app.Logger.WarnContext(ctx, "OpenTelemetry shutdown failed",
				slog.String("error", err.Error()))
		}
	}

	app.Logger.InfoContext(ctx, "Application stopped")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// Run starts the application and blocks until an interrupt or termination
// signal arrives, then shuts down within the configured timeout.
func (app *Application) Run() error {
	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	app.Logger.Info("Shutdown signal received",
		slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(shutdownCtx)
}

// handleWebSocket upgrades the connection and hands it to the hub
func (app *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  app.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: app.Config.WebSocket.WriteBufferSize,
		CheckOrigin:     app.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		app.WebSocketHub.RecordConnectionError()
		app.Logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	ws.ServeWS(app.WebSocketHub, conn, customMiddleware.GetRequestID(r.Context()), app.Logger)
}

// checkWebSocketOrigin applies the same origin policy as CORS. Requests
// without an Origin header (curl, native clients) are allowed through.
func (app *Application) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range app.Config.Security.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return app.isDevelopmentMode()
}

func (app *Application) localURL() string {
	return fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)
}

// openBrowserWhenReady waits for the health endpoint to come up and then
// opens the dashboard. Desktop users double-click the binary; making them
// type a URL defeats the point.
func (app *Application) openBrowserWhenReady(ctx context.Context) {
	if !app.waitForHealthy(ctx, 20, 250*time.Millisecond) {
		app.Logger.Warn("health check never passed, not opening browser",
			slog.String("url", app.localURL()))
		return
	}
	app.openBrowser(app.localURL())
}

// waitForHealthy polls /api/health until it answers 200 or attempts run out
func (app *Application) waitForHealthy(ctx context.Context, attempts int, interval time.Duration) bool {
	healthURL := app.localURL() + "/api/health"
	client := &http.Client{Timeout: 2 * time.Second}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}

		resp, err := client.Get(healthURL)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
	}
	return false
}

type browserMethod struct {
	name string
	open func(url string) error
}

// browserOpenMethods returns launcher commands to try in order. Linux
// desktops vary, so several fallbacks are attempted before giving up.
func browserOpenMethods() []browserMethod {
	command := func(name string, args ...string) func(string) error {
		return func(url string) error {
			return exec.Command(name, append(args, url)...).Start()
		}
	}

	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{"rundll32", command("rundll32", "url.dll,FileProtocolHandler")},
			{"cmd", command("cmd", "/c", "start", "")},
		}
	case "darwin":
		return []browserMethod{
			{"open", command("open")},
		}
	default:
		return []browserMethod{
			{"xdg-open", command("xdg-open")},
			{"sensible-browser", command("sensible-browser")},
			{"x-www-browser", command("x-www-browser")},
		}
	}
}

// openBrowser tries each platform launcher until one accepts the URL
func (app *Application) openBrowser(url string) {
	for _, method := range browserOpenMethods() {
		if err := method.open(url); err == nil {
			app.Logger.Info("Opened dashboard in browser",
				slog.String("url", url),
				slog.String("method", method.name))
			return
		}
	}
	app.Logger.Info("Could not open browser automatically, open the dashboard manually",
		slog.String("url", url))
}
