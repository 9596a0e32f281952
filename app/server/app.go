// Package server owns the process-wide resources: the database driver, the
// session cache, the stores and the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"social-todo/app/config"
	"social-todo/app/controllers"
	"social-todo/app/middleware"
	"social-todo/app/routes"
	"social-todo/app/services"
)

const tracerName = "social-todo"

// App is the application context shared by every request.
type App struct {
	config   *config.Config
	logger   *log.Logger
	driver   neo4j.DriverWithContext
	redis    *redis.Client
	tracing  *sdktrace.TracerProvider
	users    services.UserStore
	tasks    services.TaskStore
	sessions services.SessionStore
	router   *mux.Router
}

// NewApp opens the configured backend and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	tracing, err := newTracerProvider(cfg, logger.Out)
	if err != nil {
		return nil, err
	}
	app := &App{
		config:  cfg,
		logger:  logger,
		tracing: tracing,
	}

	if err := app.initStores(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	if redisClient != nil {
		app.redis = redisClient
		app.sessions = services.NewCachedSessionStore(app.sessions, redisClient, cfg.SessionCacheTTL)
		logger.Info("session cache enabled")
	}

	app.router = app.buildRouter()
	return app, nil
}

func (app *App) initStores(ctx context.Context) error {
	switch app.config.StoreBackend {
	case config.StoreMemory:
		store := services.NewMemoryStore()
		app.users, app.tasks, app.sessions = store.Users(), store.Tasks(), store.Sessions()
		app.logger.Warn("using in-memory store; data is lost on exit")
		return nil
	case config.StoreNeo4j:
		driver, err := config.InitNeo4j(ctx, app.config)
		if err != nil {
			return err
		}
		app.driver = driver
		if err := services.EnsureSchema(ctx, driver, app.config.Neo4jDatabase); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
		db := app.config.Neo4jDatabase
		app.users = services.NewUserService(driver, db)
		app.tasks = services.NewTaskService(driver, db)
		app.sessions = services.NewSessionService(driver, db)
		app.logger.WithField("uri", app.config.Neo4jURI).Info("neo4j connection opened")
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", app.config.StoreBackend)
	}
}

// newTracerProvider builds the provider for request spans. Spans are exported
// only when an exporter is configured; stdout spans share the log output.
func newTracerProvider(cfg *config.Config, out io.Writer) (*sdktrace.TracerProvider, error) {
	switch cfg.TracingExporter {
	case config.TracingStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
	case config.TracingNone, "":
		return sdktrace.NewTracerProvider(), nil
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.TracingExporter)
	}
}

// Handler returns the HTTP handler serving the application.
func (app *App) Handler() http.Handler {
	return app.router
}

func (app *App) buildRouter() *mux.Router {
	cookies := middleware.SessionCookies{
		Name:   app.config.SessionCookieName,
		Secret: []byte(app.config.SessionSecret),
		Secure: app.config.SecureCookies,
	}
	render := controllers.NewRenderer(app.logger, app.config.SecureCookies)
	sessions := middleware.NewSessionResolver(app.sessions, app.users, cookies, app.logger)
	sessions.FailOpen = app.config.SessionFailOpen

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Handlers{
		Home:      controllers.NewHomeController(render, app.ping, app.logger),
		Users:     controllers.NewUserController(app.users, app.sessions, cookies, app.config.SessionTTL, render, app.logger),
		Tasks:     controllers.NewTaskController(app.tasks, render, app.logger),
		Sessions:  sessions,
		LoadTasks: middleware.LoadUserTasks(app.tasks, app.logger),
		Observe: []mux.MiddlewareFunc{
			middleware.Tracing(app.tracing.Tracer(tracerName)),
			middleware.RequestLogger(app.logger),
		},
	})
	return router
}

func (app *App) ping(ctx context.Context) error {
	if app.driver == nil {
		return nil
	}
	return app.driver.VerifyConnectivity(ctx)
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go app.sweepSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		app.logger.WithField("addr", srv.Addr).Info("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (app *App) sweepSessions(ctx context.Context) {
	if app.config.SessionSweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(app.config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.sessions.PurgeExpired(ctx, now)
			if err != nil {
				app.logger.WithError(err).Warn("session.sweep.failed")
				continue
			}
			if n > 0 {
				app.logger.WithField("removed", n).Debug("session.sweep")
			}
		}
	}
}

// Close releases the driver, the cache client and the tracer provider.
func (app *App) Close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.WithError(err).Warn("redis close failed")
		}
	}
	if app.driver != nil {
		if err := app.driver.Close(ctx); err != nil {
			app.logger.WithError(err).Warn("neo4j close failed")
		}
	}
	if err := app.tracing.Shutdown(ctx); err != nil {
		app.logger.WithError(err).Warn("tracer shutdown failed")
	}
}
