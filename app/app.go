package docgate

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/docmill/docgate/core"
	"github.com/docmill/docgate/handlers"
	"github.com/docmill/docgate/pkg/metrics"
	"github.com/docmill/docgate/pkg/router"
	"github.com/docmill/docgate/store"
)

// App is the explicitly constructed gateway instance: all services are
// built once at startup and injected into the router. There is no global
// state; everything request handlers need hangs off this struct.
type App struct {
	config  *Config
	context context.Context
	logger  *zap.Logger

	db          *core.SQLiteDB
	credentials *core.CredentialSet
	codec       *core.TokenCodec
	authLog     store.AuthLogStore
	metrics     *metrics.Metrics

	authHandler  *handlers.AuthHandler
	backendProxy *handlers.BackendProxy

	router *router.Router
	server *http.Server

	cleanupFuncs []func(context.Context)
	exit         chan int
}

func New(ctx context.Context, config *Config) (*App, error) {
	app := &App{
		exit: make(chan int),
	}
	if ctx == nil {
		ctx, _ = signal.NotifyContext(
			context.Background(),
			syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	}
	app.context = ctx

	if config == nil {
		var err error
		config, err = LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	app.config = config

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	app.logger = logger
	app.AddCleanupFunc(func(ctx context.Context) {
		_ = logger.Sync()
	})

	credentials, fallback, err := core.LoadCredentials(config.Auth.CredentialFile)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	if fallback {
		app.logger.Warn("credential file missing or incomplete, using built-in fallback administrator credentials; set MANAGEMENT_ADMIN_USERNAME and MANAGEMENT_ADMIN_PASSWORD before exposing this gateway",
			zap.String("file", config.Auth.CredentialFile))
	} else {
		app.logger.Info("credentials loaded",
			zap.String("file", config.Auth.CredentialFile),
			zap.Int("entries", credentials.Len()))
	}
	app.credentials = credentials

	app.codec = core.NewTokenCodec(core.DeriveKey(config.Auth.Passphrase), config.Auth.TokenExp)

	sqliteOptions := &core.SQLiteDBOption{
		Mode:        "rwc",
		Cache:       "shared",
		JournalMode: "WAL",
	}
	app.db, err = core.NewSQLiteDB(config.SQLite.File, config.SQLite.Migrations, sqliteOptions)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app.AddCleanupFunc(func(ctx context.Context) {
		app.db.Close()
	})
	if err := app.db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	app.authLog = store.NewSQLiteAuthLogStore(app.db.DB)

	app.metrics = metrics.New()

	backendURL, err := url.Parse(config.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}

	app.authHandler = handlers.NewAuthHandler(app.credentials, app.codec, app.authLog, app.metrics, app.logger)
	app.backendProxy = handlers.NewBackendProxy(backendURL, app.logger)
	authMiddleware := handlers.AuthMiddleware(app.codec, app.metrics, app.logger)

	app.router = router.New(router.WithLogger(app.logger))

	app.router.Router.Use(requestLogger(app.logger))
	app.router.Router.Use(app.metrics.Middleware())
	app.router.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	app.router.Get(handlers.LoginPath, app.authHandler.LoginPageHandler)

	app.router.Route("/auth", func(r *router.Router) {
		r.Options("/*", app.authHandler.PreflightHandler)
		r.Post("/login", app.authHandler.LoginHandler)
		r.Get("/verify", app.authHandler.VerifyHandler)
		r.Post("/logout", app.authHandler.LogoutHandler)
		r.With(authMiddleware).Get("/logs", app.authHandler.LogsHandler)
	})

	protected := app.router.With(authMiddleware)
	protected.Handle(handlers.AppPath, app.backendProxy.Handler)
	protected.Handle(handlers.AppPath+"/*", app.backendProxy.Handler)
	protected.Handle("/api/*", app.backendProxy.Handler)

	app.router.Get("/", func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, handlers.AppPath, http.StatusFound)
		return nil
	})

	app.router.Router.Handle("/metrics", app.metrics.Handler())

	app.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Hostname, config.Port),
		Handler: app.router.Router,
		BaseContext: func(listener net.Listener) context.Context {
			return app.context
		},
	}

	return app, nil
}

// Handler exposes the assembled route table.
func (app *App) Handler() http.Handler {
	return app.router.Router
}

func (app *App) Start() {
	// listen for shutdown signal
	go func() {
		<-app.context.Done()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()

		var wg sync.WaitGroup
		for _, f := range app.cleanupFuncs {
			wg.Add(1)
			go func(f func(context.Context)) {
				defer wg.Done()
				f(closeCtx)
			}(f)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			app.logger.Info("app shutdown gracefully")
			app.exit <- 0
		case <-closeCtx.Done():
			app.logger.Error("app shutdown timed out")
			app.exit <- 1
		}
	}()

	app.AddCleanupFunc(func(ctx context.Context) {
		_ = app.server.Shutdown(ctx)
	})

	app.logger.Info("gateway listening",
		zap.String("addr", app.server.Addr),
		zap.String("backend", app.config.Backend.URL))

	err := app.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		failed(1, "server error: %v\n", err)
	}

	code := <-app.exit
	os.Exit(code)
}

func (app *App) AddCleanupFunc(f func(context.Context)) {
	app.cleanupFuncs = append(app.cleanupFuncs, f)
}

func failed(code int, s string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, s, args...)
	os.Exit(code)
}
