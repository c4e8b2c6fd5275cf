package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frahmantamala/shopping-list/api"
	"github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/auth"
	authPostgres "github.com/frahmantamala/shopping-list/internal/auth/postgres"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	catalogPostgres "github.com/frahmantamala/shopping-list/internal/catalog/postgres"
	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/list"
	listPostgres "github.com/frahmantamala/shopping-list/internal/list/postgres"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	listitemPostgres "github.com/frahmantamala/shopping-list/internal/listitem/postgres"
	"github.com/frahmantamala/shopping-list/internal/metrics"
	"github.com/frahmantamala/shopping-list/internal/notification"
	notificationPostgres "github.com/frahmantamala/shopping-list/internal/notification/postgres"
	"github.com/frahmantamala/shopping-list/internal/realtime"
	"github.com/frahmantamala/shopping-list/internal/transport"
	"github.com/frahmantamala/shopping-list/internal/transport/rest"
	"github.com/frahmantamala/shopping-list/internal/transport/swagger"
	"github.com/frahmantamala/shopping-list/internal/user"
	userPostgres "github.com/frahmantamala/shopping-list/internal/user/postgres"
	"github.com/frahmantamala/shopping-list/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var requestLogging bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API and websocket requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *Connections
	EventBus *events.EventBus
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, rest.RouterConfig{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		RequestLogging: requestLogging,
	}, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Drain()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	if _, err := swagger.Load(context.Background(), api.OpenAPI); err != nil {
		return nil, err
	}

	conns, err := initDB(config.Database, config.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var m *metrics.Metrics
	if config.Observability.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	}

	eventBus := events.NewEventBus(log)
	base := transport.NewBaseHandler(log)

	notificationService := notification.NewService(notificationPostgres.NewRepository(conns.SQLX), eventBus, log)
	notification.NewEventHandler(notificationService, log).RegisterEventHandlers(eventBus)
	dispatcher := notification.NewDispatcher(eventBus, log)

	userService := user.NewService(userPostgres.NewRepository(conns.Gorm), log)

	itemRepo := listitemPostgres.NewItemRepository(conns.Gorm)
	listService := list.NewService(listPostgres.NewListRepository(conns.Gorm), itemRepo, userService, dispatcher, eventBus, log)

	productCache := catalog.NewProductCache(config.Catalog.CacheSize, config.Catalog.CacheTTL)
	catalogService := catalog.NewService(
		catalogPostgres.NewProductRepository(conns.Gorm),
		catalogPostgres.NewCategoryRepository(conns.Gorm),
		productCache,
		log,
	)

	itemService := listitem.NewService(itemRepo, listService, catalogService, eventBus, log)
	if m != nil {
		listService.WithRecorder(m)
		itemService.WithRecorder(m)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(conns.Gorm), tokenGen, config.Security.BCryptCost, log)

	hub := realtime.NewHub(listService, log)
	hub.RegisterEventHandlers(eventBus)

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       conns,
		EventBus: eventBus,
		Router:   chi.NewRouter(),
		Handlers: rest.Handlers{
			Health:       rest.NewHealthHandler(map[string]rest.Pinger{"postgres": conns.SQLX}),
			Auth:         auth.NewHandler(base, authService),
			User:         user.NewHandler(base, userService),
			List:         list.NewHandler(base, listService),
			Item:         listitem.NewHandler(base, itemService),
			Catalog:      catalog.NewHandler(base, catalogService),
			Notification: notification.NewHandler(base, notificationService),
			Realtime:     realtime.NewHandler(base, hub, originPatterns(config.Server.AllowedOrigins)),
			Metrics:      m,
			MetricsPath:  config.Observability.Metrics.Path,
			OpenAPI:      api.OpenAPI,
		},
	}, nil
}

// originPatterns turns the CORS origin list into the host patterns the
// websocket handshake checks against.
func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}

func init() {
	httpServerCmd.Flags().BoolVar(&requestLogging, "request-logging", true, "log every request and response with secrets masked")
}
