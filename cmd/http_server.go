package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/harborops/attendance-management/internal"
	"github.com/harborops/attendance-management/internal/accessrequest"
	accessrequestRepo "github.com/harborops/attendance-management/internal/accessrequest/postgres"
	"github.com/harborops/attendance-management/internal/attendance"
	attendanceRepo "github.com/harborops/attendance-management/internal/attendance/postgres"
	"github.com/harborops/attendance-management/internal/auth"
	"github.com/harborops/attendance-management/internal/core/events"
	"github.com/harborops/attendance-management/internal/geocoder"
	"github.com/harborops/attendance-management/internal/geolocation"
	"github.com/harborops/attendance-management/internal/location"
	locationRepo "github.com/harborops/attendance-management/internal/location/postgres"
	"github.com/harborops/attendance-management/internal/permission"
	permissionRepo "github.com/harborops/attendance-management/internal/permission/postgres"
	"github.com/harborops/attendance-management/internal/transport/rest"
	"github.com/harborops/attendance-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config

	publicKey, err := cfg.Security.GetPublicKey()
	if err != nil {
		return fmt.Errorf("failed to load JWT public key: %w", err)
	}
	validator := auth.NewTokenValidator(publicKey)
	authMiddleware := auth.NewMiddleware(validator)

	bus := events.NewEventBus(deps.Logger)
	registerEventLogging(bus, deps.Logger)

	resolver := geocoder.NewClient(geocoder.Config{
		BaseURL:        cfg.Geocoder.BaseURL,
		RequestTimeout: cfg.Geocoder.RequestTimeout,
	}, deps.Logger)

	var fallback geolocation.PositionProvider
	if cfg.Geolocation.GatewayURL != "" {
		fallback = geolocation.NewDeviceGateway(geolocation.GatewayConfig{
			BaseURL:        cfg.Geolocation.GatewayURL,
			FixTimeout:     cfg.Geolocation.FixTimeout,
			MaxPositionAge: cfg.Geolocation.MaxPositionAge,
			HighAccuracy:   cfg.Geolocation.HighAccuracy,
		}, deps.Logger)
	}

	locationService := location.NewService(locationRepo.NewGeoFenceRepository(deps.GormDB), deps.Logger)
	permissionService := permission.NewService(permissionRepo.NewPermissionRepository(deps.GormDB), deps.Logger)
	accessRequestService := accessrequest.NewService(accessrequestRepo.NewAccessRequestRepository(deps.GormDB), bus, deps.Logger)
	attendanceService := attendance.NewService(
		attendanceRepo.NewSessionRepository(deps.GormDB),
		locationService,
		permissionService,
		accessRequestService,
		resolver,
		bus,
		deps.Logger,
	)

	attendanceHandler := attendance.NewHandler(attendanceService, fallback)
	accessRequestHandler := accessrequest.NewHandler(accessRequestService)
	locationHandler := location.NewHandler(locationService)
	permissionHandler := permission.NewHandler(permissionService)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		authMiddleware,
		attendanceHandler,
		accessRequestHandler,
		locationHandler,
		permissionHandler,
		cfg.Server.AllowedOrigins,
		deps.Logger,
	)

	return nil
}

// registerEventLogging wires an audit log line for every domain event.
func registerEventLogging(bus *events.EventBus, lg *slog.Logger) {
	for _, eventType := range []string{
		events.SessionOpenedEvent,
		events.SessionClosedEvent,
		events.ClockInDeniedEvent,
		events.AccessRequestSubmittedEvent,
		events.AccessRequestReviewedEvent,
	} {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("attendance event",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"payload", event.Payload())
			return nil
		})
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// share the pool with gorm; TranslateError surfaces unique violations
	// as gorm.ErrDuplicatedKey, which the clock-in path depends on
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
