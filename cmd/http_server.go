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
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	authPostgres "github.com/leavesync/leavesync/internal/auth/postgres"
	"github.com/leavesync/leavesync/internal/core/events"
	"github.com/leavesync/leavesync/internal/leave"
	leavePostgres "github.com/leavesync/leavesync/internal/leave/postgres"
	"github.com/leavesync/leavesync/internal/reimbursement"
	reimbursementPostgres "github.com/leavesync/leavesync/internal/reimbursement/postgres"
	"github.com/leavesync/leavesync/internal/transport/rest"
	"github.com/leavesync/leavesync/internal/transport/swagger"
	"github.com/leavesync/leavesync/internal/user"
	userPostgres "github.com/leavesync/leavesync/internal/user/postgres"
	"github.com/leavesync/leavesync/pkg/logger"
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
	Config               *internal.Config
	DB                   *sqlx.DB
	GormDB               *gorm.DB
	Router               *chi.Mux
	Logger               *slog.Logger
	AuthHandler          *auth.Handler
	UserHandler          *user.Handler
	LeaveHandler         *leave.Handler
	ReimbursementHandler *reimbursement.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		deps.AuthHandler,
		deps.UserHandler,
		deps.LeaveHandler,
		deps.ReimbursementHandler,
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	if err := swagger.ValidateDocument(context.Background(), "./api/openapi.yml"); err != nil {
		// The API still works without the document; only /swagger
		// degrades.
		appLogger.Warn("openapi document validation failed", "error", err)
	}

	eventBus := events.NewEventBus(appLogger)
	events.RegisterAuditSubscriber(eventBus, appLogger)

	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenTTL)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, appLogger)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, appLogger)
	userHandler := user.NewHandler(userService)

	leaveRepo := leavePostgres.NewLeaveRepository(gormDB)
	leaveService := leave.NewService(leaveRepo, eventBus, appLogger)
	leaveHandler := leave.NewHandler(leaveService)

	reimbursementRepo := reimbursementPostgres.NewReimbursementRepository(gormDB)
	reimbursementService := reimbursement.NewService(reimbursementRepo, eventBus, appLogger)
	reimbursementHandler := reimbursement.NewHandler(reimbursementService)

	return &Dependencies{
		Config:               config,
		Logger:               appLogger,
		DB:                   db,
		GormDB:               gormDB,
		Router:               chi.NewRouter(),
		AuthHandler:          authHandler,
		UserHandler:          userHandler,
		LeaveHandler:         leaveHandler,
		ReimbursementHandler: reimbursementHandler,
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the already-open pgx connection so both
// handles share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
