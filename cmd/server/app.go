package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/platform/postgres"
	"github.com/taskhive/taskhive/internal/scheduler"
	"github.com/taskhive/taskhive/internal/service/auth"
	"github.com/taskhive/taskhive/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	notifier         notify.Notifier

	// Background deadline job
	scheduler *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.notifier, err = setupNotifier(cfg.Broker, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	checker := scheduler.NewDeadlineChecker(
		app.taskStore,
		app.userStore,
		app.notifier,
		time.Duration(cfg.Scheduler.LookbackHours)*time.Hour,
		time.Duration(cfg.Scheduler.LookaheadHours)*time.Hour,
		logger,
	)
	app.scheduler, err = scheduler.New(cfg.Scheduler, checker, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupNotifier picks the alert delivery channel. Without a broker URL the
// alerts go to the structured log only.
func setupNotifier(cfg config.BrokerConfig, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.URL == "" {
		logger.Info("no broker configured, deadline alerts will be logged only")
		return notify.NewLogNotifier(logger), nil
	}

	notifier, err := notify.NewAMQPNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("AMQP notifier initialized", "queue", cfg.Queue)
	return notifier, nil
}

// Run starts the background scheduler and the HTTP server, handling
// lifecycle and cleanup. It returns when the server has shut down.
func (app *application) Run(ctx context.Context) error {
	app.scheduler.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
