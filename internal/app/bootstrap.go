package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"employee-service/internal/auth"
	"employee-service/internal/db"
	"employee-service/internal/employee"
	"employee-service/internal/maintenance"
	"employee-service/internal/notify"
	"employee-service/internal/observability"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Config  Config
	Handler http.Handler
	Logger  *observability.Logger
	Close   func() error
}

// mailer covers every message the services send.
type mailer interface {
	auth.Notifier
	employee.Notifier
}

func Build(ctx context.Context, options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger()

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(ctx, database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	var notifier mailer = notify.NewLogNotifier(logger)
	if cfg.SMTP.Host != "" {
		smtp, err := notify.NewMailer(cfg.SMTP)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("init mailer: %w", err)
		}
		notifier = smtp
	} else {
		logger.Warn("smtp_not_configured", map[string]any{"fallback": "log"})
	}
	dispatcher := notify.NewDispatcher(logger, cfg.NotifyTimeout)

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	authRepo := auth.NewRepository(database)
	authService := auth.NewService(authRepo, hasher, tokens, notifier, dispatcher, logger)
	authService.WithSecurityConfig(cfg.LoginMaxAttempts, cfg.LoginLockWindow)

	if err := auth.BootstrapFromEnv(ctx, authRepo, hasher, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	employeeService := employee.NewService(employee.NewRepository(database), hasher, notifier, dispatcher, logger)

	routes := Routes{
		Tokens:       tokens,
		Auth:         auth.NewHandler(authService),
		Employees:    employee.NewHandler(employeeService),
		Cleanup:      maintenance.NewCleanupHandler(authRepo, logger, cfg.CronSecret, cfg.AuditRetention, cfg.CleanupBatchSize),
		LoginLimiter: auth.NewLoginRateLimiter(cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow),
		Database:     database,
		Logger:       logger,
	}

	return &Runtime{
		Config:  cfg,
		Handler: routes.Handler(),
		Logger:  logger,
		Close: func() error {
			dispatcher.Wait()
			observability.FlushSentry()
			return database.Close()
		},
	}, nil
}
