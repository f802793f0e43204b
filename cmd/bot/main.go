package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onboarder/internal/audit"
	"onboarder/internal/config"
	"onboarder/internal/domain"
	"onboarder/internal/handler"
	"onboarder/internal/i18n"
	"onboarder/internal/logger"
	"onboarder/internal/middleware"
	"onboarder/internal/notify"
	"onboarder/internal/platform/discord"
	"onboarder/internal/registration"
	"onboarder/internal/repository/postgres"
	"onboarder/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const cachePurgeInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Dev: cfg.Log.Dev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting onboarding bot", zap.String("guild_id", cfg.Discord.GuildID))

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Database connection established")

	if err := runMigrations(db, cfg.MigrationsURL, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	flagRepo := postgres.NewFlagRepo(db)
	registrationRepo := postgres.NewRegistrationRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	auditFile, auditCloser, err := audit.NewFileCore(audit.FileConfig{
		Pattern:      cfg.Audit.Pattern,
		LinkName:     cfg.Audit.LinkName,
		MaxAge:       cfg.Audit.MaxAge,
		RotationTime: cfg.Audit.RotationTime,
	})
	if err != nil {
		log.Fatal("Failed to open audit log", zap.Error(err))
	}
	defer closeQuietly(auditCloser, "audit log", log)
	auditor := audit.NewLogger(auditRepo, auditFile, log)

	texts, err := i18n.LoadEmbedded()
	if err != nil {
		log.Fatal("Failed to load texts", zap.Error(err))
	}
	if err := texts.Validate(service.MessageKeys...); err != nil {
		log.Fatal("Incomplete texts", zap.Error(err))
	}

	var alerts service.Notifier = notify.Nop{}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.APIURL, log)
		if err != nil {
			log.Fatal("Failed to initialize operator alerts", zap.Error(err))
		}
		alerts = tg
		log.Info("Operator alerts enabled", zap.Int64("chat_id", cfg.Telegram.ChatID))
	}

	// Initialize services
	registrations := registration.NewCache(registrationRepo, cfg.RegistrationCacheTTL, log)
	resolver := service.NewRoleResolver(service.RoleTable{
		GraduateCohort:    domain.RoleID(cfg.Roles.GraduateCohort),
		ProgrammingCourse: domain.RoleID(cfg.Roles.ProgrammingCourse),
		Products:          cfg.ProductRoleIDs(),
		Programs:          cfg.ProgramRoles(),
	})
	workflow := service.NewWorkflow(resolver)

	// Initialize Discord
	adapter, err := discord.New(discord.Config{
		Token:          cfg.Discord.Token,
		GuildID:        cfg.Discord.GuildID,
		AttachmentsDir: cfg.Discord.AttachmentsDir,
	}, log)
	if err != nil {
		log.Fatal("Failed to create discord session", zap.Error(err))
	}

	executor := service.NewExecutor(adapter, adapter, userRepo, flagRepo, texts, auditor, log,
		service.WithRetryPolicy(service.RetryPolicy{
			MaxTries:        cfg.Delivery.MaxTries,
			InitialInterval: cfg.Delivery.InitialInterval,
			MaxInterval:     cfg.Delivery.MaxInterval,
		}),
		service.WithNotifier(alerts),
	)

	// the bot's own id is known once connected
	guard := service.NewGuard("")
	router := handler.NewRouter(userRepo, registrations, guard, workflow, executor, cfg.RejoinKeyword, log)
	router.Use(
		middleware.Recover(log),
		middleware.Logging(log),
		middleware.FlaggedMessages(flagRepo, userRepo, auditor, log),
	)

	// queued events finish on shutdown, so they do not share the job context
	dispatcher := handler.NewDispatcher(context.Background(), router.Handler(), cfg.Delivery.EventTimeout, log)
	dispatcher.Hold()
	adapter.Bind(func(ev domain.Event) {
		dispatcher.Submit(ev)
	})

	if err := adapter.Open(); err != nil {
		log.Fatal("Failed to connect to Discord", zap.Error(err))
	}
	guard.SetSelfID(adapter.SelfID())
	log.Info("Releasing events received while connecting", zap.Int("pending", dispatcher.Pending()))
	dispatcher.Release()

	log.Info("Handlers registered")

	// Start cache maintenance in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runCachePurgeJob(ctx, registrations, log)

	log.Info("Bot started successfully")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	closeQuietly(adapter, "discord session", log)
	log.Info("Draining queued events", zap.Int("pending", dispatcher.Pending()))
	dispatcher.Close()
	cancel()

	log.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations from sourceURL
func runMigrations(db *sqlx.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db.DB, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// runCachePurgeJob drops expired registrations from the cache
func runCachePurgeJob(ctx context.Context, cache *registration.Cache, logger *zap.Logger) {
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cache purge job stopped")
			return
		case <-ticker.C:
			cache.Purge()
		}
	}
}

func closeQuietly(c io.Closer, name string, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("Failed to close "+name, zap.Error(err))
	}
}
