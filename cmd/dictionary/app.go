package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dictionary/internal/config"
	"dictionary/internal/remote"
	"dictionary/internal/repository/postgres"
	"dictionary/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// app bundles the wired services shared by all commands
type app struct {
	cfg         *config.Config
	db          *sql.DB
	wordService *service.WordService
	fetcher     *remote.Fetcher
	logger      *zap.Logger
}

// newApp loads configuration, connects to the database and wires the services
func newApp(ctx context.Context, logger *zap.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Configuration loaded successfully")

	db, err := connectDatabase(ctx, cfg.DSN(), defaultDBRetry, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	translationService := service.NewTranslationService(store.Translations())
	wordService := service.NewWordService(store, translationService, cfg.ProgressStep, logger)

	fetcher, err := remote.NewFetcher(
		cfg.RemoteBaseURL(),
		&http.Client{Timeout: cfg.Remote.Timeout},
		wordService,
		logger,
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		db:          db,
		wordService: wordService,
		fetcher:     fetcher,
		logger:      logger,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// dbRetry controls how long connectDatabase waits for PostgreSQL to come up
type dbRetry struct {
	attempts int
	delay    time.Duration
}

var defaultDBRetry = dbRetry{attempts: 30, delay: 2 * time.Second}

// connectDatabase opens the pool and pings until the server answers or the
// attempts run out
func connectDatabase(ctx context.Context, dsn string, retry dbRetry, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= retry.attempts {
			break
		}

		logger.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", retry.delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retry.delay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retry.attempts, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
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
