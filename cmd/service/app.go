// cmd/service/app.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github-popularity/internal/config"
	"github-popularity/internal/database"
	"github-popularity/internal/github"
	"github-popularity/internal/mapper"
	"github-popularity/internal/scoring"
	"github-popularity/internal/service"
	"github-popularity/internal/syncer"
)

// app holds the wired components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   database.Querier
	syncer  *syncer.Syncer // nil when ingestion is disabled
	service *service.Service
	closers []func()
}

func newApp(ctx context.Context, logOutput io.Writer) (*app, error) {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(logOutput, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "store_driver", cfg.StoreDriver)

	a := &app{cfg: cfg, logger: logger}

	// 3. Open the store
	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	// 4. Initialize application components
	ghClient, err := github.NewClient(cfg.GithubBaseURL, cfg.GithubToken, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}
	m := mapper.New(scoring.NewScorer())

	a.service = service.New(a.store, ghClient, m, logger)
	if cfg.IngestionEnabled() {
		a.syncer = syncer.NewSyncer(a.store, ghClient, m, logger, syncer.Config{
			Language: string(cfg.IngestionLanguage),
			Since:    cfg.IngestionSince,
		})
	} else {
		logger.Info("Ingestion disabled",
			"fetch_enabled", cfg.DataFetchEnabled,
			"language", cfg.SearchLanguage,
			"created_date", cfg.SearchCreatedDate)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := database.OpenSQLite(a.cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.store = s
		a.logger.Info("SQLite store opened", "path", a.cfg.SQLitePath)
	default:
		dbpool, err := pgxpool.New(ctx, a.cfg.DBURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, dbpool.Close)
		a.logger.Info("Database connection established")

		if err := database.Migrate(a.cfg.MigrationsPath, a.cfg.DBURL); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		a.logger.Info("Database migrations applied successfully")
		a.store = database.New(dbpool)
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
