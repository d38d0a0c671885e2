package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindsoothe/backend/internal/app"
	"github.com/mindsoothe/backend/internal/config"
	"github.com/mindsoothe/backend/internal/metrics"
	"github.com/mindsoothe/backend/internal/services/analysis"
	authsvc "github.com/mindsoothe/backend/internal/services/auth"
	"github.com/mindsoothe/backend/internal/storage/postgres"
	"github.com/mindsoothe/backend/pkg/logger"
)

func main() {
	// A missing .env is not an error; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns, time.Duration(cfg.Database.ConnMaxLifetime)*time.Second)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		store := postgres.New(db)
		stores = app.Stores{
			Users:    store,
			Entries:  store,
			Settings: store,
			Profiles: store,
			Letters:  store,
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("no database configured, using in-memory storage")
	}

	opts := app.Options{
		Metrics: metrics.New(),
		Logger:  log,
	}

	if cfg.Auth.RedisURL != "" {
		revoker, err := authsvc.NewRedisRevoker(cfg.Auth.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer revoker.Close()
		opts.Revoker = revoker
		log.Info("token revocation enabled")
	}

	if cfg.Analysis.BaseURL != "" {
		opts.Analyzer = analysis.NewHTTPClient(cfg.Analysis, log.WithField("component", "analysis"))
	} else {
		log.Warn("analysis endpoint not configured, AI routes will fail")
	}

	application := app.New(*cfg, stores, opts)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      application.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
