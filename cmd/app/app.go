package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/songcontest/songcontest-api/internal/api"
	"github.com/songcontest/songcontest-api/internal/config"
	"github.com/songcontest/songcontest-api/internal/db"
	"github.com/songcontest/songcontest-api/internal/logger"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
	"github.com/songcontest/songcontest-api/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := api.NewServer(conf, postgresDB)
	go s.RunEvents(ctx)

	sweeper, err := worker.NewSweeper(s.Editions, conf.Sweep, zap.L().Named("sweeper"))
	if err != nil {
		return fmt.Errorf("failed to initialize sweeper -> %w", err)
	}
	sweeper.Start()

	conf.Watch(func(fresh *config.AppConfig) {
		sweeper.SetEnabled(fresh.Sweep.Enabled)
	}, func(err error) {
		zap.L().Warn("config reload rejected", zap.Error(err))
	})

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			<-sweeper.Stop().Done()
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sweepDone := sweeper.Stop()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}
	select {
	case <-sweepDone.Done():
	case <-shutdownCtx.Done():
		zap.L().Warn("sweep still running at shutdown")
	}

	return nil
}
