package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/archive"
	appcfg "github.com/park285/termchess/internal/config"
	"github.com/park285/termchess/internal/httpapi"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/render"
	"github.com/park285/termchess/internal/session"
	"github.com/park285/termchess/internal/snapshot"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	opts := []session.Option{session.WithMaxGames(cfg.MaxGames), session.WithRetention(cfg.Retention)}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if cfg.RedisURL != "" {
		store, err := snapshot.Open(initCtx, cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			cancel()
			log.Fatalf("redis init error: %v", err)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, session.WithStore(store))
	}
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatalf("archive init error: %v", err)
		}
		defer func() { _ = repo.Close() }()
		if err := repo.Migrate(initCtx); err != nil {
			cancel()
			log.Fatalf("archive migrate error: %v", err)
		}
		opts = append(opts, session.WithArchive(repo))
	}
	cancel()

	srv := httpapi.NewServer(session.NewManager(opts...), render.NewRenderer())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.HTTPAddr) }()
	logger.Info("server_listening", zap.String("addr", cfg.HTTPAddr))

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("server_stopping", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server_failed", zap.Error(err))
		}
	}

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("server_shutdown", zap.Error(err))
	}
}
