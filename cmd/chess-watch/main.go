package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	appcfg "github.com/park285/termchess/internal/config"
	"github.com/park285/termchess/internal/console"
	"github.com/park285/termchess/internal/msgcat"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/render"
	"github.com/park285/termchess/internal/snapshot"
	"github.com/park285/termchess/pkg/chessdto"
)

// chess-watch follows games published to redis by chess and chess-server.
func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gameID := flag.String("game", "", "follow only this game and stop when it ends")
	pngFile := flag.String("png", cfg.BoardPNG, "write a board image here for every update")
	flag.Parse()

	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}
	if err := console.InitLogging(os.Stderr); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}
	store, err := snapshot.Open(ctx, cfg.RedisURL, cfg.SnapshotTTL)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	defer func() { _ = store.Close() }()

	var sink chesspresenter.ImageSink
	if *pngFile != "" {
		renderer := render.NewRenderer()
		path := *pngFile
		sink = func(ctx context.Context, snap *chessdto.Snapshot) error {
			png, err := renderer.RenderPNG(ctx, *snap, render.Options{Header: "termchess"})
			if err != nil {
				return err
			}
			return os.WriteFile(path, png, 0o644)
		}
	}
	p := chesspresenter.NewPresenter(os.Stdout, chesspresenter.NewFormatter(cat), sink)

	// 구독 전에 끝난 대국이면 저장된 스냅샷만 보여줌
	if *gameID != "" {
		if snap, err := store.Load(ctx, *gameID); err == nil && snap.Finished() {
			_ = p.Message(p.Formatter().WatchHeader(snap))
			_ = p.Show(ctx, snap)
			return
		}
	}

	ch, err := store.Subscribe(ctx)
	if err != nil {
		log.Fatalf("subscribe error: %v", err)
	}
	logger.Info("watch_started", zap.String("channel", snapshot.Channel), zap.String("game_id", *gameID))
	if err := console.Watch(ctx, p, ch, *gameID); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch_failed", zap.Error(err))
	}
}
