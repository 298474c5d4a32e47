package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	"github.com/park285/termchess/internal/archive"
	"github.com/park285/termchess/internal/board"
	appcfg "github.com/park285/termchess/internal/config"
	"github.com/park285/termchess/internal/console"
	"github.com/park285/termchess/internal/demo"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/httpapi"
	"github.com/park285/termchess/internal/msgcat"
	"github.com/park285/termchess/internal/notation"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/render"
	"github.com/park285/termchess/internal/snapshot"
	"github.com/park285/termchess/pkg/chessdto"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	demoFile := flag.String("demo", cfg.DemoFile, "recorded game to replay before live play")
	pngFile := flag.String("png", cfg.BoardPNG, "write a board image here after every move")
	fen := flag.String("fen", "", "start from this position instead of the standard one")
	server := flag.String("server", "", "play a game hosted by chess-server at this URL")
	gameID := flag.String("game", "", "with -server, join this game instead of starting one")
	flag.Parse()

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

	if *server != "" {
		if *demoFile != "" {
			log.Fatalf("-demo replays locally and cannot be combined with -server")
		}
		if err := playRemote(ctx, cfg, cat, *server, *gameID, *fen, *pngFile); err != nil && !finishedQuietly(err) {
			logger.Error("remote_session_failed", zap.String("server", *server), zap.Error(err))
			fmt.Fprintln(os.Stderr, err)
			stop()
			os.Exit(1)
		}
		return
	}

	// 스냅샷 저장소와 아카이브는 설정된 경우에만 사용
	var store *snapshot.Store
	if cfg.RedisURL != "" {
		if store, err = snapshot.Open(ctx, cfg.RedisURL, cfg.SnapshotTTL); err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer func() { _ = store.Close() }()
	}
	var repo *archive.Repository
	if cfg.DatabaseURL != "" {
		if repo, err = archive.NewRepository(cfg.DatabaseURL); err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		defer func() { _ = repo.Close() }()
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("archive migrate error: %v", err)
		}
	}

	var g *game.Game
	opts := []game.Option{game.WithPlayers(cfg.WhiteName, cfg.BlackName), game.WithLogger(logger)}
	if store != nil {
		conv := chesspresenter.NewConverter()
		opts = append(opts, game.WithObserver(func(s game.Snapshot) {
			dto := conv.ToDTO(s, g.StartFEN(), time.Now())
			if err := store.Save(ctx, dto); err != nil {
				logger.Warn("snapshot_save_failed", zap.String("game_id", dto.GameID), zap.Error(err))
			}
		}))
	}
	if *fen != "" {
		b, err := board.ParseFEN(*fen)
		if err != nil {
			log.Fatalf("fen error: %v", err)
		}
		if g, err = game.FromBoard(b, opts...); err != nil {
			log.Fatalf("fen error: %v", err)
		}
	} else {
		g = game.New(opts...)
	}

	var script *demo.Script
	if *demoFile != "" {
		if script, err = demo.LoadFile(*demoFile); err != nil {
			log.Fatalf("demo error: %v", err)
		}
	}

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

	started := time.Now()
	sess := &console.Session{
		In:        os.Stdin,
		Presenter: chesspresenter.NewPresenter(os.Stdout, chesspresenter.NewFormatter(cat), sink),
		Game:      g,
		Script:    script,
	}
	snap, err := sess.Run(ctx)
	if err != nil && !finishedQuietly(err) {
		logger.Error("session_failed", zap.String("game_id", g.ID()), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if repo != nil && snap != nil && snap.Finished() {
		pgn := notation.PGN(notation.Header{
			White:   cfg.WhiteName,
			Black:   cfg.BlackName,
			Date:    started,
			ECO:     snap.ECO,
			Opening: snap.Opening,
			FEN:     g.StartFEN(),
		}, pgnMoves(snap), g.Outcome())
		// 종료 시그널 이후에도 저장은 끝까지 시도
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.SaveResult(sctx, chesspresenter.Record(*snap, g.Outcome(), pgn, started)); err != nil {
			logger.Warn("result_persist_failed", zap.String("game_id", g.ID()), zap.Error(err))
		}
	}
}

func pgnMoves(snap *chessdto.Snapshot) []string {
	if len(snap.MovesSAN) == len(snap.MovesUCI) && len(snap.MovesSAN) > 0 {
		return snap.MovesSAN
	}
	return snap.MovesUCI
}

func finishedQuietly(err error) bool {
	return errors.Is(err, console.ErrInputClosed) || errors.Is(err, context.Canceled)
}

// playRemote starts or joins a game on a chess-server. Board images come
// from the server's renderer.
func playRemote(ctx context.Context, cfg *appcfg.AppConfig, cat *msgcat.Catalog, server, id, fen, pngFile string) error {
	client := httpapi.NewClient(server)
	if id == "" {
		snap, err := client.Start(ctx, chessdto.StartGameRequest{White: cfg.WhiteName, Black: cfg.BlackName, FEN: fen})
		if err != nil {
			return fmt.Errorf("start game: %w", err)
		}
		id = snap.GameID
	}

	var sink chesspresenter.ImageSink
	if pngFile != "" {
		sink = func(ctx context.Context, snap *chessdto.Snapshot) error {
			png, err := client.BoardPNG(ctx, snap.GameID, snap.Turn == board.Black.String())
			if err != nil {
				return err
			}
			return os.WriteFile(pngFile, png, 0o644)
		}
	}
	f := chesspresenter.NewFormatter(cat)
	p := chesspresenter.NewPresenter(os.Stdout, f, sink)
	_ = p.Message(f.Joined(id, server))
	sess := &console.RemoteSession{In: os.Stdin, Presenter: p, Server: client, GameID: id}
	_, err := sess.Run(ctx)
	return err
}
