package console

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/pkg/chessdto"
)

// Remote is a game host reached over the network.
type Remote interface {
	Get(ctx context.Context, id string) (*chessdto.Snapshot, error)
	Play(ctx context.Context, id, input string) (*chessdto.MoveResult, error)
	PGN(ctx context.Context, id string) (string, error)
}

// RemoteSession plays a hosted game. Both players may share one terminal or
// join the same game id from two.
type RemoteSession struct {
	In        io.Reader
	Presenter *chesspresenter.Presenter
	Server    Remote
	GameID    string
}

// Run reads lines until the game ends, input closes or ctx is cancelled. A
// blank line refreshes the board, which shows moves made elsewhere.
func (s *RemoteSession) Run(ctx context.Context) (*chessdto.Snapshot, error) {
	p := s.Presenter
	f := p.Formatter()
	snap, err := s.Server.Get(ctx, s.GameID)
	if err != nil {
		return nil, err
	}
	_ = p.Message(f.Banner())
	if err := p.Show(ctx, snap); err != nil {
		return snap, err
	}

	scanner := bufio.NewScanner(s.In)
	for !snap.Finished() {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		_ = p.Prompt(f.Prompt(snap))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return snap, err
			}
			return snap, ErrInputClosed
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			next, err := s.Server.Get(ctx, s.GameID)
			if err != nil {
				_ = p.Error(err)
				continue
			}
			snap = next
		} else {
			res, err := s.Server.Play(ctx, s.GameID, line)
			if err != nil {
				obslog.L().Debug("remote_rejected", zap.String("game_id", s.GameID), zap.String("input", line), zap.Error(err))
				_ = p.Error(err)
				// the other player may have ended it
				if chessdto.FromError(err).Code == chessdto.CodeGameOver {
					if next, gerr := s.Server.Get(ctx, s.GameID); gerr == nil {
						snap = next
						_ = p.Message(f.Outcome(snap))
					}
				}
				continue
			}
			if res.Snapshot != nil {
				snap = res.Snapshot
			}
		}
		if err := p.Show(ctx, snap); err != nil {
			return snap, err
		}
	}
	_ = p.Message(f.History(snap))
	if pgn, err := s.Server.PGN(ctx, s.GameID); err == nil {
		_ = p.Message(pgn)
	}
	return snap, nil
}
