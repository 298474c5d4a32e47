// Package console runs a game over a line-oriented text stream, with an
// optional recorded demo in front of live play.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	"github.com/park285/termchess/internal/demo"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/pkg/chessdto"
)

// ErrInputClosed reports that input ended before the game did.
var ErrInputClosed = errors.New("input closed before the game ended")

type Session struct {
	In        io.Reader
	Presenter *chesspresenter.Presenter
	Game      *game.Game
	// Script is optional. When set, blank lines replay it.
	Script *demo.Script
	Now    func() time.Time

	conv *chesspresenter.Converter
}

func (s *Session) snapshot() *chessdto.Snapshot {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if s.conv == nil {
		s.conv = chesspresenter.NewConverter()
	}
	snap := s.conv.ToDTO(s.Game.Snapshot(), s.Game.StartFEN(), now())
	return &snap
}

// Run reads lines until the game ends, the demo aborts, input closes or ctx
// is cancelled. Rejected input is reported and read again.
func (s *Session) Run(ctx context.Context) (*chessdto.Snapshot, error) {
	p := s.Presenter
	f := p.Formatter()
	var ctrl *demo.Controller
	if s.Script != nil && s.Script.Len() > 0 {
		ctrl = demo.NewController(s.Game, s.Script)
	}

	_ = p.Message(f.Banner())
	if ctrl != nil {
		_ = p.Message(f.DemoLoaded(s.Script.Len()))
	}
	snap := s.snapshot()
	if err := p.Show(ctx, snap); err != nil {
		return snap, err
	}

	scanner := bufio.NewScanner(s.In)
	announcedEnd := false
	for !snap.Finished() {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		demoing := ctrl != nil && ctrl.State() == demo.Playing && !ctrl.Exhausted()
		if demoing {
			_ = p.Prompt(f.DemoPrompt(ctrl.Cursor()+1, s.Script.Len()))
		} else {
			_ = p.Prompt(f.Prompt(snap))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return snap, err
			}
			return snap, ErrInputClosed
		}
		line := scanner.Text()

		var err error
		if ctrl != nil {
			discard := ctrl.Remaining()
			_, err = ctrl.Submit(line)
			if demoing && ctrl.State() == demo.Interrupted {
				_ = p.Message(f.DemoInterrupted(discard))
			}
			if errors.Is(err, demo.ErrMalformedEntry) {
				_ = p.Error(err)
				return s.snapshot(), err
			}
		} else {
			var a game.Action
			if a, err = movetext.Parse(line); err == nil {
				_, err = s.Game.Apply(a)
			}
		}
		if err != nil {
			obslog.L().Debug("console_rejected", zap.String("input", line), zap.Error(err))
			_ = p.Error(err)
			continue
		}

		snap = s.snapshot()
		if err := p.Show(ctx, snap); err != nil {
			return snap, err
		}
		if ctrl != nil && ctrl.Exhausted() && !announcedEnd {
			announcedEnd = true
			if !snap.Finished() {
				_ = p.Message(f.DemoExhausted())
			}
		}
	}
	_ = p.Message(f.History(snap))
	return snap, nil
}
