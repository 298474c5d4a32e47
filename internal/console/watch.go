package console

import (
	"context"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	"github.com/park285/termchess/pkg/chessdto"
)

// Watch shows snapshots from ch as they arrive. With gameID set, other games
// are skipped and Watch returns once that game has finished.
func Watch(ctx context.Context, p *chesspresenter.Presenter, ch <-chan chessdto.Snapshot, gameID string) error {
	f := p.Formatter()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			if gameID != "" && snap.GameID != gameID {
				continue
			}
			_ = p.Message(f.WatchHeader(&snap))
			if err := p.Show(ctx, &snap); err != nil {
				return err
			}
			if gameID != "" && snap.Finished() {
				_ = p.Message(f.History(&snap))
				return nil
			}
		}
	}
}
