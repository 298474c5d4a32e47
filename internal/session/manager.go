// Package session hosts concurrent games in process, keyed by game id.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/adapter/chesspresenter"
	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/notation"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/snapshot"
	"github.com/park285/termchess/pkg/chessdto"
)

var (
	ErrNotFound     = errors.New("game not found")
	ErrTooManyGames = errors.New("too many concurrent games")
)

// DefaultRetention is how long a finished game stays in memory.
const DefaultRetention = 10 * time.Minute

// SnapshotStore receives every snapshot after an accepted action and serves
// finished games once they leave memory.
type SnapshotStore interface {
	Save(ctx context.Context, snap chessdto.Snapshot) error
	Load(ctx context.Context, id string) (*chessdto.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// ResultArchive receives each finished game once.
type ResultArchive interface {
	SaveResult(ctx context.Context, rec chessdto.GameRecord) error
}

type Option func(*Manager)

func WithStore(s SnapshotStore) Option { return func(m *Manager) { m.store = s } }

func WithArchive(a ResultArchive) Option { return func(m *Manager) { m.archive = a } }

// WithMaxGames caps games still in progress; zero or less means unlimited.
// Finished games do not count.
func WithMaxGames(n int) Option { return func(m *Manager) { m.maxGames = n } }

// WithRetention sets how long finished games stay in memory. After that only
// the stored snapshot remains, if a store is configured.
func WithRetention(d time.Duration) Option { return func(m *Manager) { m.retention = d } }

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

type Manager struct {
	mu        sync.RWMutex
	games     map[string]*entry
	live      int
	store     SnapshotStore
	archive   ResultArchive
	maxGames  int
	retention time.Duration
	now       func() time.Time
}

// entry serialises actions on one game.
type entry struct {
	mu       sync.Mutex
	game     *game.Game
	conv     *chesspresenter.Converter
	started  time.Time
	archived bool
	// counted while the game holds a live slot
	counted bool
	// unix nanos of the end of the game, zero while in progress
	finishedAt atomic.Int64
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{games: make(map[string]*entry), retention: DefaultRetention, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates a game, from req.FEN when given.
func (m *Manager) Start(ctx context.Context, req chessdto.StartGameRequest) (*chessdto.Snapshot, error) {
	white := strings.TrimSpace(req.White)
	if white == "" {
		white = "White"
	}
	black := strings.TrimSpace(req.Black)
	if black == "" {
		black = "Black"
	}
	opts := []game.Option{game.WithPlayers(white, black)}

	var g *game.Game
	if fen := strings.TrimSpace(req.FEN); fen != "" {
		b, err := board.ParseFEN(fen)
		if err != nil {
			return nil, err
		}
		if g, err = game.FromBoard(b, opts...); err != nil {
			return nil, err
		}
	} else {
		g = game.New(opts...)
	}

	now := m.now()
	e := &entry{game: g, conv: chesspresenter.NewConverter(), started: now, counted: true}
	m.mu.Lock()
	m.sweepLocked(now)
	if m.maxGames > 0 && m.live >= m.maxGames {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManyGames, m.maxGames)
	}
	m.games[g.ID()] = e
	m.live++
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	snap := m.publish(ctx, e)
	obslog.L().Info("session_start",
		zap.String("game_id", g.ID()),
		zap.String("white", white),
		zap.String("black", black),
		zap.String("fen", snap.FEN),
	)
	// a mated or stalemated setup is finished from the start
	m.finish(ctx, e, snap)
	return &snap, nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.games[strings.TrimSpace(id)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Get returns the current snapshot. A finished game that has left memory is
// served from the store.
func (m *Manager) Get(ctx context.Context, id string) (*chessdto.Snapshot, error) {
	e, err := m.lookup(id)
	if errors.Is(err, ErrNotFound) && m.store != nil {
		snap, lerr := m.store.Load(ctx, strings.TrimSpace(id))
		if lerr == nil {
			return snap, nil
		}
		if !errors.Is(lerr, snapshot.ErrNotFound) {
			obslog.L().Warn("snapshot_load_failed", zap.String("game_id", id), zap.Error(lerr))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := m.snapshot(e)
	return &snap, nil
}

// Submit parses one line of move text and applies it. A rejected input
// leaves the game unchanged.
func (m *Manager) Submit(ctx context.Context, id, input string) (*chessdto.MoveResult, error) {
	e, err := m.lookup(id)
	if err != nil {
		// only finished games leave memory
		if snap, gerr := m.Get(ctx, id); gerr == nil && snap.Finished() {
			return nil, fmt.Errorf("%w: %s", game.ErrGameOver, id)
		}
		return nil, err
	}
	action, err := movetext.Parse(input)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.game.Apply(action)
	if err != nil {
		return nil, err
	}
	snap := m.publish(ctx, e)
	m.finish(ctx, e, snap)

	out := &chessdto.MoveResult{
		Snapshot: &snap,
		Action:   action.Kind.String(),
		Finished: snap.Finished(),
	}
	if res.Moved {
		out.Move = res.Entry.Notation()
		if n := len(snap.MovesSAN); n > 0 {
			out.SAN = snap.MovesSAN[n-1]
		}
	}
	return out, nil
}

// PGN renders the game so far.
func (m *Manager) PGN(ctx context.Context, id string) (string, error) {
	e, err := m.lookup(id)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.pgn(e, m.snapshot(e)), nil
}

// Remove drops a game from the registry and deletes its stored snapshot.
// It reports whether the game was in memory.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Delete(ctx, id); err != nil {
			obslog.L().Warn("snapshot_delete_failed", zap.String("game_id", id), zap.Error(err))
		}
	}
	if !ok {
		return false
	}
	e.mu.Lock()
	m.release(e)
	e.mu.Unlock()
	obslog.L().Info("session_removed", zap.String("game_id", id))
	return true
}

// Len counts games held in memory, finished ones included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Live counts games in progress.
func (m *Manager) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

// release frees the live slot of e. Caller holds e.mu.
func (m *Manager) release(e *entry) {
	if !e.counted {
		return
	}
	e.counted = false
	m.mu.Lock()
	m.live--
	m.mu.Unlock()
}

// sweepLocked evicts finished games older than the retention. Caller holds m.mu.
func (m *Manager) sweepLocked(now time.Time) {
	for id, e := range m.games {
		end := e.finishedAt.Load()
		if end == 0 || now.Sub(time.Unix(0, end)) < m.retention {
			continue
		}
		delete(m.games, id)
		obslog.L().Debug("session_evicted", zap.String("game_id", id))
	}
}

func (m *Manager) snapshot(e *entry) chessdto.Snapshot {
	return e.conv.ToDTO(e.game.Snapshot(), e.game.StartFEN(), m.now())
}

// publish builds the snapshot and hands it to the store. Store failures are
// logged; the action has already been applied.
func (m *Manager) publish(ctx context.Context, e *entry) chessdto.Snapshot {
	snap := m.snapshot(e)
	if m.store != nil {
		if err := m.store.Save(ctx, snap); err != nil {
			obslog.L().Warn("snapshot_publish_failed", zap.String("game_id", snap.GameID), zap.Error(err))
		}
	}
	return snap
}

// finish archives a terminal game exactly once. Caller holds e.mu.
func (m *Manager) finish(ctx context.Context, e *entry, snap chessdto.Snapshot) {
	outcome := e.game.Outcome()
	if !outcome.Terminal() || e.archived {
		return
	}
	e.archived = true
	m.release(e)
	e.finishedAt.Store(m.now().UnixNano())
	obslog.L().Info("session_finished",
		zap.String("game_id", snap.GameID),
		zap.String("status", snap.Status),
		zap.String("winner", snap.Winner),
		zap.Int("ply", snap.Ply),
	)
	if m.archive == nil {
		return
	}
	rec := chesspresenter.Record(snap, outcome, m.pgn(e, snap), e.started)
	if err := m.archive.SaveResult(ctx, rec); err != nil {
		obslog.L().Warn("result_persist_failed", zap.String("game_id", snap.GameID), zap.Error(err))
	}
}

func (m *Manager) pgn(e *entry, snap chessdto.Snapshot) string {
	moves := snap.MovesSAN
	if len(moves) != len(snap.MovesUCI) {
		moves = snap.MovesUCI
	}
	return notation.PGN(notation.Header{
		Date:    e.started,
		White:   snap.White,
		Black:   snap.Black,
		ECO:     snap.ECO,
		Opening: snap.Opening,
		FEN:     e.game.StartFEN(),
	}, moves, e.game.Outcome())
}
