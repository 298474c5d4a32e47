// Package game owns one game's mutable state and is the only place it
// changes. Every transition goes through Apply; a rejected Apply leaves the
// game exactly as it was.
package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/ledger"
	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/rules"
)

// Option configures a Game.
type Option func(*Game)

// WithLogger overrides the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPlayers names the sides. Blank names keep the defaults.
func WithPlayers(white, black string) Option {
	return func(g *Game) {
		if white != "" {
			g.players.White = white
		}
		if black != "" {
			g.players.Black = black
		}
	}
}

// WithObserver registers fn to receive a snapshot after every successful Apply.
func WithObserver(fn func(Snapshot)) Option {
	return func(g *Game) {
		if fn != nil {
			g.observers = append(g.observers, fn)
		}
	}
}

// Game is a single game state machine. It is not safe for concurrent use.
type Game struct {
	id        string
	start     board.Board
	board     *board.Board
	history   *ledger.Ledger
	outcome   Outcome
	offer     DrawOffer
	players   Players
	logger    *zap.Logger
	observers []func(Snapshot)
}

// New starts a game from the standard position.
func New(opts ...Option) *Game {
	g, _ := FromBoard(board.New(), opts...)
	return g
}

// FromBoard starts a game from a setup position. The position is classified
// at once, so a mated or stalemated setup is terminal from the start.
func FromBoard(b *board.Board, opts ...Option) (*Game, error) {
	if b.IsInCheck(b.Turn().Opposite()) {
		return nil, fmt.Errorf("%w: %s to move but %s is in check", ErrInvalidPosition, b.Turn(), b.Turn().Opposite())
	}
	g := &Game{
		start:   *b,
		players: Players{White: "White", Black: "Black"},
		logger:  obslog.L(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reset()
	return g, nil
}

// Reset discards the current game and starts again from the original setup
// under a new id.
func (g *Game) Reset() {
	g.reset()
	g.logger.Info("game_reset", zap.String("game_id", g.id), zap.String("fen", g.board.FEN()))
}

func (g *Game) reset() {
	g.id = uuid.NewString()
	b := g.start
	g.board = &b
	g.history = &ledger.Ledger{}
	g.offer = DrawOffer{}
	g.outcome = classify(rules.Assess(g.board), g.board.Turn())
}

// classify maps an assessment of the side to move onto an outcome.
func classify(a rules.Assessment, toMove board.Color) Outcome {
	switch {
	case a.Checkmate():
		return Outcome{Kind: Checkmate, Winner: toMove.Opposite()}
	case a.Stalemate():
		return Outcome{Kind: Stalemate}
	default:
		return Outcome{Kind: Ongoing}
	}
}

// Apply performs one action. On error the game is unchanged: rule errors
// from the rules package are recoverable, ErrNoDrawOffer is recoverable and
// ErrGameOver means the session should stop sending actions.
func (g *Game) Apply(a Action) (Result, error) {
	if g.outcome.Terminal() {
		err := fmt.Errorf("%w: %s", ErrGameOver, g.outcome)
		g.rejected(a, err)
		return Result{}, err
	}

	var (
		res Result
		err error
	)
	switch a.Kind {
	case ActionMove, ActionOfferDraw:
		res, err = g.applyMove(a)
	case ActionAcceptDraw:
		res, err = g.acceptDraw(a)
	case ActionResign:
		res = g.resign(a)
	default:
		err = fmt.Errorf("%w: kind %d", ErrUnknownAction, a.Kind)
	}
	if err != nil {
		g.rejected(a, err)
		return Result{}, err
	}

	if g.outcome.Terminal() {
		g.logger.Info("game_over",
			zap.String("game_id", g.id),
			zap.String("outcome", g.outcome.Kind.String()),
			zap.String("winner", g.winnerName()),
			zap.Int("plies", g.history.Len()),
		)
	}
	g.notify()
	return res, nil
}

func (g *Game) applyMove(a Action) (Result, error) {
	mover := g.board.Turn()
	m, err := rules.Validate(g.board, a.Move)
	if err != nil {
		return Result{}, err
	}

	g.board.Apply(m)
	assessment := rules.Assess(g.board)
	offering := a.Kind == ActionOfferDraw
	answered := g.offer.Pending && g.offer.By == mover.Opposite()

	switch outcome := classify(assessment, g.board.Turn()); {
	case outcome.Terminal():
		g.outcome = outcome
		g.offer = DrawOffer{}
	case offering && answered:
		g.outcome = Outcome{Kind: DrawByAgreement}
		g.offer = DrawOffer{}
	case offering:
		g.offer = DrawOffer{Pending: true, By: mover}
	default:
		// unanswered offer lapses
		g.offer = DrawOffer{}
	}

	entry := ledger.Entry{
		Ply:       g.board.Ply(),
		Color:     mover,
		Move:      m,
		DrawOffer: offering,
		Check:     assessment.InCheck,
		Mate:      assessment.Checkmate(),
	}
	g.history.Append(entry)

	g.logger.Info("game_apply",
		zap.String("game_id", g.id),
		zap.String("action", a.Kind.String()),
		zap.String("color", mover.String()),
		zap.String("move", entry.Notation()),
		zap.String("uci", m.UCI()),
		zap.Bool("draw_offer", g.offer.Pending),
		zap.String("outcome", g.outcome.Kind.String()),
	)
	return Result{Action: a, Move: m, Entry: entry, Moved: true, Outcome: g.outcome, DrawOffer: g.offer}, nil
}

func (g *Game) acceptDraw(a Action) (Result, error) {
	if !g.offer.Pending || g.offer.By != g.board.Turn().Opposite() {
		return Result{}, ErrNoDrawOffer
	}
	g.outcome = Outcome{Kind: DrawByAgreement}
	g.offer = DrawOffer{}
	return Result{Action: a, Outcome: g.outcome}, nil
}

func (g *Game) resign(a Action) Result {
	g.outcome = Outcome{Kind: Resignation, Winner: g.board.Turn().Opposite()}
	g.offer = DrawOffer{}
	return Result{Action: a, Outcome: g.outcome}
}

func (g *Game) rejected(a Action, err error) {
	g.logger.Info("game_rejected",
		zap.String("game_id", g.id),
		zap.String("action", a.Kind.String()),
		zap.String("request", a.Move.String()),
		zap.Error(err),
	)
}

func (g *Game) winnerName() string {
	if !g.outcome.HasWinner() {
		return ""
	}
	return g.players.Name(g.outcome.Winner)
}

func (g *Game) notify() {
	if len(g.observers) == 0 {
		return
	}
	s := g.Snapshot()
	for _, fn := range g.observers {
		fn(s)
	}
}

// ID identifies this game; Reset assigns a new one.
func (g *Game) ID() string { return g.id }

// Board returns a copy of the current position.
func (g *Game) Board() *board.Board { return g.board.Clone() }

// Turn is the side to move.
func (g *Game) Turn() board.Color { return g.board.Turn() }

// Outcome is the current result.
func (g *Game) Outcome() Outcome { return g.outcome }

// DrawOffer is the standing offer.
func (g *Game) DrawOffer() DrawOffer { return g.offer }

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool { return g.board.IsInCheck(g.board.Turn()) }

// Ledger returns a copy of the move history.
func (g *Game) Ledger() *ledger.Ledger { return g.history.Clone() }

// Players returns the side names.
func (g *Game) Players() Players { return g.players }

// StartFEN is the position the game began from.
func (g *Game) StartFEN() string {
	b := g.start
	return b.FEN()
}

// Material sums piece values per color.
func (g *Game) Material() [2]int { return g.board.Material() }

// LegalMoves lists the moves available to the side to move; none once the
// game is over.
func (g *Game) LegalMoves() []board.Move {
	if g.outcome.Terminal() {
		return nil
	}
	return rules.LegalMoves(g.board)
}

// Snapshot copies everything a renderer needs.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:        g.id,
		FEN:       g.board.FEN(),
		Grid:      g.board.Grid(),
		Turn:      g.board.Turn(),
		Ply:       g.history.Len(),
		Outcome:   g.outcome,
		DrawOffer: g.offer,
		InCheck:   g.InCheck(),
		History:   g.history.Entries(),
		Material:  g.board.Material(),
		Captured:  g.history.Captured(),
		Players:   g.players,
	}
	if last, ok := g.history.Last(); ok {
		m := last.Move
		s.LastMove = &m
	}
	return s
}
