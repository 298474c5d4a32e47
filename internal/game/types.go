package game

import (
	"errors"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/ledger"
	"github.com/park285/termchess/internal/rules"
)

var (
	// ErrGameOver rejects every action once the outcome is terminal.
	ErrGameOver = errors.New("game is over")
	// ErrNoDrawOffer rejects AcceptDraw when the opponent has no standing offer.
	ErrNoDrawOffer = errors.New("no draw offer to accept")
	// ErrInvalidPosition rejects setups where the side not to move is in check.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrUnknownAction rejects an Action whose kind is outside the closed set.
	ErrUnknownAction = errors.New("unknown action")
)

// OutcomeKind classifies how a game stands.
type OutcomeKind uint8

const (
	Ongoing OutcomeKind = iota
	Checkmate
	Stalemate
	DrawByAgreement
	Resignation
)

func (k OutcomeKind) String() string {
	switch k {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByAgreement:
		return "draw_by_agreement"
	case Resignation:
		return "resignation"
	default:
		return "unknown"
	}
}

// Outcome is the game result. Winner is meaningful only for Checkmate and
// Resignation.
type Outcome struct {
	Kind   OutcomeKind
	Winner board.Color
}

// Terminal reports whether the game has ended.
func (o Outcome) Terminal() bool { return o.Kind != Ongoing }

// IsDraw reports a drawn result.
func (o Outcome) IsDraw() bool { return o.Kind == Stalemate || o.Kind == DrawByAgreement }

// HasWinner reports a decisive result.
func (o Outcome) HasWinner() bool { return o.Kind == Checkmate || o.Kind == Resignation }

func (o Outcome) String() string {
	if o.HasWinner() {
		return o.Kind.String() + " (" + o.Winner.String() + " wins)"
	}
	return o.Kind.String()
}

// DrawOffer is the standing offer, if any.
type DrawOffer struct {
	Pending bool
	By      board.Color
}

// ActionKind enumerates what a player can submit.
type ActionKind uint8

const (
	ActionMove ActionKind = iota
	ActionOfferDraw
	ActionAcceptDraw
	ActionResign
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionOfferDraw:
		return "offer_draw"
	case ActionAcceptDraw:
		return "accept_draw"
	case ActionResign:
		return "resign"
	default:
		return "unknown"
	}
}

// Action is one player submission. Move is used by ActionMove and
// ActionOfferDraw only.
type Action struct {
	Kind ActionKind
	Move rules.Request
}

// Move plays req.
func Move(req rules.Request) Action { return Action{Kind: ActionMove, Move: req} }

// OfferDraw plays req and offers (or, as a reply to an offer, agrees to) a draw.
func OfferDraw(req rules.Request) Action { return Action{Kind: ActionOfferDraw, Move: req} }

// AcceptDraw accepts the opponent's standing offer without moving.
func AcceptDraw() Action { return Action{Kind: ActionAcceptDraw} }

// Resign concedes for the side to move.
func Resign() Action { return Action{Kind: ActionResign} }

// Result reports what a successful Apply did. Move and Entry are zero for
// AcceptDraw and Resign.
type Result struct {
	Action    Action
	Move      board.Move
	Entry     ledger.Entry
	Moved     bool
	Outcome   Outcome
	DrawOffer DrawOffer
}

// Players names the two sides.
type Players struct {
	White string
	Black string
}

// Name returns the player for c.
func (p Players) Name(c board.Color) string {
	if c == board.White {
		return p.White
	}
	return p.Black
}

// Snapshot is a read-only copy of the game taken after an Apply.
type Snapshot struct {
	ID        string
	FEN       string
	Grid      [8]string
	Turn      board.Color
	Ply       int
	Outcome   Outcome
	DrawOffer DrawOffer
	InCheck   bool
	History   []ledger.Entry
	LastMove  *board.Move
	Material  [2]int
	Captured  [2][]board.PieceType
	Players   Players
}
