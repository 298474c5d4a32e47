// Package rules decides legality. A move is legal when it is pseudo-legal and
// the mover's king is not attacked once it has been played; castling adds the
// in-check and crossed-square conditions.
package rules

import (
	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/movegen"
)

// Request is a structured move request as produced from move text. Either
// Castle is set, or From and To name the squares.
type Request struct {
	From      board.Square
	To        board.Square
	Promotion board.PieceType
	Castle    board.CastleKind
}

// CastleRequest builds a castling request.
func CastleRequest(kind board.CastleKind) Request {
	return Request{From: board.NoSquare, To: board.NoSquare, Castle: kind}
}

func (r Request) String() string {
	return board.Move{From: r.From, To: r.To, Promotion: r.Promotion, Castle: r.Castle}.String()
}

// LegalMoves lists the legal moves for the side to move. Each move carries
// its Check flag. b is not modified.
func LegalMoves(b *board.Board) []board.Move {
	work := b.Clone()
	var out []board.Move
	for m := range movegen.Pseudo(b) {
		if lm, ok := try(work, m); ok {
			out = append(out, lm)
		}
	}
	return out
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func HasLegalMoves(b *board.Board) bool {
	work := b.Clone()
	for m := range movegen.Pseudo(b) {
		if _, ok := try(work, m); ok {
			return true
		}
	}
	return false
}

// try simulates m on work and undoes it. It reports legality and returns m
// annotated with Check.
func try(work *board.Board, m board.Move) (board.Move, bool) {
	mover := work.Turn()
	if m.Castle != board.NoCastle && castleBlockedByAttack(work, mover, m.Castle) != "" {
		return m, false
	}
	u := work.Apply(m)
	defer work.Undo(u)
	if work.IsInCheck(mover) {
		return m, false
	}
	m.Check = work.IsInCheck(mover.Opposite())
	return m, true
}

// castleBlockedByAttack returns a reason when the king is in check or would
// cross or land on an attacked square, and "" otherwise.
func castleBlockedByAttack(b *board.Board, c board.Color, kind board.CastleKind) string {
	if b.IsInCheck(c) {
		return "king is in check"
	}
	for _, sq := range board.Castle(c, kind).Path {
		if b.AttacksOn(sq, c.Opposite()) {
			return "king would cross attacked square " + sq.String()
		}
	}
	return ""
}

// Assessment describes the side to move.
type Assessment struct {
	InCheck  bool
	HasMoves bool
}

// Checkmate is check with no legal reply.
func (a Assessment) Checkmate() bool { return a.InCheck && !a.HasMoves }

// Stalemate is no legal move while not in check.
func (a Assessment) Stalemate() bool { return !a.InCheck && !a.HasMoves }

// Assess classifies the position for the side to move.
func Assess(b *board.Board) Assessment {
	return Assessment{
		InCheck:  b.IsInCheck(b.Turn()),
		HasMoves: HasLegalMoves(b),
	}
}
