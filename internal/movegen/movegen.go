// Package movegen enumerates pseudo-legal moves: moves that obey piece
// movement and occupancy but may leave the mover's king attacked.
package movegen

import (
	"iter"

	"github.com/park285/termchess/internal/board"
)

var promotionPieces = [4]board.PieceType{board.Queen, board.Rook, board.Bishop, board.Knight}

// Pseudo yields every pseudo-legal move for the side to move. The sequence is
// finite and may be ranged over any number of times; it reads the board
// lazily, so the board must not change while a range over it is in progress.
func Pseudo(b *board.Board) iter.Seq[board.Move] {
	return func(yield func(board.Move) bool) {
		for sq := board.Square(0); sq < 64; sq++ {
			if !fromSquare(b, sq, yield) {
				return
			}
		}
	}
}

// From yields the pseudo-legal moves of the piece on sq. Nothing is yielded
// for an empty square or a piece of the side not to move.
func From(b *board.Board, sq board.Square) iter.Seq[board.Move] {
	return func(yield func(board.Move) bool) {
		fromSquare(b, sq, yield)
	}
}

// Collect gathers Pseudo into a slice.
func Collect(b *board.Board) []board.Move {
	var out []board.Move
	for m := range Pseudo(b) {
		out = append(out, m)
	}
	return out
}

func fromSquare(b *board.Board, sq board.Square, yield func(board.Move) bool) bool {
	p, ok := b.PieceAt(sq)
	if !ok || p.Color != b.Turn() {
		return true
	}
	switch p.Type {
	case board.Pawn:
		return pawnMoves(b, sq, p, yield)
	case board.Knight:
		return stepMoves(b, sq, p, board.KnightJumps, yield)
	case board.Bishop:
		return slideMoves(b, sq, p, board.DiagonalRays[:], yield)
	case board.Rook:
		return slideMoves(b, sq, p, board.OrthogonalRays[:], yield)
	case board.Queen:
		return slideMoves(b, sq, p, board.OrthogonalRays[:], yield) &&
			slideMoves(b, sq, p, board.DiagonalRays[:], yield)
	case board.King:
		return stepMoves(b, sq, p, board.KingSteps, yield) && castleMoves(b, sq, p, yield)
	}
	return true
}

// target classifies a destination: empty, hostile (capturable) or friendly.
func target(b *board.Board, to board.Square, mover board.Color) (board.PieceType, bool) {
	q, occupied := b.PieceAt(to)
	if !occupied {
		return board.NoPieceType, true
	}
	if q.Color == mover {
		return board.NoPieceType, false
	}
	return q.Type, true
}

func stepMoves(b *board.Board, from board.Square, p board.Piece, deltas [8]board.Delta, yield func(board.Move) bool) bool {
	for _, d := range deltas {
		to, ok := from.Offset(d.DF, d.DR)
		if !ok {
			continue
		}
		captured, reachable := target(b, to, p.Color)
		if !reachable {
			continue
		}
		if !yield(board.Move{Piece: p, From: from, To: to, Captured: captured}) {
			return false
		}
	}
	return true
}

func slideMoves(b *board.Board, from board.Square, p board.Piece, rays []board.Delta, yield func(board.Move) bool) bool {
	for _, d := range rays {
		cur := from
		for {
			to, ok := cur.Offset(d.DF, d.DR)
			if !ok {
				break
			}
			captured, reachable := target(b, to, p.Color)
			if !reachable {
				break
			}
			if !yield(board.Move{Piece: p, From: from, To: to, Captured: captured}) {
				return false
			}
			if captured != board.NoPieceType {
				break
			}
			cur = to
		}
	}
	return true
}

func pawnMoves(b *board.Board, from board.Square, p board.Piece, yield func(board.Move) bool) bool {
	dir := board.PawnForward(p.Color)
	startRank, lastRank := 1, 7
	if p.Color == board.Black {
		startRank, lastRank = 6, 0
	}

	emit := func(m board.Move) bool {
		if m.To.Rank() != lastRank {
			return yield(m)
		}
		for _, promo := range promotionPieces {
			m.Promotion = promo
			if !yield(m) {
				return false
			}
		}
		return true
	}

	if one, ok := from.Offset(0, dir); ok {
		if _, occupied := b.PieceAt(one); !occupied {
			if !emit(board.Move{Piece: p, From: from, To: one}) {
				return false
			}
			if from.Rank() == startRank {
				two, _ := from.Offset(0, 2*dir)
				if _, occupied := b.PieceAt(two); !occupied {
					if !yield(board.Move{Piece: p, From: from, To: two}) {
						return false
					}
				}
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := from.Offset(df, dir)
		if !ok {
			continue
		}
		if q, occupied := b.PieceAt(to); occupied {
			if q.Color != p.Color {
				if !emit(board.Move{Piece: p, From: from, To: to, Captured: q.Type}) {
					return false
				}
			}
			continue
		}
		if to != b.EnPassant() {
			continue
		}
		bypass := board.NewSquare(to.File(), from.Rank())
		if q, occupied := b.PieceAt(bypass); occupied && q == (board.Piece{Type: board.Pawn, Color: p.Color.Opposite()}) {
			if !yield(board.Move{Piece: p, From: from, To: to, Captured: board.Pawn, EnPassant: true}) {
				return false
			}
		}
	}
	return true
}

// castleMoves yields castling candidates whose right is held, whose king and
// rook stand on their home squares and whose in-between squares are empty.
// Attack conditions are the validator's concern.
func castleMoves(b *board.Board, from board.Square, p board.Piece, yield func(board.Move) bool) bool {
	for _, kind := range [2]board.CastleKind{board.CastleShort, board.CastleLong} {
		if !CastleAvailable(b, p.Color, kind) {
			continue
		}
		g := board.Castle(p.Color, kind)
		if from != g.KingFrom {
			continue
		}
		if !yield(board.Move{Piece: p, From: g.KingFrom, To: g.KingTo, Castle: kind}) {
			return false
		}
	}
	return true
}

// CastleAvailable checks the static castling conditions for c: the right is
// held, king and rook are on their home squares and nothing stands between.
func CastleAvailable(b *board.Board, c board.Color, kind board.CastleKind) bool {
	if !b.Castling().Has(board.Right(c, kind)) {
		return false
	}
	g := board.Castle(c, kind)
	if k, ok := b.PieceAt(g.KingFrom); !ok || k != (board.Piece{Type: board.King, Color: c}) {
		return false
	}
	if r, ok := b.PieceAt(g.RookFrom); !ok || r != (board.Piece{Type: board.Rook, Color: c}) {
		return false
	}
	for _, sq := range g.Between {
		if _, occupied := b.PieceAt(sq); occupied {
			return false
		}
	}
	return true
}
