package rules

import (
	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/movegen"
)

// Validate resolves req against b to exactly one legal move. Errors are
// *MoveError values wrapping ErrIllegalMove, ErrMissingPromotion or
// ErrInvalidCastle. b is not modified.
func Validate(b *board.Board, req Request) (board.Move, error) {
	if req.Castle != board.NoCastle {
		return validateCastle(b, req)
	}
	if !req.From.Valid() || !req.To.Valid() {
		return board.Move{}, reject(ErrIllegalMove, req, "square off the board")
	}

	p, ok := b.PieceAt(req.From)
	if !ok {
		return board.Move{}, reject(ErrIllegalMove, req, "no piece on "+req.From.String())
	}
	if p.Color != b.Turn() {
		return board.Move{}, reject(ErrIllegalMove, req, "piece on "+req.From.String()+" belongs to "+p.Color.String())
	}

	// A two-square king step from its home square is a castling request.
	if p.Type == board.King {
		for _, kind := range [2]board.CastleKind{board.CastleShort, board.CastleLong} {
			g := board.Castle(p.Color, kind)
			if req.From == g.KingFrom && req.To == g.KingTo {
				if req.Promotion != board.NoPieceType {
					return board.Move{}, reject(ErrIllegalMove, req, "only pawns promote")
				}
				return validateCastle(b, Request{From: req.From, To: req.To, Castle: kind})
			}
		}
	}

	var candidates []board.Move
	for m := range movegen.From(b, req.From) {
		if m.To == req.To && m.Castle == board.NoCastle {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return board.Move{}, reject(ErrIllegalMove, req, p.Type.String()+" cannot reach "+req.To.String())
	}

	work := b.Clone()
	promoting := candidates[0].Promotion != board.NoPieceType
	if !promoting {
		if req.Promotion != board.NoPieceType {
			return board.Move{}, reject(ErrIllegalMove, req, "promotion only on the last rank")
		}
		m, ok := try(work, candidates[0])
		if !ok {
			return board.Move{}, reject(ErrIllegalMove, req, "own king would be in check")
		}
		return m, nil
	}

	// All promotion candidates share placement safety; test one first so a
	// pinned pawn reports the pin rather than the missing letter.
	if _, ok := try(work, candidates[0]); !ok {
		return board.Move{}, reject(ErrIllegalMove, req, "own king would be in check")
	}
	if req.Promotion == board.NoPieceType {
		return board.Move{}, reject(ErrMissingPromotion, req, "choose B, N, R or Q")
	}
	if !req.Promotion.CanPromoteTo() {
		return board.Move{}, reject(ErrIllegalMove, req, "cannot promote to "+req.Promotion.String())
	}
	for _, c := range candidates {
		if c.Promotion == req.Promotion {
			m, _ := try(work, c)
			return m, nil
		}
	}
	return board.Move{}, reject(ErrIllegalMove, req, "cannot promote to "+req.Promotion.String())
}

func validateCastle(b *board.Board, req Request) (board.Move, error) {
	c := b.Turn()
	kind := req.Castle
	g := board.Castle(c, kind)
	req.From, req.To = g.KingFrom, g.KingTo

	if !b.Castling().Has(board.Right(c, kind)) {
		return board.Move{}, reject(ErrInvalidCastle, req, "castling right lost")
	}
	if k, ok := b.PieceAt(g.KingFrom); !ok || k != (board.Piece{Type: board.King, Color: c}) {
		return board.Move{}, reject(ErrInvalidCastle, req, "king not on its home square")
	}
	if r, ok := b.PieceAt(g.RookFrom); !ok || r != (board.Piece{Type: board.Rook, Color: c}) {
		return board.Move{}, reject(ErrInvalidCastle, req, "rook missing from "+g.RookFrom.String())
	}
	for _, sq := range g.Between {
		if _, occupied := b.PieceAt(sq); occupied {
			return board.Move{}, reject(ErrInvalidCastle, req, "path blocked at "+sq.String())
		}
	}
	if reason := castleBlockedByAttack(b, c, kind); reason != "" {
		return board.Move{}, reject(ErrInvalidCastle, req, reason)
	}
	m, ok := try(b.Clone(), board.Move{
		Piece:  board.Piece{Type: board.King, Color: c},
		From:   g.KingFrom,
		To:     g.KingTo,
		Castle: kind,
	})
	if !ok {
		return board.Move{}, reject(ErrInvalidCastle, req, "king would be in check")
	}
	return m, nil
}
