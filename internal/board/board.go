package board

import "strings"

// Board is a complete position. It is a plain value: copying it yields an
// independent position and == compares every field.
type Board struct {
	squares  [64]Piece
	turn     Color
	castling CastlingRights
	ep       Square
	halfmove int
	ply      int
	kings    [2]Square
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// New returns the standard starting position with White to move.
func New() *Board {
	b := Empty()
	for f := 0; f < 8; f++ {
		b.Place(NewSquare(f, 0), Piece{backRank[f], White})
		b.Place(NewSquare(f, 1), Piece{Pawn, White})
		b.Place(NewSquare(f, 6), Piece{Pawn, Black})
		b.Place(NewSquare(f, 7), Piece{backRank[f], Black})
	}
	b.castling = AllCastling
	return b
}

// Empty returns a board without pieces, White to move and no rights.
func Empty() *Board {
	return &Board{ep: NoSquare, kings: [2]Square{NoSquare, NoSquare}}
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Place puts p on sq, replacing whatever stood there. Placing NoPiece clears
// the square. Intended for position setup, not gameplay.
func (b *Board) Place(sq Square, p Piece) {
	if old := b.squares[sq]; old.Type == King && b.kings[old.Color] == sq {
		b.kings[old.Color] = NoSquare
	}
	b.squares[sq] = p
	if p.Type == King {
		b.kings[p.Color] = sq
	}
}

// PieceAt returns the occupant of sq and whether there is one.
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return NoPiece, false
	}
	p := b.squares[sq]
	return p, !p.IsNone()
}

// Turn is the side to move.
func (b *Board) Turn() Color { return b.turn }

// SetTurn overrides the side to move during setup.
func (b *Board) SetTurn(c Color) { b.turn = c }

// Castling returns the rights still held.
func (b *Board) Castling() CastlingRights { return b.castling }

// SetCastling overrides the rights during setup.
func (b *Board) SetCastling(r CastlingRights) { b.castling = r }

// EnPassant returns the square a pawn may capture onto this ply, or NoSquare.
func (b *Board) EnPassant() Square { return b.ep }

// Ply counts half-moves applied since the start of the game.
func (b *Board) Ply() int { return b.ply }

// KingSquare locates the king of color c.
func (b *Board) KingSquare(c Color) (Square, bool) {
	sq := b.kings[c]
	return sq, sq != NoSquare
}

// IsInCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (b *Board) IsInCheck(c Color) bool {
	sq, ok := b.KingSquare(c)
	if !ok {
		return false
	}
	return b.AttacksOn(sq, c.Opposite())
}

// Material sums piece values per color, indexed by Color.
func (b *Board) Material() [2]int {
	var m [2]int
	for _, p := range b.squares {
		m[p.Color] += p.Type.Value()
	}
	return m
}

// Grid returns ranks from the eighth down to the first, files a through h,
// each cell a FEN letter or '.'.
func (b *Board) Grid() [8]string {
	var out [8]string
	for r := 7; r >= 0; r-- {
		var sb strings.Builder
		for f := 0; f < 8; f++ {
			p := b.squares[NewSquare(f, r)]
			if p.IsNone() {
				sb.WriteByte('.')
				continue
			}
			sb.WriteByte(p.FENLetter())
		}
		out[7-r] = sb.String()
	}
	return out
}
