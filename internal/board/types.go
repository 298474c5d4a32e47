// Package board holds piece placement and the positional facts derived from it:
// attacks, king location, castling rights and the en-passant target.
package board

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is the kind of a piece, independent of its color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = [...]byte{' ', 'P', 'N', 'B', 'R', 'Q', 'K'}

// Letter returns the uppercase letter used in move text and FEN.
func (t PieceType) Letter() byte {
	if int(t) < len(pieceLetters) {
		return pieceLetters[t]
	}
	return '?'
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// CanPromoteTo reports whether a pawn may become this piece type.
func (t PieceType) CanPromoteTo() bool {
	return t == Knight || t == Bishop || t == Rook || t == Queen
}

// Value is the conventional material value; kings count zero.
func (t PieceType) Value() int {
	switch t {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// PieceTypeFromLetter maps an uppercase or lowercase piece letter to its type.
func PieceTypeFromLetter(ch byte) PieceType {
	switch ch {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	default:
		return NoPieceType
	}
}

// Piece is a colored piece. The zero value is NoPiece.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

// IsNone reports whether p is the empty marker.
func (p Piece) IsNone() bool { return p.Type == NoPieceType }

// FENLetter is uppercase for white, lowercase for black.
func (p Piece) FENLetter() byte {
	ch := p.Type.Letter()
	if p.Color == Black {
		ch += 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	if p.IsNone() {
		return "empty"
	}
	return p.Color.String() + " " + p.Type.String()
}

// Square is one of the 64 cells, indexed file + 8*rank with a1 = 0.
type Square int8

// NoSquare marks an absent square (no en-passant target, missing king).
const NoSquare Square = -1

// NewSquare builds a square from zero-based file and rank. Out of range
// coordinates yield NoSquare.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(file + 8*rank)
}

// File is 0 for the a-file through 7 for the h-file.
func (s Square) File() int { return int(s) % 8 }

// Rank is 0 for the first rank through 7 for the eighth.
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s lies on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

// Offset moves the square by file and rank deltas.
func (s Square) Offset(df, dr int) (Square, bool) {
	sq := NewSquare(s.File()+df, s.Rank()+dr)
	return sq, sq != NoSquare
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare reads a coordinate such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(int(f-'a'), int(r-'1')), nil
}

// CastlingRights is a set of the four independent castling flags.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// Has reports whether every flag in r is held.
func (c CastlingRights) Has(r CastlingRights) bool { return c&r == r }

// Right returns the flag for a side and castle kind.
func Right(c Color, kind CastleKind) CastlingRights {
	switch {
	case c == White && kind == CastleShort:
		return WhiteKingside
	case c == White && kind == CastleLong:
		return WhiteQueenside
	case c == Black && kind == CastleShort:
		return BlackKingside
	case c == Black && kind == CastleLong:
		return BlackQueenside
	}
	return NoCastling
}

// String renders the FEN castling field.
func (c CastlingRights) String() string {
	if c == NoCastling {
		return "-"
	}
	var b strings.Builder
	if c&WhiteKingside != 0 {
		b.WriteByte('K')
	}
	if c&WhiteQueenside != 0 {
		b.WriteByte('Q')
	}
	if c&BlackKingside != 0 {
		b.WriteByte('k')
	}
	if c&BlackQueenside != 0 {
		b.WriteByte('q')
	}
	return b.String()
}

// CastleKind distinguishes the two castling moves.
type CastleKind uint8

const (
	NoCastle CastleKind = iota
	CastleShort
	CastleLong
)

func (k CastleKind) String() string {
	switch k {
	case CastleShort:
		return "O-O"
	case CastleLong:
		return "O-O-O"
	default:
		return ""
	}
}
