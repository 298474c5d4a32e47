package board

import "strings"

// Move is a fully resolved move. For castling, From and To are the king's
// squares; the rook's relocation is implied by Castle.
type Move struct {
	Piece     Piece
	From      Square
	To        Square
	Promotion PieceType
	Captured  PieceType
	Castle    CastleKind
	EnPassant bool
	// Check is set by the validator once the move is known to give check.
	Check bool
}

// IsCapture reports whether the move removes an enemy piece.
func (m Move) IsCapture() bool { return m.Captured != NoPieceType }

// String renders the move in the move-text grammar: "e2-e4", "e7-e8Q", "O-O".
func (m Move) String() string {
	if m.Castle != NoCastle {
		return m.Castle.String()
	}
	var b strings.Builder
	b.WriteString(m.From.String())
	b.WriteByte('-')
	b.WriteString(m.To.String())
	if m.Promotion != NoPieceType {
		b.WriteByte(m.Promotion.Letter())
	}
	return b.String()
}

// UCI renders the move in UCI coordinates: "e2e4", "e7e8q", "e1g1".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}

// SameAs compares the identifying fields and ignores annotations such as Check.
func (m Move) SameAs(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion && m.Castle == o.Castle
}
