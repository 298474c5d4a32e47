package board

// Undo records everything Apply overwrites so the position can be restored
// exactly.
type Undo struct {
	move     Move
	moved    Piece
	captured Piece
	capSq    Square
	castling CastlingRights
	ep       Square
	halfmove int
	kings    [2]Square
}

// Move returns the move this record reverses.
func (u Undo) Move() Move { return u.move }

// CastleGeometry describes one castling move for one side.
type CastleGeometry struct {
	KingFrom, KingTo Square
	RookFrom, RookTo Square
	// Between lists the squares that must be empty.
	Between []Square
	// Path lists the squares the king crosses or lands on.
	Path []Square
}

// Castle returns the fixed squares of a castling move.
func Castle(c Color, kind CastleKind) CastleGeometry {
	r := 0
	if c == Black {
		r = 7
	}
	sq := func(f int) Square { return NewSquare(f, r) }
	if kind == CastleLong {
		return CastleGeometry{
			KingFrom: sq(4), KingTo: sq(2), RookFrom: sq(0), RookTo: sq(3),
			Between: []Square{sq(1), sq(2), sq(3)},
			Path:    []Square{sq(3), sq(2)},
		}
	}
	return CastleGeometry{
		KingFrom: sq(4), KingTo: sq(6), RookFrom: sq(7), RookTo: sq(5),
		Between: []Square{sq(5), sq(6)},
		Path:    []Square{sq(5), sq(6)},
	}
}

// rightsLost maps a square to the rights that vanish once anything moves from
// or onto it.
var rightsLost = func() [64]CastlingRights {
	var t [64]CastlingRights
	t[NewSquare(4, 0)] = WhiteKingside | WhiteQueenside
	t[NewSquare(7, 0)] = WhiteKingside
	t[NewSquare(0, 0)] = WhiteQueenside
	t[NewSquare(4, 7)] = BlackKingside | BlackQueenside
	t[NewSquare(7, 7)] = BlackKingside
	t[NewSquare(0, 7)] = BlackQueenside
	return t
}()

// Apply plays m, which must be pseudo-legal for the side to move, and returns
// the record that reverses it.
func (b *Board) Apply(m Move) Undo {
	moved := b.squares[m.From]
	u := Undo{
		move:     m,
		moved:    moved,
		capSq:    NoSquare,
		castling: b.castling,
		ep:       b.ep,
		halfmove: b.halfmove,
		kings:    b.kings,
	}

	capSq := m.To
	if m.EnPassant {
		capSq = NewSquare(m.To.File(), m.From.Rank())
	}
	if p := b.squares[capSq]; !p.IsNone() {
		u.captured = p
		u.capSq = capSq
		b.squares[capSq] = NoPiece
	}

	placed := moved
	if m.Promotion != NoPieceType {
		placed = Piece{m.Promotion, moved.Color}
	}
	b.squares[m.From] = NoPiece
	b.squares[m.To] = placed
	if moved.Type == King {
		b.kings[moved.Color] = m.To
	}
	if m.Castle != NoCastle {
		g := Castle(moved.Color, m.Castle)
		b.squares[g.RookTo] = b.squares[g.RookFrom]
		b.squares[g.RookFrom] = NoPiece
	}

	b.castling &^= rightsLost[m.From] | rightsLost[m.To]

	b.ep = NoSquare
	if moved.Type == Pawn && (m.To.Rank()-m.From.Rank() == 2 || m.From.Rank()-m.To.Rank() == 2) {
		b.ep = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	if moved.Type == Pawn || u.capSq != NoSquare {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	b.turn = b.turn.Opposite()
	b.ply++
	return u
}

// Undo reverses the Apply that produced u. Records must be undone in reverse
// order of application.
func (b *Board) Undo(u Undo) {
	m := u.move
	b.turn = b.turn.Opposite()
	b.ply--

	if m.Castle != NoCastle {
		g := Castle(u.moved.Color, m.Castle)
		b.squares[g.RookFrom] = b.squares[g.RookTo]
		b.squares[g.RookTo] = NoPiece
	}
	b.squares[m.To] = NoPiece
	b.squares[m.From] = u.moved
	if u.capSq != NoSquare {
		b.squares[u.capSq] = u.captured
	}

	b.castling = u.castling
	b.ep = u.ep
	b.halfmove = u.halfmove
	b.kings = u.kings
}
