package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN wraps every ParseFEN failure.
var ErrInvalidFEN = errors.New("invalid FEN")

func fenErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// ParseFEN reads a position. The halfmove and fullmove fields may be omitted.
func ParseFEN(s string) (*Board, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fenErr("expected 4 to 6 fields, got %d", len(fields))
	}
	b := Empty()

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fenErr("expected 8 ranks, got %d", len(ranks))
	}
	var kings [2]int
	for i, row := range ranks {
		r := 7 - i
		f := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				f += int(ch - '0')
				continue
			}
			t := PieceTypeFromLetter(ch)
			if t == NoPieceType {
				return nil, fenErr("unknown piece %q", ch)
			}
			if f > 7 {
				return nil, fenErr("rank %d overflows", r+1)
			}
			c := White
			if ch >= 'a' {
				c = Black
			}
			if t == King {
				kings[c]++
			}
			b.Place(NewSquare(f, r), Piece{t, c})
			f++
		}
		if f != 8 {
			return nil, fenErr("rank %d has %d files", r+1, f)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fenErr("need exactly one king per side")
	}

	switch fields[1] {
	case "w":
		b.turn = White
	case "b":
		b.turn = Black
	default:
		return nil, fenErr("bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				b.castling |= WhiteKingside
			case 'Q':
				b.castling |= WhiteQueenside
			case 'k':
				b.castling |= BlackKingside
			case 'q':
				b.castling |= BlackQueenside
			default:
				return nil, fenErr("bad castling field %q", fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fenErr("bad en-passant square %q", fields[3])
		}
		b.ep = sq
	}

	fullmove := 1
	if len(fields) >= 5 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fenErr("bad halfmove clock %q", fields[4])
		}
		b.halfmove = n
	}
	if len(fields) == 6 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fenErr("bad fullmove number %q", fields[5])
		}
		fullmove = n
	}
	b.ply = (fullmove - 1) * 2
	if b.turn == Black {
		b.ply++
	}
	return b, nil
}

// FEN renders the position.
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b.squares[NewSquare(f, r)]
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.FENLetter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if b.turn == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, b.castling, b.ep, b.halfmove, b.ply/2+1)
	return sb.String()
}
