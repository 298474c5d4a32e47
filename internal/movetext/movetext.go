// Package movetext turns one line of player input into a game.Action.
//
// Grammar:
//
//	line    = "=" | "#" | move [ "=" | "#" ]
//	move    = square "-" square [ "B" | "N" | "R" | "Q" ] | "O-O" | "O-O-O"
//	square  = "a".."h" "1".."8"
//
// A trailing "=" offers a draw with the move; a bare "=" accepts a standing
// offer. A trailing "#" resigns, whatever move precedes it.
package movetext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/rules"
)

// ErrMalformed wraps every parse failure.
var ErrMalformed = errors.New("malformed move text")

// SyntaxError locates a parse failure within the trimmed input.
type SyntaxError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %q at %d: %s", ErrMalformed, e.Input, e.Pos, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

// Parse reads one line. Surrounding whitespace is ignored.
func Parse(line string) (game.Action, error) {
	s := strings.TrimSpace(line)
	fail := func(pos int, reason string) (game.Action, error) {
		return game.Action{}, &SyntaxError{Input: s, Pos: pos, Reason: reason}
	}

	switch s {
	case "":
		return fail(0, "empty input")
	case "=":
		return game.AcceptDraw(), nil
	case "#":
		return game.Resign(), nil
	}

	body, suffix := s, byte(0)
	if last := s[len(s)-1]; last == '=' || last == '#' {
		body, suffix = s[:len(s)-1], last
	}

	req, pos, reason := parseMove(body)
	if reason != "" {
		return fail(pos, reason)
	}

	switch suffix {
	case '#':
		return game.Resign(), nil
	case '=':
		return game.OfferDraw(req), nil
	default:
		return game.Move(req), nil
	}
}

// parseMove returns the request, or the failing offset and a reason.
func parseMove(s string) (rules.Request, int, string) {
	switch s {
	case "O-O":
		return rules.CastleRequest(board.CastleShort), 0, ""
	case "O-O-O":
		return rules.CastleRequest(board.CastleLong), 0, ""
	}

	from, ok := square(s, 0)
	if !ok {
		return rules.Request{}, 0, "expected source square"
	}
	if len(s) < 3 || s[2] != '-' {
		return rules.Request{}, 2, "expected '-'"
	}
	to, ok := square(s, 3)
	if !ok {
		return rules.Request{}, 3, "expected target square"
	}
	req := rules.Request{From: from, To: to}
	switch len(s) {
	case 5:
		return req, 0, ""
	case 6:
		switch s[5] {
		case 'B', 'N', 'R', 'Q':
			req.Promotion = board.PieceTypeFromLetter(s[5])
			return req, 0, ""
		}
		return rules.Request{}, 5, "promotion must be B, N, R or Q"
	default:
		return rules.Request{}, 6, "unexpected trailing text"
	}
}

func square(s string, at int) (board.Square, bool) {
	if len(s) < at+2 {
		return board.NoSquare, false
	}
	f, r := s[at], s[at+1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return board.NoSquare, false
	}
	return board.NewSquare(int(f-'a'), int(r-'1')), true
}

// Format renders a in the grammar Parse accepts.
func Format(a game.Action) string {
	switch a.Kind {
	case game.ActionMove:
		return a.Move.String()
	case game.ActionOfferDraw:
		return a.Move.String() + "="
	case game.ActionAcceptDraw:
		return "="
	case game.ActionResign:
		return "#"
	default:
		return ""
	}
}
