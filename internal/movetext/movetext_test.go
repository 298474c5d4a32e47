package movetext

import (
	"errors"
	"testing"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		kind  game.ActionKind
		text  string
		promo board.PieceType
	}{
		{"e2-e4", game.ActionMove, "e2-e4", 0},
		{"  g1-f3 \n", game.ActionMove, "g1-f3", 0},
		{"e7-e8Q", game.ActionMove, "e7-e8Q", board.Queen},
		{"a2-a1N", game.ActionMove, "a2-a1N", board.Knight},
		{"O-O", game.ActionMove, "O-O", 0},
		{"O-O-O", game.ActionMove, "O-O-O", 0},
		{"d2-d4=", game.ActionOfferDraw, "d2-d4", 0},
		{"O-O=", game.ActionOfferDraw, "O-O", 0},
		{"e7-e8R=", game.ActionOfferDraw, "e7-e8R", board.Rook},
		{"=", game.ActionAcceptDraw, "", 0},
		{"#", game.ActionResign, "", 0},
		{"e2-e4#", game.ActionResign, "", 0},
		{"O-O-O#", game.ActionResign, "", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			a, err := Parse(c.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.in, err)
			}
			if a.Kind != c.kind {
				t.Fatalf("kind = %v, want %v", a.Kind, c.kind)
			}
			if c.text != "" && a.Move.String() != c.text {
				t.Fatalf("move = %s, want %s", a.Move, c.text)
			}
			if a.Move.Promotion != c.promo {
				t.Fatalf("promotion = %v, want %v", a.Move.Promotion, c.promo)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"   ", 0},
		{"e2e4", 2},
		{"e9-e4", 0},
		{"i2-e4", 0},
		{"e2-", 3},
		{"e2-e", 3},
		{"e2-e4K", 5},
		{"e7-e8q", 5},
		{"e2-e4Qx", 6},
		{"E2-E4", 0},
		{"O-O-O-O", 0},
		{"0-0", 0},
		{"==", 0},
		{"resign", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			_, err := Parse(c.in)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Parse(%q) err = %v, want ErrMalformed", c.in, err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("err %T is not a *SyntaxError", err)
			}
			if se.Pos != c.pos {
				t.Fatalf("pos = %d, want %d (%v)", se.Pos, c.pos, err)
			}
		})
	}
}

func TestFormatInvertsParse(t *testing.T) {
	for _, in := range []string{"e2-e4", "e7-e8Q", "O-O", "O-O-O=", "c7-c5=", "=", "#"} {
		a, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := Format(a); got != in {
			t.Errorf("Format(Parse(%q)) = %q", in, got)
		}
	}
}
