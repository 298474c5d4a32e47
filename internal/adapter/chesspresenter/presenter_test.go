package chesspresenter

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/pkg/chessdto"
)

func play(t *testing.T, g *game.Game, lines ...string) error {
	t.Helper()
	var last error
	for _, line := range lines {
		a, err := movetext.Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		_, last = g.Apply(a)
	}
	return last
}

func snapshotOf(g *game.Game) *chessdto.Snapshot {
	s := ToDTO(g.Snapshot(), g.StartFEN(), time.Unix(0, 0).UTC())
	return &s
}

func TestToDTO(t *testing.T) {
	g := game.New(game.WithPlayers("Alice", "Bob"))
	if err := play(t, g, "e2-e4", "e7-e5", "g1-f3="); err != nil {
		t.Fatal(err)
	}
	s := snapshotOf(g)
	want := []chessdto.HistoryRow{{Number: 1, White: "e2-e4", Black: "e7-e5"}, {Number: 2, White: "g1-f3"}}
	if diff := cmp.Diff(want, s.History); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"e4", "e5", "Nf3"}, s.MovesSAN); diff != "" {
		t.Fatalf("san (-want +got):\n%s", diff)
	}
	if s.Turn != "black" || s.Status != chessdto.StatusOngoing || s.LastMove != "g1-f3" || s.DrawOffer != "white" {
		t.Fatalf("snapshot = %+v", s)
	}
	if len(s.Board) != 8 || s.Board[4] != "....P..." {
		t.Fatalf("board = %q", s.Board)
	}
}

func TestToDTOSetupHasNoSAN(t *testing.T) {
	g := game.New()
	s := ToDTO(g.Snapshot(), "4k3/8/8/8/8/8/8/4K3 w - - 0 1", time.Time{})
	if s.MovesSAN != nil {
		t.Fatalf("san = %v", s.MovesSAN)
	}
}

func TestCapturesAndMaterial(t *testing.T) {
	g := game.New(game.WithPlayers("Alice", "Bob"))
	if err := play(t, g, "e2-e4", "d7-d5", "e4-d5"); err != nil {
		t.Fatal(err)
	}
	s := snapshotOf(g)
	if diff := cmp.Diff([]string{"pawn"}, s.Captured.White); diff != "" {
		t.Fatalf("captured (-want +got):\n%s", diff)
	}
	f := NewFormatter(nil)
	got := f.Status(s)
	for _, want := range []string{"Move 2. Bob (black) to move.", "Material 39 : 38 (Alice +1)", "Captured by Alice: P"} {
		if !strings.Contains(got, want) {
			t.Errorf("status missing %q:\n%s", want, got)
		}
	}
}

func TestHistoryText(t *testing.T) {
	g := game.New()
	if err := play(t, g, "e2-e4", "e7-e5", "g1-f3"); err != nil {
		t.Fatal(err)
	}
	f := NewFormatter(nil)
	want := "Moves\n  1. e2-e4  e7-e5\n  2. g1-f3"
	if got := f.History(snapshotOf(g)); got != want {
		t.Fatalf("history:\n%s\nwant:\n%s", got, want)
	}
	if got := f.History(snapshotOf(game.New())); got != "No moves yet." {
		t.Fatalf("empty history = %q", got)
	}
}

func TestOutcomeText(t *testing.T) {
	g := game.New(game.WithPlayers("Alice", "Bob"))
	if err := play(t, g, "e2-e4", "#"); err != nil {
		t.Fatal(err)
	}
	f := NewFormatter(nil)
	if got := f.Status(snapshotOf(g)); got != "Bob resigns. Alice wins." {
		t.Fatalf("got %q", got)
	}

	g = game.New(game.WithPlayers("Alice", "Bob"))
	if err := play(t, g, "e2-e4", "e7-e5", "f1-c4", "b8-c6", "d1-h5", "g8-f6", "h5-f7"); err != nil {
		t.Fatal(err)
	}
	s := snapshotOf(g)
	if got := f.Outcome(s); got != "Checkmate. Alice wins." {
		t.Fatalf("got %q", got)
	}
	if s.LastMove != "h5-f7++" {
		t.Fatalf("last move = %q", s.LastMove)
	}
}

func TestErrorText(t *testing.T) {
	f := NewFormatter(nil)
	_, err := movetext.Parse("zz")
	if got := f.Error(err); !strings.HasPrefix(got, `Cannot read "zz".`) {
		t.Fatalf("malformed = %q", got)
	}
	g := game.New()
	err = play(t, g, "e2-e5")
	if got := f.Error(err); !strings.HasPrefix(got, "Illegal move: ") {
		t.Fatalf("illegal = %q", got)
	}
	if err := play(t, g, "#"); err != nil {
		t.Fatal(err)
	}
	err = play(t, g, "e7-e5")
	if got := f.Error(err); got != "The game is over." {
		t.Fatalf("game over = %q", got)
	}
	if f.Error(nil) != "" {
		t.Fatalf("nil error should render empty")
	}
}

func TestBoardText(t *testing.T) {
	f := NewFormatter(nil)
	got := f.Board(snapshotOf(game.New()))
	lines := strings.Split(got, "\n")
	if len(lines) != 9 || lines[0] != "8 r n b q k b n r" || lines[8] != "  a b c d e f g h" {
		t.Fatalf("board:\n%s", got)
	}
}

func TestPresenterShow(t *testing.T) {
	var buf bytes.Buffer
	var seen int
	p := NewPresenter(&buf, nil, func(ctx context.Context, s *chessdto.Snapshot) error {
		seen++
		return nil
	})
	if err := p.Show(context.Background(), snapshotOf(game.New())); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Fatalf("image sink called %d times", seen)
	}
	if !strings.Contains(buf.String(), "Move 1. White (white) to move.") {
		t.Fatalf("output:\n%s", buf.String())
	}
	buf.Reset()
	if err := p.Message("  "); err != nil || buf.Len() != 0 {
		t.Fatalf("blank message wrote %q", buf.String())
	}
	var nilP *Presenter
	if err := nilP.Show(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}

func TestConverterMatchesFreshConversion(t *testing.T) {
	g := game.New(game.WithPlayers("Alice", "Bob"))
	conv := NewConverter()
	at := time.Unix(0, 0).UTC()
	for _, line := range []string{"e2-e4", "c7-c5", "g1-f3", "d7-d6", "d2-d4", "c5-d4", "f3-d4", "g8-f6", "b1-c3", "a7-a6"} {
		if err := play(t, g, line); err != nil {
			t.Fatal(err)
		}
		got := conv.ToDTO(g.Snapshot(), g.StartFEN(), at)
		want := ToDTO(g.Snapshot(), g.StartFEN(), at)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("after %s (-fresh +incremental):\n%s", line, diff)
		}
	}
	if s := snapshotOf(g); s.ECO == "" || !strings.Contains(s.Opening, "Sicilian") {
		t.Fatalf("opening = %q %q", s.ECO, s.Opening)
	}
}
