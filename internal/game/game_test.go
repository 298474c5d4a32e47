package game_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/rules"
)

func action(t *testing.T, line string) game.Action {
	t.Helper()
	a, err := movetext.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return a
}

func play(t *testing.T, g *game.Game, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := g.Apply(action(t, line)); err != nil {
			t.Fatalf("Apply(%q): %v", line, err)
		}
	}
}

func fromFEN(t *testing.T, fen string, opts ...game.Option) *game.Game {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g, err := game.FromBoard(b, opts...)
	if err != nil {
		t.Fatalf("FromBoard: %v", err)
	}
	return g
}

// assertRejected applies line and checks that it fails with want and leaves
// the game untouched.
func assertRejected(t *testing.T, g *game.Game, line string, want error) {
	t.Helper()
	before := g.Snapshot()
	beforeBoard := g.Board()
	_, err := g.Apply(action(t, line))
	if !errors.Is(err, want) {
		t.Fatalf("Apply(%q) err = %v, want %v", line, err, want)
	}
	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Fatalf("rejected %q changed the snapshot (-before +after):\n%s", line, diff)
	}
	if *g.Board() != *beforeBoard {
		t.Fatalf("rejected %q changed the board", line)
	}
}

func TestScholarsMate(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4", "e7-e5", "f1-c4", "b8-c6", "d1-h5", "g8-f6")
	res, err := g.Apply(action(t, "h5-f7"))
	if err != nil {
		t.Fatalf("Qxf7: %v", err)
	}
	if !g.InCheck() || g.Turn() != board.Black {
		t.Fatalf("black should be in check after Qxf7")
	}
	want := game.Outcome{Kind: game.Checkmate, Winner: board.White}
	if g.Outcome() != want || res.Outcome != want {
		t.Fatalf("outcome = %v, want %v", g.Outcome(), want)
	}
	if !res.Entry.Mate || res.Entry.Notation() != "h5-f7++" {
		t.Fatalf("entry = %+v (%s)", res.Entry, res.Entry.Notation())
	}
	if len(g.LegalMoves()) != 0 {
		t.Fatalf("no moves expected after mate")
	}
	assertRejected(t, g, "a7-a6", game.ErrGameOver)
	assertRejected(t, g, "#", game.ErrGameOver)
	assertRejected(t, g, "=", game.ErrGameOver)
}

func TestStalemateSetup(t *testing.T) {
	g := fromFEN(t, "k7/8/KQ6/8/8/8/8/8 b - - 0 1")
	if got := g.Outcome(); got.Kind != game.Stalemate || !got.IsDraw() {
		t.Fatalf("outcome = %v, want stalemate", got)
	}
	if g.InCheck() {
		t.Fatalf("stalemated side is not in check")
	}
	if moves := rules.LegalMoves(g.Board()); len(moves) != 0 {
		t.Fatalf("legal moves = %v, want none", moves)
	}
	assertRejected(t, g, "a8-b8", game.ErrGameOver)
}

func TestStalemateReachedByMove(t *testing.T) {
	g := fromFEN(t, "k7/8/K7/8/8/8/8/1Q6 w - - 0 1")
	res, err := g.Apply(action(t, "b1-b6"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome.Kind != game.Stalemate {
		t.Fatalf("outcome = %v, want stalemate", res.Outcome)
	}
}

func TestCastlingThroughCheckRejected(t *testing.T) {
	g := fromFEN(t, "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1")
	assertRejected(t, g, "O-O", rules.ErrInvalidCastle)
	assertRejected(t, g, "e1-g1", rules.ErrInvalidCastle)
	play(t, g, "O-O-O")
	if got := g.Board().Castling(); got.Has(board.WhiteQueenside) || got.Has(board.WhiteKingside) {
		t.Fatalf("white rights survive castling: %s", got)
	}
}

func TestEnPassantWindow(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4", "a7-a6", "e4-e5", "d7-d5")
	before := *g.Board()
	res, err := g.Apply(action(t, "e5-d6"))
	if err != nil || !res.Move.EnPassant {
		t.Fatalf("immediate en passant: %+v %v", res.Move, err)
	}
	if _, ok := g.Board().PieceAt(board.NewSquare(3, 4)); ok {
		t.Fatalf("d5 pawn not removed")
	}

	g = fromFEN(t, before.FEN())
	play(t, g, "g1-f3", "a6-a5")
	assertRejected(t, g, "e5-d6", rules.ErrIllegalMove)
}

func TestPromotionRules(t *testing.T) {
	g := fromFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	assertRejected(t, g, "a7-a8", rules.ErrMissingPromotion)
	assertRejected(t, g, "e1-e2Q", rules.ErrIllegalMove)
	res, err := g.Apply(action(t, "a7-a8N"))
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := g.Board().PieceAt(board.NewSquare(0, 7)); p != (board.Piece{Type: board.Knight, Color: board.White}) {
		t.Fatalf("a8 holds %v", p)
	}
	if res.Move.Promotion != board.Knight {
		t.Fatalf("promotion = %v", res.Move.Promotion)
	}
}

func TestDrawOfferLapses(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4=")
	if off := g.DrawOffer(); !off.Pending || off.By != board.White {
		t.Fatalf("offer = %+v, want pending by white", off)
	}
	play(t, g, "e7-e5")
	if g.DrawOffer().Pending {
		t.Fatalf("offer should lapse after an unanswered reply")
	}
	assertRejected(t, g, "=", game.ErrNoDrawOffer)
	if g.Outcome().Terminal() {
		t.Fatalf("game ended without agreement")
	}
}

func TestDrawByAgreementOnReply(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4=")
	res, err := g.Apply(action(t, "e7-e5="))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome.Kind != game.DrawByAgreement || g.Outcome().Kind != game.DrawByAgreement {
		t.Fatalf("outcome = %v, want draw by agreement", g.Outcome())
	}
	if g.Ledger().Len() != 2 {
		t.Fatalf("ledger = %d entries, want 2", g.Ledger().Len())
	}
	assertRejected(t, g, "g1-f3", game.ErrGameOver)
}

func TestAcceptDraw(t *testing.T) {
	g := game.New()
	play(t, g, "d2-d4=")
	res, err := g.Apply(game.AcceptDraw())
	if err != nil {
		t.Fatal(err)
	}
	if res.Moved || g.Outcome().Kind != game.DrawByAgreement {
		t.Fatalf("accept: %+v outcome %v", res, g.Outcome())
	}
	if g.Ledger().Len() != 1 {
		t.Fatalf("accepting must not add a ply")
	}
}

func TestAcceptAfterLapseRejected(t *testing.T) {
	g := game.New()
	play(t, g, "d2-d4", "d7-d5=", "c2-c4")
	if g.DrawOffer().Pending {
		t.Fatalf("black's offer should have lapsed")
	}
	play(t, g, "e7-e6")
	assertRejected(t, g, "=", game.ErrNoDrawOffer)
}

func TestResignation(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4")
	res, err := g.Apply(action(t, "#"))
	if err != nil {
		t.Fatal(err)
	}
	want := game.Outcome{Kind: game.Resignation, Winner: board.White}
	if res.Outcome != want {
		t.Fatalf("outcome = %v, want %v", res.Outcome, want)
	}
	if g.Ledger().Len() != 1 {
		t.Fatalf("resigning must not add a ply")
	}
}

func TestResignWithIllegalTrailingMove(t *testing.T) {
	g := game.New()
	if _, err := g.Apply(action(t, "e2-e5#")); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if got := g.Outcome(); got.Kind != game.Resignation || got.Winner != board.Black {
		t.Fatalf("outcome = %v", got)
	}
}

func TestRejectedMoveLeavesStateUnchanged(t *testing.T) {
	g := game.New()
	play(t, g, "e2-e4=")
	assertRejected(t, g, "e7-e4", rules.ErrIllegalMove)
	assertRejected(t, g, "e2-e3", rules.ErrIllegalMove)
	if !g.DrawOffer().Pending {
		t.Fatalf("a rejected reply must not clear the offer")
	}
}

func TestCastlingRightsMonotonic(t *testing.T) {
	g := fromFEN(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	prev := g.Board().Castling()
	for _, line := range []string{"a1-b1", "h8-g8", "b1-a1", "g8-h8", "e1-d1", "e8-d8", "d1-e1"} {
		play(t, g, line)
		cur := g.Board().Castling()
		if cur&^prev != 0 {
			t.Fatalf("%s grew rights %s -> %s", line, prev, cur)
		}
		prev = cur
	}
	if prev != board.NoCastling {
		t.Fatalf("rights = %s, want none", prev)
	}
	assertRejected(t, g, "O-O", rules.ErrInvalidCastle)
}

func TestObserverAndSnapshot(t *testing.T) {
	var seen []game.Snapshot
	g := game.New(game.WithPlayers("Alice", ""), game.WithObserver(func(s game.Snapshot) {
		seen = append(seen, s)
	}))
	play(t, g, "e2-e4", "d7-d5", "e4-d5")
	if _, err := g.Apply(action(t, "e2-e4")); err == nil {
		t.Fatalf("replaying e2-e4 should fail")
	}
	if len(seen) != 3 {
		t.Fatalf("observer calls = %d, want 3", len(seen))
	}
	last := seen[2]
	if last.Players.White != "Alice" || last.Players.Black != "Black" {
		t.Fatalf("players = %+v", last.Players)
	}
	if last.LastMove == nil || last.LastMove.UCI() != "e4d5" {
		t.Fatalf("last move = %v", last.LastMove)
	}
	if diff := cmp.Diff([2][]board.PieceType{{board.Pawn}, nil}, last.Captured); diff != "" {
		t.Fatalf("captured (-want +got):\n%s", diff)
	}
	if last.Material[board.White] != 39 || last.Material[board.Black] != 38 {
		t.Fatalf("material = %v", last.Material)
	}
	if last.Ply != 3 || last.Turn != board.Black {
		t.Fatalf("ply %d turn %v", last.Ply, last.Turn)
	}
	if last.Grid[3] != "...P...." {
		t.Fatalf("rank 5 = %q", last.Grid[3])
	}
}

func TestReset(t *testing.T) {
	g := game.New()
	id := g.ID()
	play(t, g, "e2-e4", "#")
	g.Reset()
	if g.ID() == id {
		t.Fatalf("reset should assign a new id")
	}
	if g.Outcome().Terminal() || g.Ledger().Len() != 0 || g.Board().FEN() != board.StartFEN {
		t.Fatalf("reset did not restore the start")
	}
}

func TestFromBoardRejectsOpponentInCheck(t *testing.T) {
	b, err := board.ParseFEN("4k3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := game.FromBoard(b); !errors.Is(err, game.ErrInvalidPosition) {
		t.Fatalf("err = %v, want ErrInvalidPosition", err)
	}
}

func TestMatedSetupIsTerminal(t *testing.T) {
	g := fromFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	if got := g.Outcome(); got.Kind != game.Checkmate || got.Winner != board.White {
		t.Fatalf("outcome = %v", got)
	}
}
