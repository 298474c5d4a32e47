package chessdto

import (
	"errors"
	"fmt"
	"testing"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/demo"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/rules"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"illegal", &rules.MoveError{Kind: rules.ErrIllegalMove, Reason: "blocked"}, CodeIllegalMove, true},
		{"promotion", &rules.MoveError{Kind: rules.ErrMissingPromotion}, CodeMissingPromotion, true},
		{"castle", &rules.MoveError{Kind: rules.ErrInvalidCastle}, CodeInvalidCastle, true},
		{"syntax", &movetext.SyntaxError{Input: "x", Reason: "expected source square"}, CodeMalformed, true},
		{"no offer", game.ErrNoDrawOffer, CodeNoDrawOffer, true},
		{"over", fmt.Errorf("%w: checkmate", game.ErrGameOver), CodeGameOver, false},
		{"demo", &demo.EntryError{Line: 3, Err: &rules.MoveError{Kind: rules.ErrIllegalMove}}, CodeMalformedDemoEntry, false},
		{"fen", fmt.Errorf("start: %w", board.ErrInvalidFEN), CodeInvalidPosition, false},
		{"position", game.ErrInvalidPosition, CodeInvalidPosition, false},
		{"domain passthrough", DomainError{Code: CodeNotFound}, CodeNotFound, false},
		{"other", errors.New("boom"), CodeInternal, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FromError(c.err)
			if got.Code != c.code || got.Retryable != c.retryable {
				t.Fatalf("FromError = %+v, want code %s retryable %v", got, c.code, c.retryable)
			}
		})
	}
	if (FromError(nil) != DomainError{}) {
		t.Fatalf("nil error should map to zero value")
	}
}

func TestDetail(t *testing.T) {
	err := fmt.Errorf("live: %w", &rules.MoveError{Kind: rules.ErrIllegalMove, Reason: "own king would be in check"})
	if got := Detail(err); got != "own king would be in check" {
		t.Fatalf("Detail = %q", got)
	}
	if got := Detail(&movetext.SyntaxError{Reason: "expected '-'"}); got != "expected '-'" {
		t.Fatalf("Detail = %q", got)
	}
	if got := Detail(errors.New("plain")); got != "plain" {
		t.Fatalf("Detail = %q", got)
	}
}

func TestSnapshotFinished(t *testing.T) {
	var s *Snapshot
	if s.Finished() {
		t.Fatalf("nil snapshot is not finished")
	}
	s = &Snapshot{Status: StatusOngoing}
	if s.Finished() {
		t.Fatalf("ongoing is not finished")
	}
	s.Status = StatusResignation
	if !s.Finished() {
		t.Fatalf("resignation is finished")
	}
	if d := (MaterialScore{White: 39, Black: 36}).Diff(); d != 3 {
		t.Fatalf("diff = %d", d)
	}
}
