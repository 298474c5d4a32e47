package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove covers moves outside the legal set: no piece, wrong
	// color, unreachable or blocked target, own king left attacked, or a
	// misplaced promotion letter.
	ErrIllegalMove = errors.New("illegal move")
	// ErrMissingPromotion is returned when a pawn reaches the last rank and
	// the request names no piece.
	ErrMissingPromotion = errors.New("missing promotion piece")
	// ErrInvalidCastle is returned when a castling request violates rights,
	// occupancy or attack conditions.
	ErrInvalidCastle = errors.New("invalid castle")
)

// MoveError carries the rejected request and a short reason. Kind is one of
// the package sentinels and is what errors.Is matches.
type MoveError struct {
	Kind    error
	Request Request
	Reason  string
}

func (e *MoveError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Request)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Request, e.Reason)
}

func (e *MoveError) Unwrap() error { return e.Kind }

func reject(kind error, req Request, reason string) error {
	return &MoveError{Kind: kind, Request: req, Reason: reason}
}
