package chessdto

import (
	"errors"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/demo"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/rules"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

const (
	CodeIllegalMove        = "illegal_move"
	CodeMissingPromotion   = "missing_promotion"
	CodeInvalidCastle      = "invalid_castle"
	CodeMalformed          = "malformed"
	CodeGameOver           = "game_over"
	CodeNoDrawOffer        = "no_draw_offer"
	CodeMalformedDemoEntry = "malformed_demo_entry"
	CodeInvalidPosition    = "invalid_position"
	CodeNotFound           = "not_found"
	CodeTooManyGames       = "too_many_games"
	CodeInternal           = "internal"
)

// FromError classifies err. Rule and syntax errors are retryable: the caller
// re-requests input. A demo entry error is checked first since it also wraps
// the rule error that caused it.
func FromError(err error) DomainError {
	if err == nil {
		return DomainError{}
	}
	var de DomainError
	if errors.As(err, &de) {
		return de
	}
	msg := err.Error()
	switch {
	case errors.Is(err, demo.ErrMalformedEntry):
		return DomainError{Code: CodeMalformedDemoEntry, Message: msg}
	case errors.Is(err, rules.ErrMissingPromotion):
		return DomainError{Code: CodeMissingPromotion, Message: msg, Retryable: true}
	case errors.Is(err, rules.ErrInvalidCastle):
		return DomainError{Code: CodeInvalidCastle, Message: msg, Retryable: true}
	case errors.Is(err, rules.ErrIllegalMove):
		return DomainError{Code: CodeIllegalMove, Message: msg, Retryable: true}
	case errors.Is(err, movetext.ErrMalformed):
		return DomainError{Code: CodeMalformed, Message: msg, Retryable: true}
	case errors.Is(err, game.ErrNoDrawOffer):
		return DomainError{Code: CodeNoDrawOffer, Message: msg, Retryable: true}
	case errors.Is(err, board.ErrInvalidFEN), errors.Is(err, game.ErrInvalidPosition):
		return DomainError{Code: CodeInvalidPosition, Message: msg}
	case errors.Is(err, game.ErrGameOver):
		return DomainError{Code: CodeGameOver, Message: msg}
	default:
		return DomainError{Code: CodeInternal, Message: msg}
	}
}

// Detail returns the human reason carried by a rule or syntax error, or the
// full message otherwise.
func Detail(err error) string {
	var me *rules.MoveError
	if errors.As(err, &me) && me.Reason != "" {
		return me.Reason
	}
	var se *movetext.SyntaxError
	if errors.As(err, &se) {
		return se.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
