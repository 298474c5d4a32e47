// Package notation bridges recorded games to standard algebraic notation and
// PGN through github.com/corentings/chess.
package notation

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
)

// Replay applies UCI moves from the standard start position.
func Replay(uci []string) (*nchess.Game, error) {
	g := nchess.NewGame()
	notation := nchess.UCINotation{}
	for i, mv := range uci {
		move, err := notation.Decode(g.Position(), strings.ToLower(strings.TrimSpace(mv)))
		if err != nil {
			return nil, fmt.Errorf("decode move %d %s: %w", i+1, mv, err)
		}
		if err := g.Move(move, nil); err != nil {
			return nil, fmt.Errorf("apply move %d %s: %w", i+1, mv, err)
		}
	}
	return g, nil
}

// SAN converts a UCI move list played from the standard start position.
func SAN(uci []string) ([]string, error) {
	g, err := Replay(uci)
	if err != nil {
		return nil, err
	}
	positions := g.Positions()
	moves := g.Moves()
	out := make([]string, len(moves))
	enc := nchess.AlgebraicNotation{}
	for i, mv := range moves {
		if i < len(positions) {
			out[i] = enc.Encode(positions[i], mv)
		}
	}
	return out, nil
}

// FromStart reports whether fen is the standard start position, ignoring the
// move counters. SAN is only available for games that began there.
func FromStart(fen string) bool {
	f := strings.Fields(fen)
	s := strings.Fields(board.StartFEN)
	if len(f) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if f[i] != s[i] {
			return false
		}
	}
	return true
}

// ResultToken is the PGN result for an outcome.
func ResultToken(o game.Outcome) string {
	switch {
	case o.IsDraw():
		return "1/2-1/2"
	case o.HasWinner() && o.Winner == board.White:
		return "1-0"
	case o.HasWinner():
		return "0-1"
	default:
		return "*"
	}
}

// Header carries the PGN tag pairs.
type Header struct {
	Event string
	Site  string
	Date  time.Time
	White string
	Black string
	// ECO and Opening are written when set.
	ECO     string
	Opening string
	// FEN is written with SetUp when the game did not start from the standard position.
	FEN string
}

// PGN renders a game. moves are SAN when available, otherwise any move text.
func PGN(h Header, moves []string, o game.Outcome) string {
	result := ResultToken(o)
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}
	event := h.Event
	if strings.TrimSpace(event) == "" {
		event = "termchess"
	}
	site := h.Site
	if strings.TrimSpace(site) == "" {
		site = "local"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Event \"%s\"]\n", sanitize(event))
	fmt.Fprintf(&b, "[Site \"%s\"]\n", sanitize(site))
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitize(h.White))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitize(h.Black))
	fmt.Fprintf(&b, "[Result \"%s\"]\n", result)
	if h.ECO != "" {
		fmt.Fprintf(&b, "[ECO \"%s\"]\n", sanitize(h.ECO))
	}
	if h.Opening != "" {
		fmt.Fprintf(&b, "[Opening \"%s\"]\n", sanitize(h.Opening))
	}
	if o.Terminal() {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", o.Kind)
	}
	firstBlack := false
	firstNumber := 1
	if h.FEN != "" && !FromStart(h.FEN) {
		fmt.Fprintf(&b, "[SetUp \"1\"]\n[FEN \"%s\"]\n", sanitize(h.FEN))
		if bd, err := board.ParseFEN(h.FEN); err == nil {
			firstBlack = bd.Turn() == board.Black
			firstNumber = bd.Ply()/2 + 1
		}
	}
	b.WriteByte('\n')

	// with a Black-to-move setup the first move is "N... move"
	i, n := 0, firstNumber
	if firstBlack && len(moves) > 0 {
		fmt.Fprintf(&b, "%d... %s ", n, strings.TrimSpace(moves[0]))
		i, n = 1, n+1
	}
	for ; i < len(moves); i += 2 {
		fmt.Fprintf(&b, "%d. %s", n, strings.TrimSpace(moves[i]))
		if i+1 < len(moves) {
			b.WriteByte(' ')
			b.WriteString(strings.TrimSpace(moves[i+1]))
		}
		b.WriteByte(' ')
		n++
	}
	b.WriteString(result)
	return b.String()
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
