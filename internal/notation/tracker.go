package notation

import (
	"fmt"
	"slices"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// ECOMaxPly bounds opening lookups; past it the last classification stands.
const ECOMaxPly = 40

// Tracker follows one game from the standard start and extends its SAN list
// and opening one move at a time. It is not safe for concurrent use.
type Tracker struct {
	game *nchess.Game
	uci  []string
	san  []string
	op   Opening
	opOK bool
	// ecoPly overrides ECOMaxPly when positive.
	ecoPly int
}

// Update brings the tracker to uci and returns the SAN list. A list that does
// not extend the tracked one is replayed from the start.
func (t *Tracker) Update(uci []string) ([]string, error) {
	if t.game == nil || len(uci) < len(t.uci) || !slices.Equal(uci[:len(t.uci)], t.uci) {
		t.reset()
	}
	dec := nchess.UCINotation{}
	enc := nchess.AlgebraicNotation{}
	for i := len(t.uci); i < len(uci); i++ {
		pos := t.game.Position()
		mv, err := dec.Decode(pos, strings.ToLower(strings.TrimSpace(uci[i])))
		if err != nil {
			t.game = nil
			return nil, fmt.Errorf("decode move %d %s: %w", i+1, uci[i], err)
		}
		if err := t.game.Move(mv, nil); err != nil {
			t.game = nil
			return nil, fmt.Errorf("apply move %d %s: %w", i+1, uci[i], err)
		}
		moves := t.game.Moves()
		t.uci = append(t.uci, uci[i])
		t.san = append(t.san, enc.Encode(pos, moves[len(moves)-1]))
		if len(t.uci) <= t.ecoLimit() {
			t.op, t.opOK = classifyMoves(t.game)
		}
	}
	return slices.Clone(t.san), nil
}

// Opening is the classification as of the last Update.
func (t *Tracker) Opening() (Opening, bool) { return t.op, t.opOK }

func (t *Tracker) ecoLimit() int {
	if t.ecoPly > 0 {
		return t.ecoPly
	}
	return ECOMaxPly
}

func (t *Tracker) reset() {
	*t = Tracker{game: nchess.NewGame(), ecoPly: t.ecoPly}
}
