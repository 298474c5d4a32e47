package notation

import (
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// Opening is an ECO classification.
type Opening struct {
	Code  string
	Title string
}

func (o Opening) String() string {
	return strings.TrimSpace(o.Code + " " + o.Title)
}

// Classify finds the most specific named opening for a move list played from
// the standard start position.
func Classify(uci []string) (Opening, bool) {
	if len(uci) == 0 {
		return Opening{}, false
	}
	g, err := Replay(uci)
	if err != nil {
		return Opening{}, false
	}
	return classifyMoves(g)
}

func classifyMoves(g *nchess.Game) (Opening, bool) {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	eco := ecoBook.Find(g.Moves())
	if eco == nil {
		return Opening{}, false
	}
	return Opening{Code: normalizeECO(eco.Code()), Title: strings.TrimSpace(eco.Title())}, true
}

func normalizeECO(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
