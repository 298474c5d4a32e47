package chesspresenter

import (
	"time"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/ledger"
	"github.com/park285/termchess/internal/notation"
	"github.com/park285/termchess/pkg/chessdto"
)

// ToDTO converts a game snapshot into its wire form. SAN is filled only for
// games that began from the standard position. Callers converting the same
// game repeatedly should keep a Converter instead.
func ToDTO(s game.Snapshot, startFEN string, now time.Time) chessdto.Snapshot {
	return new(Converter).ToDTO(s, startFEN, now)
}

// Converter converts successive snapshots of one game, extending SAN and the
// opening name by the new moves only. It is not safe for concurrent use.
type Converter struct {
	notes notation.Tracker
}

func NewConverter() *Converter { return &Converter{} }

func (c *Converter) ToDTO(s game.Snapshot, startFEN string, now time.Time) chessdto.Snapshot {
	uci := make([]string, 0, len(s.History))
	for _, e := range s.History {
		uci = append(uci, e.Move.UCI())
	}
	out := chessdto.Snapshot{
		GameID:   s.ID,
		FEN:      s.FEN,
		Board:    append([]string(nil), s.Grid[:]...),
		Turn:     s.Turn.String(),
		Ply:      s.Ply,
		Status:   s.Outcome.Kind.String(),
		InCheck:  s.InCheck,
		MovesUCI: uci,
		History:  toHistoryRows(s.History),
		Material: chessdto.MaterialScore{White: s.Material[board.White], Black: s.Material[board.Black]},
		Captured: chessdto.CapturedPieces{
			White: pieceTokens(s.Captured[board.White]),
			Black: pieceTokens(s.Captured[board.Black]),
		},
		White:     s.Players.White,
		Black:     s.Players.Black,
		UpdatedAt: now,
	}
	if s.Outcome.HasWinner() {
		out.Winner = s.Outcome.Winner.String()
	}
	if s.DrawOffer.Pending {
		out.DrawOffer = s.DrawOffer.By.String()
	}
	if n := len(s.History); n > 0 {
		out.LastMove = s.History[n-1].Notation()
	}
	if startFEN == "" || notation.FromStart(startFEN) {
		if san, err := c.notes.Update(uci); err == nil {
			out.MovesSAN = san
			if op, ok := c.notes.Opening(); ok {
				out.ECO, out.Opening = op.Code, op.Title
			}
		}
	}
	return out
}

// toHistoryRows pairs entries into numbered full moves.
func toHistoryRows(entries []ledger.Entry) []chessdto.HistoryRow {
	var l ledger.Ledger
	for _, e := range entries {
		l.Append(e)
	}
	turns := l.Turns()
	rows := make([]chessdto.HistoryRow, 0, len(turns))
	for _, t := range turns {
		row := chessdto.HistoryRow{Number: t.Number}
		if t.White != nil {
			row.White = t.White.Notation()
		}
		if t.Black != nil {
			row.Black = t.Black.Notation()
		}
		rows = append(rows, row)
	}
	return rows
}

func pieceTokens(list []board.PieceType) []string {
	if len(list) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(list))
	for _, pt := range list {
		tokens = append(tokens, pt.String())
	}
	return tokens
}

// Record builds the archive row for a finished game.
func Record(snap chessdto.Snapshot, o game.Outcome, pgn string, started time.Time) chessdto.GameRecord {
	return chessdto.GameRecord{
		GameID:    snap.GameID,
		White:     snap.White,
		Black:     snap.Black,
		Result:    notation.ResultToken(o),
		Method:    o.Kind.String(),
		MovesUCI:  append([]string(nil), snap.MovesUCI...),
		MovesSAN:  append([]string(nil), snap.MovesSAN...),
		PGN:       pgn,
		StartedAt: started,
		EndedAt:   snap.UpdatedAt,
	}
}
