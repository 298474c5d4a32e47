package chessdto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Diff is White minus Black.
func (m MaterialScore) Diff() int { return m.White - m.Black }

type CapturedPieces struct {
	White []string `json:"white,omitempty"`
	Black []string `json:"black,omitempty"`
}

// HistoryRow is one full move; Black is empty until the reply is played.
type HistoryRow struct {
	Number int    `json:"number"`
	White  string `json:"white,omitempty"`
	Black  string `json:"black,omitempty"`
}

// Snapshot is the wire and render form of a game after an applied action.
type Snapshot struct {
	GameID    string         `json:"game_id"`
	FEN       string         `json:"fen"`
	Board     []string       `json:"board"`
	Turn      string         `json:"turn"`
	Ply       int            `json:"ply"`
	Status    string         `json:"status"`
	Winner    string         `json:"winner,omitempty"`
	DrawOffer string         `json:"draw_offer,omitempty"`
	InCheck   bool           `json:"in_check"`
	LastMove  string         `json:"last_move,omitempty"`
	MovesUCI  []string       `json:"moves_uci"`
	MovesSAN  []string       `json:"moves_san,omitempty"`
	ECO       string         `json:"eco,omitempty"`
	Opening   string         `json:"opening,omitempty"`
	History   []HistoryRow   `json:"history"`
	Material  MaterialScore  `json:"material"`
	Captured  CapturedPieces `json:"captured"`
	White     string         `json:"white"`
	Black     string         `json:"black"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Finished reports a terminal status.
func (s *Snapshot) Finished() bool {
	return s != nil && s.Status != "" && s.Status != StatusOngoing
}

// Status values mirror the game outcome kinds.
const (
	StatusOngoing         = "ongoing"
	StatusCheckmate       = "checkmate"
	StatusStalemate       = "stalemate"
	StatusDrawByAgreement = "draw_by_agreement"
	StatusResignation     = "resignation"
)
