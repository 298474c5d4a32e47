package chessdto

import "time"

// GameRecord is a finished game as archived.
type GameRecord struct {
	GameID    string
	White     string
	Black     string
	Result    string // 1-0, 0-1, 1/2-1/2
	Method    string
	MovesUCI  []string
	MovesSAN  []string
	PGN       string
	StartedAt time.Time
	EndedAt   time.Time
}
