// Package archive persists finished games to Postgres.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/pkg/chessdto"
)

// Schema creates the results table. Migrate runs it.
const Schema = `CREATE TABLE IF NOT EXISTS chess_games (
    game_id       TEXT PRIMARY KEY,
    white_name    TEXT NOT NULL,
    black_name    TEXT NOT NULL,
    result        TEXT NOT NULL,
    result_method TEXT NOT NULL,
    moves_uci     JSONB NOT NULL,
    moves_san     JSONB NOT NULL,
    pgn           TEXT NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
)`

const upsertResult = `INSERT INTO chess_games (
    game_id, white_name, black_name,
    result, result_method, moves_uci, moves_san, pgn,
    started_at, ended_at, duration_ms
  ) VALUES (
    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
  ) ON CONFLICT (game_id) DO UPDATE SET
    white_name=EXCLUDED.white_name,
    black_name=EXCLUDED.black_name,
    result=EXCLUDED.result,
    result_method=EXCLUDED.result_method,
    moves_uci=EXCLUDED.moves_uci,
    moves_san=EXCLUDED.moves_san,
    pgn=EXCLUDED.pgn,
    started_at=EXCLUDED.started_at,
    ended_at=EXCLUDED.ended_at,
    duration_ms=EXCLUDED.duration_ms`

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Migrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// SaveResult upserts a finished game. A nil repository is a no-op.
func (r *Repository) SaveResult(ctx context.Context, rec chessdto.GameRecord) error {
	if r == nil || r.db == nil {
		return nil
	}
	args, err := resultArgs(rec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertResult, args...); err != nil {
		return fmt.Errorf("save result %s: %w", rec.GameID, err)
	}
	obslog.L().Info("result_persist",
		zap.String("game_id", rec.GameID),
		zap.String("result", rec.Result),
		zap.String("method", rec.Method),
		zap.Int("plies", len(rec.MovesUCI)),
	)
	return nil
}

func resultArgs(rec chessdto.GameRecord) ([]any, error) {
	if strings.TrimSpace(rec.GameID) == "" {
		return nil, fmt.Errorf("game record without id")
	}
	uci := rec.MovesUCI
	if uci == nil {
		uci = []string{}
	}
	san := rec.MovesSAN
	if san == nil {
		san = []string{}
	}
	uciRaw, err := json.Marshal(uci)
	if err != nil {
		return nil, err
	}
	sanRaw, err := json.Marshal(san)
	if err != nil {
		return nil, err
	}
	duration := rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	return []any{
		rec.GameID,
		rec.White, rec.Black,
		strings.TrimSpace(rec.Result), strings.ToLower(strings.TrimSpace(rec.Method)),
		string(uciRaw), string(sanRaw), rec.PGN,
		rec.StartedAt, rec.EndedAt, duration,
	}, nil
}
