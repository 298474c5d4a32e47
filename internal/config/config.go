package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	WhiteName string
	BlackName string

	DemoFile    string
	MessagesDir string
	BoardPNG    string

	RedisURL    string
	DatabaseURL string

	HTTPAddr    string
	SnapshotTTL time.Duration
	MaxGames    int
	// Retention keeps finished games in server memory before only the
	// stored snapshot remains.
	Retention time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		WhiteName:   "White",
		BlackName:   "Black",
		HTTPAddr:    ":8080",
		SnapshotTTL: 24 * time.Hour,
		MaxGames:    200,
		Retention:   10 * time.Minute,
	}

	if v := strings.TrimSpace(os.Getenv("WHITE_NAME")); v != "" {
		cfg.WhiteName = v
	}
	if v := strings.TrimSpace(os.Getenv("BLACK_NAME")); v != "" {
		cfg.BlackName = v
	}

	cfg.DemoFile = strings.TrimSpace(os.Getenv("DEMO_FILE"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.BoardPNG = strings.TrimSpace(os.Getenv("BOARD_PNG"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	// seconds, or a Go duration such as 2h
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SnapshotTTL = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SnapshotTTL = d
		} else {
			return nil, errors.New("SNAPSHOT_TTL must be positive seconds or a duration")
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGames = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("FINISHED_RETENTION")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, errors.New("FINISHED_RETENTION must be a non-negative duration")
		}
		cfg.Retention = d
	}

	if cfg.WhiteName == cfg.BlackName {
		return nil, errors.New("WHITE_NAME and BLACK_NAME must differ")
	}

	return cfg, nil
}
