// Package snapshot keeps the latest game snapshot in Redis and publishes
// every update so a renderer in another process can follow the game.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/pkg/chessdto"
)

const (
	// Channel carries every saved snapshot as JSON.
	Channel    = "chess:snapshots"
	DefaultTTL = 24 * time.Hour
)

// ErrNotFound is returned by Load when no snapshot is stored for the id.
var ErrNotFound = errors.New("snapshot not found")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore wraps an existing client. A non-positive ttl uses DefaultTTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Open connects to REDIS_URL style addresses (redis://[:pass@]host:port/db).
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for snapshot store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, ttl), nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func gameKey(id string) string { return "chess:game:" + strings.TrimSpace(id) }

// Save stores snap under its game id and publishes it. A nil store is a no-op.
func (s *Store) Save(ctx context.Context, snap chessdto.Snapshot) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	if strings.TrimSpace(snap.GameID) == "" {
		return fmt.Errorf("snapshot without game id")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, gameKey(snap.GameID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	n, err := s.rdb.Publish(ctx, Channel, raw).Result()
	if err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	obslog.L().Debug("snapshot_publish",
		zap.String("game_id", snap.GameID),
		zap.Int("ply", snap.Ply),
		zap.String("status", snap.Status),
		zap.Int64("subscribers", n),
	)
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*chessdto.Snapshot, error) {
	if s == nil || s.rdb == nil {
		return nil, ErrNotFound
	}
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap chessdto.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, gameKey(id)).Err()
}

// Subscribe streams published snapshots until ctx is done. Messages that do
// not decode are logged and skipped.
func (s *Store) Subscribe(ctx context.Context) (<-chan chessdto.Snapshot, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("snapshot store not initialized")
	}
	sub := s.rdb.Subscribe(ctx, Channel)
	// 구독 확인 전에 Publish가 오면 메시지를 놓침
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	out := make(chan chessdto.Snapshot)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var snap chessdto.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					obslog.L().Warn("snapshot_decode_failed", zap.Error(err))
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
