package snapshot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/park285/termchess/pkg/chessdto"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	s, err := Open(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func sample() chessdto.Snapshot {
	return chessdto.Snapshot{
		GameID:   "g1",
		FEN:      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		Turn:     "black",
		Ply:      1,
		Status:   chessdto.StatusOngoing,
		LastMove: "e2-e4",
		MovesUCI: []string{"e2e4"},
		History:  []chessdto.HistoryRow{{Number: 1, White: "e2-e4"}},
		Material: chessdto.MaterialScore{White: 39, Black: 39},
		White:    "Alice",
		Black:    "Bob",
	}
}

func TestSaveLoadDelete(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	want := sample()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("chess:game:g1"); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
}

func TestSaveRequiresID(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Save(context.Background(), chessdto.Snapshot{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSubscribeReceivesSaves(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ch, err := s.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := s.Save(ctx, sample()); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		if got.GameID != "g1" || got.LastMove != "e2-e4" {
			t.Fatalf("got %+v", got)
		}
	case <-ctx.Done():
		t.Fatalf("no snapshot published")
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	ctx := context.Background()
	if err := s.Save(ctx, sample()); err != nil {
		t.Fatalf("nil Save: %v", err)
	}
	if _, err := s.Load(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nil Load err = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestParseRedisURL(t *testing.T) {
	o, err := parseRedisURL("redis://:secret@localhost:6380/3")
	if err != nil {
		t.Fatal(err)
	}
	if o.Addr != "localhost:6380" || o.Password != "secret" || o.DB != 3 {
		t.Fatalf("opts = %+v", o)
	}
	for _, bad := range []string{"http://x", "redis://h/abc"} {
		if _, err := parseRedisURL(bad); err == nil {
			t.Errorf("parseRedisURL(%q) should fail", bad)
		}
	}
}
