package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBuildJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := Build(Options{Level: "info", Format: "json", Console: true, Stdout: &buf})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("game_apply", zap.String("move", "e2-e4"))
	_ = l.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "game_apply" || rec["move"] != "e2-e4" {
		t.Fatalf("record = %v", rec)
	}
}

func TestBuildFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chess.log")
	l, err := Build(Options{Level: "debug", Format: "legacy", ToFile: true, File: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("demo_advance")
	_ = l.Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "demo_advance") || !strings.Contains(string(data), " | ") {
		t.Fatalf("log file = %q", data)
	}
}

func TestNoSinksIsNop(t *testing.T) {
	l, err := Build(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected a Nop logger")
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	Set(zap.NewExample())
	if !L().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("example logger should be enabled")
	}
	Set(nil)
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("Set(nil) should install Nop")
	}
}
