package obslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 전역 로거. Init 전에는 Nop.
var (
	globalLogger *zap.Logger = zap.NewNop()
)

// L는 전역 로거를 반환.
func L() *zap.Logger { return globalLogger }

// Set replaces the global logger; nil restores the Nop logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLogger = l
}

// Options selects sinks and encoding.
type Options struct {
	Level   string
	Format  string // legacy | json | console
	Console bool
	ToFile  bool
	File    string
	Caller  bool
	// Stdout overrides the console sink, os.Stdout when nil.
	Stdout io.Writer
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_TO_CONSOLE, LOG_TO_FILE,
// LOG_FILE and LOG_CALLER.
func OptionsFromEnv(defaultFile string) Options {
	return Options{
		Level:   getenvDefault("LOG_LEVEL", "info"),
		Format:  getenvDefault("LOG_FORMAT", "legacy"),
		Console: strings.EqualFold(getenvDefault("LOG_TO_CONSOLE", "true"), "true"),
		ToFile:  strings.EqualFold(getenvDefault("LOG_TO_FILE", "false"), "true"),
		File:    strings.TrimSpace(getenvDefault("LOG_FILE", defaultFile)),
		Caller:  strings.EqualFold(getenvDefault("LOG_CALLER", "false"), "true"),
	}
}

// InitFromEnv는 환경설정으로 zap 로거를 초기화.
func InitFromEnv() error {
	return Init(OptionsFromEnv(filepath.Join("logs", "chess.log")))
}

// Init builds the global logger from o.
func Init(o Options) error {
	logger, err := Build(o)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// Build constructs a logger without installing it.
func Build(o Options) (*zap.Logger, error) {
	level := parseLevel(o.Level)
	format := strings.ToLower(strings.TrimSpace(o.Format))
	if format != "legacy" && format != "json" && format != "console" {
		format = "legacy"
	}

	var cores []zapcore.Core
	if o.Console {
		out := o.Stdout
		if out == nil {
			out = os.Stdout
		}
		cores = append(cores, zapcore.NewCore(encoderFor(format), zapcore.AddSync(out), level))
	}

	if o.ToFile {
		path := o.File
		if path == "" {
			path = filepath.Join("logs", "chess.log")
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoderFor(format), zapcore.AddSync(f), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if o.Caller || format == "legacy" {
		logger = logger.WithOptions(zap.AddCaller())
	}
	logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, nil
}

func encoderFor(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig(false))
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// 인코더 설정들
func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
