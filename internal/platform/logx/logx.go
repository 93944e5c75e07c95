// internal/platform/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the short tag used in config files and flags.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// Options configures a logger built with NewWithOptions.
type Options struct {
	Level   Level
	Console io.Writer // defaults to os.Stderr; nil-safe
	NoColor bool

	// File, when set, receives JSON lines through a rotating writer.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type zeroLogger struct {
	mu sync.Mutex
	zl zerolog.Logger
}

func New() Logger {
	return NewWithOptions(Options{Level: ParseLevel(os.Getenv("URLSIFT_LOG_LEVEL"))})
}

// NewWithLevel creates a logger with a specific log level
func NewWithLevel(lvl Level) Logger {
	return NewWithOptions(Options{Level: lvl})
}

// NewSilent creates a logger that only outputs errors (silent mode for UI)
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewNop discards everything. Used by tests and library callers that don't log.
func NewNop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

// NewWithOptions builds a zerolog-backed logger writing human-readable lines to
// the console and, optionally, JSON lines to a rotating file.
func NewWithOptions(opts Options) Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    opts.NoColor,
		TimeFormat: "15:04:05",
	}}

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			LocalTime:  true,
		})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(toZerolog(opts.Level))

	return &zeroLogger{zl: zl}
}

func (s *zeroLogger) With(kv ...any) Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &zeroLogger{zl: s.zl.With().Fields(kvFields(kv...)).Logger()}
}

func (s *zeroLogger) SetLevel(lvl Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zl = s.zl.Level(toZerolog(lvl))
}

func (s *zeroLogger) Debug(msg string, kv ...any) { s.log(zerolog.DebugLevel, msg, kv...) }
func (s *zeroLogger) Info(msg string, kv ...any)  { s.log(zerolog.InfoLevel, msg, kv...) }
func (s *zeroLogger) Warn(msg string, kv ...any)  { s.log(zerolog.WarnLevel, msg, kv...) }
func (s *zeroLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	s.mu.Lock()
	zl := s.zl
	s.mu.Unlock()
	zl.Error().Err(err).Fields(kvFields(kv...)).Send()
}

func (s *zeroLogger) log(l zerolog.Level, msg string, kv ...any) {
	s.mu.Lock()
	zl := s.zl
	s.mu.Unlock()
	ev := zl.WithLevel(l)
	if ev == nil {
		return
	}
	ev.Fields(kvFields(kv...)).Msg(msg)
}

// kvFields turns loose key/value arguments into the list form zerolog accepts.
// Keys are stringified; a trailing key without value gets "(missing)".
func kvFields(kv ...any) []any {
	out := make([]any, 0, len(kv)+1)
	for i := 0; i < len(kv); i += 2 {
		var v any = "(missing)"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		out = append(out, fmt.Sprint(kv[i]), v)
	}
	return out
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps flag/env spellings to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
