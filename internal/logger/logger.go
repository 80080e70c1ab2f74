package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/coolctl/internal/errors"
	"github.com/rs/zerolog"
)

type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zlog struct {
	log zerolog.Logger
}

// New builds a console logger on stdout. Timestamps are dropped when running
// under a service manager, which stamps lines itself.
func New(level Level, isService bool) Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	return NewWithWriter(output, level)
}

// NewWithWriter builds a logger writing JSON lines to w.
func NewWithWriter(w io.Writer, level Level) Logger {
	return &zlog{
		log: zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zlog{log: zerolog.Nop()}
}

// ParseLevel maps a textual level to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}

	return WarnLevel, errors.New().WithData(errors.ErrInvalidLogLevel, s)
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func (l *zlog) Debug() *LogEvent {
	return &LogEvent{l.log.Debug()}
}

func (l *zlog) Info() *LogEvent {
	return &LogEvent{l.log.Info()}
}

func (l *zlog) Warn() *LogEvent {
	return &LogEvent{l.log.Warn()}
}

func (l *zlog) Error() *LogEvent {
	return &LogEvent{l.log.Error()}
}

func (l *zlog) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

func (l *zlog) With(key, value string) Logger {
	return &zlog{log: l.log.With().Str(key, value).Logger()}
}
