package logger

import "codeberg.org/mutker/coolctl/internal/errors"

// Logger is the handle passed to every component that logs.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	With(key, value string) Logger
}
