package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger with the given level. If pretty is true,
// output is formatted for human readability. An unparsable level falls
// back to info.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput is like New but writes to the given sink. Useful in
// tests.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// Debug creates a debug-level event.
func (z *ZeroLogger) Debug() LogEvent { return &zeroEvent{e: z.zlog.Debug()} }

// Info creates an info-level event.
func (z *ZeroLogger) Info() LogEvent { return &zeroEvent{e: z.zlog.Info()} }

// Warn creates a warn-level event.
func (z *ZeroLogger) Warn() LogEvent { return &zeroEvent{e: z.zlog.Warn()} }

// Error creates an error-level event.
func (z *ZeroLogger) Error() LogEvent { return &zeroEvent{e: z.zlog.Error()} }

// Fatal creates a fatal-level event; finishing it exits the process.
func (z *ZeroLogger) Fatal() LogEvent { return &zeroEvent{e: z.zlog.Fatal()} }

// WithFields returns a logger carrying the given fields on every event.
func (z *ZeroLogger) WithFields(fields map[string]any) Logger {
	l := z.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &l}
}

// zeroEvent adapts zerolog.Event to LogEvent.
type zeroEvent struct {
	e *zerolog.Event
}

func (ev *zeroEvent) Msg(msg string) { ev.e.Msg(msg) }

func (ev *zeroEvent) Msgf(format string, args ...any) { ev.e.Msgf(format, args...) }

func (ev *zeroEvent) Err(err error) LogEvent {
	ev.e = ev.e.Err(err)
	return ev
}

func (ev *zeroEvent) Str(key, value string) LogEvent {
	ev.e = ev.e.Str(key, value)
	return ev
}

func (ev *zeroEvent) Int(key string, value int) LogEvent {
	ev.e = ev.e.Int(key, value)
	return ev
}

func (ev *zeroEvent) Int64(key string, value int64) LogEvent {
	ev.e = ev.e.Int64(key, value)
	return ev
}

func (ev *zeroEvent) Uint64(key string, value uint64) LogEvent {
	ev.e = ev.e.Uint64(key, value)
	return ev
}

func (ev *zeroEvent) Dur(key string, d time.Duration) LogEvent {
	ev.e = ev.e.Dur(key, d)
	return ev
}

func (ev *zeroEvent) Interface(key string, i any) LogEvent {
	ev.e = ev.e.Interface(key, i)
	return ev
}
