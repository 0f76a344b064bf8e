package log

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger using zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewConsoleLogger creates an adapter writing human-readable lines to w.
func NewConsoleLogger(w io.Writer, level zerolog.Level) *ZerologAdapter {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &ZerologAdapter{logger: logger}
}

// NewZerologAdapter creates an adapter wrapping an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// With returns a child adapter that adds fields to every entry.
func (z *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{logger: ctx.Logger()}
}

// Debug logs a debug-level message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	emit(z.logger.Debug(), msg, fields)
}

// Info logs an info-level message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	emit(z.logger.Info(), msg, fields)
}

// Warn logs a warning-level message.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	emit(z.logger.Warn(), msg, fields)
}

// Error logs an error-level message.
func (z *ZerologAdapter) Error(msg string, fields ...Field) {
	emit(z.logger.Error(), msg, fields)
}

// Logger returns the underlying zerolog.Logger.
func (z *ZerologAdapter) Logger() zerolog.Logger {
	return z.logger
}

func emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		// level disabled
		return
	}
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

// addField adds a Field to a zerolog.Event.
func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case uint64:
		return event.Uint64(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.AnErr(f.Key, v)
	case fmt.Stringer:
		return event.Stringer(f.Key, v)
	default:
		return event.Interface(f.Key, v)
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// zerolog level. The empty string maps to info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

var _ Logger = (*ZerologAdapter)(nil)
