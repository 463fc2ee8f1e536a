package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
	closer io.Closer
}

func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level LogLevel) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return NewZerolog(consoleWriter, level)
}

// NewFileLogger writes JSON lines to path and a console copy to stderr
func NewFileLogger(level LogLevel, path string) (*ZerologAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	adapter := NewZerolog(zerolog.MultiLevelWriter(console, f), level)
	adapter.closer = f
	return adapter, nil
}

func (z *ZerologAdapter) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Warning(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Error(msg string, err error, fields map[string]interface{}) {
	z.logger.Error().Err(err).Fields(fields).Msg(msg)
}

// With returns a child logger that adds component to every entry. The child
// writes to the parent's output but does not own it: closing the child is a
// no-op and the parent must outlive it.
func (z *ZerologAdapter) With(component string) *ZerologAdapter {
	return &ZerologAdapter{logger: z.logger.With().Str("component", component).Logger()}
}

// Close releases the log file opened by NewFileLogger
func (z *ZerologAdapter) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
