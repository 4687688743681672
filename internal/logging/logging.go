// Package logging wraps zerolog with the key/value call style used across
// runeditor: log.Info("msg", "key", value, ...).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type Logger struct {
	zlog  zerolog.Logger
	file  *os.File
	level zerolog.Level
}

type Option func(*Logger) error

// WithConsole writes human-readable output to w. Colour is enabled only when
// w is a terminal.
func WithConsole(w io.Writer) Option {
	return func(l *Logger) error {
		l.zlog = l.zlog.Output(consoleWriter(w, !isTerminal(w)))
		return nil
	}
}

// WithLevel sets the minimum level.
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) error {
		l.level = level
		l.zlog = l.zlog.Level(level)
		return nil
	}
}

// WithFile mirrors output to path, creating parent directories.
func WithFile(path string) Option {
	return func(l *Logger) error {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		l.zlog = l.zlog.Output(zerolog.MultiLevelWriter(
			consoleWriter(os.Stderr, !isTerminal(os.Stderr)),
			consoleWriter(f, true),
		))
		return nil
	}
}

// New creates a logger writing to stderr at info level unless options say
// otherwise.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{
		zlog:  zerolog.New(consoleWriter(os.Stderr, !isTerminal(os.Stderr))).With().Timestamp().Logger(),
		level: zerolog.InfoLevel,
	}
	l.zlog = l.zlog.Level(l.level)

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("failed to apply logger option: %w", err)
		}
	}
	return l, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), level: zerolog.Disabled}
}

// ParseLevel maps config level names to zerolog levels.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// With returns a child logger that adds the given fields to every event.
func (l *Logger) With(fields ...interface{}) *Logger {
	ctx := l.zlog.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &Logger{zlog: ctx.Logger(), file: l.file, level: l.level}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	logFields(l.zlog.Debug(), fields...).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	logFields(l.zlog.Info(), fields...).Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	logFields(l.zlog.Warn(), fields...).Msg(msg)
}

// Error logs msg with err attached.
func (l *Logger) Error(msg string, err error, fields ...interface{}) {
	event := l.zlog.Error()
	if err != nil {
		event = event.Err(err)
	}
	logFields(event, fields...).Msg(msg)
}

// logFields adds key/value pairs; a dangling key or a non-string key is
// dropped.
func logFields(event *zerolog.Event, fields ...interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	return event
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
