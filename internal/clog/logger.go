package clog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger handles leveled logging with support for a file and a console output.
type Logger struct {
	mu         sync.Mutex
	level      Level     // minimum level to log
	fileWriter io.Writer // receives JSON lines at or above level
	errWriter  io.Writer // receives human-readable lines, see serverMode
	serverMode bool      // when true, the console receives every level, not just warn/error

	file    zerolog.Logger
	console zerolog.Logger
}

// NewLogger creates a new logger with default settings.
// By default, warnings and errors go to stderr at Info level.
func NewLogger() *Logger {
	l := &Logger{
		level:     LevelInfo,
		errWriter: os.Stderr,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zerolog encoders after an output changes.
// Callers must hold l.mu.
func (l *Logger) rebuild() {
	l.file = zerolog.Nop()
	if l.fileWriter != nil {
		l.file = zerolog.New(l.fileWriter).With().Timestamp().Logger()
	}

	l.console = zerolog.Nop()
	if l.errWriter != nil {
		cw := zerolog.ConsoleWriter{
			Out:        l.errWriter,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
		l.console = zerolog.New(cw).With().Timestamp().Logger()
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum log level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetFileOutput sets the file writer for log output.
// Pass nil to disable file logging.
func (l *Logger) SetFileOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fileWriter = w
	l.rebuild()
}

// SetErrOutput sets the console writer.
// Pass nil to disable console logging.
func (l *Logger) SetErrOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errWriter = w
	l.rebuild()
}

// SetServerMode enables or disables server mode.
// In server mode every message at or above the level reaches the console,
// so a foreground `pddserve serve` shows its request log.
func (l *Logger) SetServerMode(server bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.serverMode = server
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// log writes a log message to the appropriate outputs.
func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)

	if l.fileWriter != nil {
		l.file.WithLevel(level.zerolog()).Msg(msg)
	}

	if l.errWriter != nil && (l.serverMode || level >= LevelWarn) {
		l.console.WithLevel(level.zerolog()).Msg(msg)
	}
}

// OpenLogFile opens a log file for writing, creating parent directories if needed.
// The file is opened in append mode.
func OpenLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}
