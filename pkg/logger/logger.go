// Package logger provides the leveled console logger used across qlfind.
//
// Messages are prefixed with [HH:MM:SS] timestamps and a level tag. Color is
// enabled automatically when writing to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
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

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages to a writer. It is safe for concurrent use.
type Logger struct {
	mu          sync.Mutex
	writer      io.Writer
	level       Level
	colorOutput bool
	now         func() time.Time
}

// New creates a Logger. A nil writer discards all output.
func New(writer io.Writer, level Level) *Logger {
	return &Logger{
		writer:      writer,
		level:       level,
		colorOutput: isTerminal(writer),
		now:         time.Now,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(nil, LevelError)
}

var defaultLogger = New(os.Stderr, LevelWarn)

// Default returns the process-wide stderr logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefaultLevel changes the level of the process-wide logger.
func SetDefaultLevel(level Level) {
	defaultLogger.SetLevel(level)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetLevel sets the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil || level < l.level {
		return
	}

	ts := l.now().Format("15:04:05")
	tag := strings.ToUpper(level.String())
	if l.colorOutput {
		tag = levelColor(level).Sprint(tag)
	}

	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.writer, "[%s] %s %s\n", ts, tag, msg)
}

func levelColor(level Level) *color.Color {
	switch level {
	case LevelDebug:
		return color.New(color.FgHiBlack)
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
