package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

type Logger struct {
	serviceName string
	fields      []string
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

var minLevel atomic.Int32

func init() {
	SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

// ParseLevel reads debug, info, warn, error or silent. Anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off":
		return LevelSilent
	}
	return LevelInfo
}

// SetLevel changes the minimum level of every logger. Safe for concurrent use.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

func currentLevel() Level {
	return Level(minLevel.Load())
}

// With returns a child logger that appends key=value pairs to every line.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	fields := append([]string{}, l.fields...)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	return &Logger{serviceName: l.serviceName, fields: fields}
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	out := fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
	if len(l.fields) > 0 {
		out += " | " + strings.Join(l.fields, " ")
	}
	return out
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if currentLevel() > LevelInfo {
		return
	}
	formatted := l.formatMessage("INFO", INFO_EMOJI, fmt.Sprintf(msg, args...))
	color.Cyan(formatted)
}

func (l *Logger) Success(msg string, args ...interface{}) {
	if currentLevel() > LevelInfo {
		return
	}
	formatted := l.formatMessage("SUCCESS", SUCCESS_EMOJI, fmt.Sprintf(msg, args...))
	color.Green(formatted)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if currentLevel() > LevelWarn {
		return
	}
	formatted := l.formatMessage("WARN", WARN_EMOJI, fmt.Sprintf(msg, args...))
	color.Yellow(formatted)
}

// Error logs msg followed by err and returns err wrapped with msg.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	if currentLevel() <= LevelError {
		line := fmt.Sprintf(msg, args...)
		if err != nil {
			line += ": " + err.Error()
		}
		color.Red(l.formatMessage("ERROR", ERROR_EMOJI, line))
	}
	if err == nil {
		return fmt.Errorf("%s", fmt.Sprintf(msg, args...))
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if currentLevel() > LevelDebug {
		return
	}
	formatted := l.formatMessage("DEBUG", DEBUG_EMOJI, fmt.Sprintf(msg, args...))
	color.Magenta(formatted)
}
