package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Logger struct {
	debugEnabled bool
	out          *log.Logger
}

func NewLogger(debugEnabled bool) *Logger {
	return &Logger{debugEnabled: debugEnabled, out: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewLoggerTo writes to w instead of stderr. Tests pass io.Discard.
func NewLoggerTo(w io.Writer, debugEnabled bool) *Logger {
	return &Logger{debugEnabled: debugEnabled, out: log.New(w, "", log.LstdFlags)}
}

func (l *Logger) SetDebug(enabled bool) {
	l.debugEnabled = enabled
}

func (l *Logger) IsDebug() bool {
	return l.debugEnabled
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.debugEnabled {
		l.out.Printf("[DEBUG] "+format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.out.Printf("[INFO] "+format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.out.Printf("[WARN] "+format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.out.Printf("[ERROR] "+format, args...)
}

func (l *Logger) DebugSection(title string, content string) {
	if l.debugEnabled {
		l.out.Print(fmt.Sprintf("=== %s ===\n%s\n%s", title, content, strings.Repeat("=", len(title)+8)))
	}
}
