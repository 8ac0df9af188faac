// Package telemetry is movesmith's stderr logging sink: one tagged
// line per call, no buffering, no third-party structured-logging
// dependency (none appears anywhere in the retrieval pack).
package telemetry

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Level is the severity tag prefixed to every emitted line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger serializes writes to a single sink so concurrent callers never
// interleave partial lines (cmd/movesmith check itself processes corpus
// files one at a time).
type Logger struct {
	mu     sync.Mutex
	out    *os.File
	debug  bool
	prefix string
}

// Default is the package-level logger every subcommand writes through.
var Default = New(os.Stderr, "movesmith")

// New builds a Logger writing to out, tagged with prefix (the binary
// or subcommand name).
func New(out *os.File, prefix string) *Logger {
	return &Logger{out: out, prefix: prefix}
}

// SetDebug toggles whether Debugf lines are actually emitted.
func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = on
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level == LevelDebug && !l.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[%s] %s %s: %s\n", level, time.Now().Format(time.RFC3339), l.prefix, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

// Progress emits the CLI's "[i/N] doing X" phase-tag convention over
// the same sink as the leveled log lines, so generate/check progress
// and error output interleave in one readable stream.
func (l *Logger) Progress(i, n int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%d/%d] %s\n", i, n, msg)
}

func Debugf(format string, args ...any)          { Default.Debugf(format, args...) }
func Infof(format string, args ...any)           { Default.Infof(format, args...) }
func Warnf(format string, args ...any)           { Default.Warnf(format, args...) }
func Errorf(format string, args ...any)          { Default.Errorf(format, args...) }
func Progress(i, n int, format string, args ...any) { Default.Progress(i, n, format, args...) }
