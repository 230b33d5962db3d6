// Package logger writes leveled diagnostics for the CLI to stderr.
//
// Only errors are printed by default. --verbose shows everything, and
// SetLevel (fed from LENS_LOG_LEVEL) changes the default threshold.
// The TUI owns the terminal, so nothing below the threshold may leak.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel reads a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(strings.TrimSpace(s), "warning") {
		return LevelWarn, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

var (
	mu        sync.RWMutex
	verbose   bool
	threshold           = LevelError
	output    io.Writer = os.Stderr
)

// SetVerbose lowers the threshold to debug, or restores the one from SetLevel.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel sets the threshold used when not verbose.
func SetLevel(l Level) {
	mu.Lock()
	threshold = l
	mu.Unlock()
}

// SetOutput redirects logging, typically to a buffer in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled(l)
}

func enabled(l Level) bool {
	return verbose || l >= threshold
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a stage header at info level.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if enabled(LevelInfo) {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timer starts timing a named stage; calling the result logs the elapsed
// time at debug level.
//
//	defer logger.Timer("embed query")()
func Timer(name string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", name, time.Since(start).Round(time.Microsecond))
	}
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if enabled(l) {
		fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
	}
}
