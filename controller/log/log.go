// Package log provides the zerolog based package logger shared by the controller and channels.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu        sync.RWMutex
	pkgLogger = console(os.Stderr).Level(zerolog.InfoLevel)
)

func console(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

// Init selects the level and the output format. JSON output goes to stdout
// so it can be piped, console output goes to stderr.
func Init(debug bool, json bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	var l zerolog.Logger
	if json {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		l = console(os.Stderr)
	}
	mu.Lock()
	pkgLogger = l.Level(level)
	mu.Unlock()
}

// SetOutput redirects the logger, mostly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	pkgLogger = zerolog.New(w).With().Timestamp().Logger().Level(pkgLogger.GetLevel())
	mu.Unlock()
}

func logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := pkgLogger
	return &l
}

func Debug() *zerolog.Event { return logger().Debug() }
func Info() *zerolog.Event  { return logger().Info() }
func Warn() *zerolog.Event  { return logger().Warn() }
func Error() *zerolog.Event { return logger().Error() }
func Fatal() *zerolog.Event { return logger().Fatal() }

// With returns a child logger carrying fixed fields
func With() zerolog.Context { return logger().With() }
