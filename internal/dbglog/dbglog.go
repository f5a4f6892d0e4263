// Package dbglog is a thin wrapper around a package-level logrus logger,
// in the spirit of sahib/brig's util/log: one shared logger, level-tagged
// helpers, no per-call setup required by callers.
package dbglog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

// SetLevel adjusts the verbosity of the package-level logger.
func SetLevel(level logrus.Level) {
	std.SetLevel(level)
}

// WithField returns an entry carrying a single structured field, for
// callers that want to tag a run (e.g. a request id) onto every line they
// emit for the rest of an operation.
func WithField(key string, value any) *logrus.Entry {
	return std.WithField(key, value)
}

func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }

// Fatalf logs at fatal level and then panics, rather than calling
// os.Exit as logrus.Logger.Fatalf does by default — the BPM's fatal
// conditions are process-terminating invariant violations, not ordinary
// shutdown, and a panic lets a test harness recover() around them.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	std.Log(logrus.FatalLevel, msg)
	panic(msg)
}
