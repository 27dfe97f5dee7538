// Package logging configures the structured logger shared by the compiler
// packages.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

var base = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// For returns a logger entry tagged with the given component name.
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel changes the minimum level emitted by every component logger.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// SetOutput redirects log output, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Verbose switches between debug and the default warning level.
func Verbose(enabled bool) {
	if enabled {
		base.SetLevel(logrus.DebugLevel)
		return
	}
	base.SetLevel(logrus.WarnLevel)
}
