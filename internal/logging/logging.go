// Package logging builds the logrus logger handed to every component.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w (stderr when nil). debug lowers the
// level to Debug.
func New(w io.Writer, debug bool) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// NewJSON returns a JSON logger for environments that ingest structured logs,
// such as Lambda.
func NewJSON(w io.Writer, debug bool) *logrus.Logger {
	l := New(w, debug)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
