// Package logger wraps a process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var global *logrus.Logger

// Init configures the global logger. format is "text" or "json"; an unknown level
// falls back to info with a warning.
func Init(level, format string) *logrus.Logger {
	return InitTo(os.Stderr, level, format)
}

// InitTo is Init writing to w.
func InitTo(w io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("invalid log level, using info")
	}

	global = log
	return log
}

// Get returns the global logger, initialising a default one on first use.
func Get() *logrus.Logger {
	if global == nil {
		return Init("info", "text")
	}
	return global
}

// WithComponent tags entries with the emitting component.
func WithComponent(name string) *logrus.Entry {
	return Get().WithField("component", name)
}

// WithMatch tags entries with a match id.
func WithMatch(matchID int) *logrus.Entry {
	return Get().WithField("match_id", matchID)
}
