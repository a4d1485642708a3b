// Package logger configures the standard logrus logger.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Init sets the level and formatter of the standard logger.
func Init(level, format string) error {
	return Configure(logrus.StandardLogger(), level, format)
}

// Configure sets the level and formatter of l. An empty level means info,
// an empty format means text.
func Configure(l *logrus.Logger, level, format string) error {
	lvl := logrus.InfoLevel

	if level != "" {
		var err error

		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
	}

	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	return nil
}

// New returns a logger writing to w, configured like Configure.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)

	if err := Configure(l, level, format); err != nil {
		return nil, err
	}

	return l, nil
}
