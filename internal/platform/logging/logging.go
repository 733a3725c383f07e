// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format to the standard logrus logger and returns it.
// JSON output is used outside development so log shippers can parse fields.
func Setup(level string, development bool) *logrus.Logger {
	l := logrus.StandardLogger()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		l.Warnf("invalid log level %q, falling back to info", level)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if development {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}
