package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// CLILogger prints operator-facing output of command line tools
type CLILogger struct {
	*logrus.Logger
}

// NewCLILogger creates a logrus logger. format is "text" or "json".
func NewCLILogger(out io.Writer, level, format string) *CLILogger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}

	return &CLILogger{Logger: l}
}
