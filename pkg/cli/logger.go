package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the CLI logger: colored text with full timestamps in
// debug mode, JSON at info level otherwise.
func NewLogger(out io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
