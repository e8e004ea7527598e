// Package utils provides shared logging and error types.
package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// serviceField tags every line so aggregated logs from a desktop bundle
// (UI process + simulator) stay attributable.
const serviceField = "neowatch"

// NewLogger builds the service logger. Unknown levels fall back to info
// rather than failing startup; an unwritable log file falls back to
// stdout with a warning, since losing telemetry is preferable to losing
// the simulation.
func NewLogger(level, output string) *logrus.Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if output != "" && output != "stdout" {
		file, openErr := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if openErr != nil {
			logger.WithError(openErr).Warnf("cannot open log file %s, using stdout", output)
		} else {
			logger.SetOutput(file)
		}
	}

	if err != nil && level != "" {
		logger.Warnf("unknown log level %q, using info", level)
	}

	return logger
}

// Component returns the entry a subsystem logs through. Every package
// tags its lines with a component field so stepping-loop chatter can be
// filtered from command traffic and NeoWs fetches.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"service":   serviceField,
		"component": name,
	})
}
