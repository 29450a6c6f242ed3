// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logg = New(os.Stdout, "info", false)

// New builds a logger. dev switches to human-readable text output.
func New(out io.Writer, level string, dev bool) *logrus.Logger {
	l := logrus.New()
	if dev {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetOutput(out)
	return l
}

// Configure replaces the default logger.
func Configure(level string, dev bool) *logrus.Logger {
	logg = New(os.Stdout, level, dev)
	return logg
}

func GetLogger() *logrus.Logger {
	return logg
}

// LogError logs err with the location it happened in and optional data.
func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
