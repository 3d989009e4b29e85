// Package logger writes CLI diagnostics to the configured log file so they
// never mix with command output.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/zfogg/postcheck/pkg/config"
)

var logger *log.Logger

// Init opens the log file, falling back to stderr
func Init(verbose bool) {
	logLevel := log.InfoLevel
	if lvl, err := log.ParseLevel(config.GetString("log.level")); err == nil {
		logLevel = lvl
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	f, err := os.OpenFile(config.GetString("log.file"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		f = os.Stderr
	}

	logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "postcheck"})
	logger.SetLevel(logLevel)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
