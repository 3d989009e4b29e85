// Package logger holds the process-wide zap logger.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "postcheck.log"

// Log is a no-op until Initialize runs, so packages and tests can log freely.
var Log = zap.NewNop()

// Initialize installs a logger writing readable lines to stdout and JSON to a
// rotated file. Unknown levels mean info.
func Initialize(level, file string) error {
	if file == "" {
		file = defaultLogFile
	}
	lvl := parseLevel(level)

	core := zapcore.NewTee(consoleCore(lvl), fileCore(file, lvl))
	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	Log.Info("Logger initialized",
		zap.Stringer("level", lvl),
		zap.String("file", file),
	)
	return nil
}

func consoleCore(lvl zapcore.Level) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)
}

func fileCore(path string, lvl zapcore.Level) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     7, // days
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(rotated), lvl)
}

// Close flushes buffered entries
func Close() error {
	return Log.Sync()
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zapcore.WarnLevel
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil || lvl > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return lvl
}

// Warn logs at warn level
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// WarnWithFields logs a warning, attaching err when it is non-nil
func WarnWithFields(msg string, err error) {
	Log.Warn(msg, errField(err)...)
}

// ErrorWithFields logs an error, attaching err when it is non-nil
func ErrorWithFields(msg string, err error) {
	Log.Error(msg, errField(err)...)
}

// FatalWithFields logs err and exits
func FatalWithFields(msg string, err error) {
	Log.Fatal(msg, errField(err)...)
}

func errField(err error) []zap.Field {
	if err == nil {
		return nil
	}
	return []zap.Field{zap.Error(err)}
}

func WithRequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

func WithCallerID(id string) zap.Field {
	return zap.String("caller_id", id)
}

func WithJurisdiction(code string) zap.Field {
	return zap.String("jurisdiction", code)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}
