// Package logging builds the structured debug logger. Console output is
// the UI logger's job; this logger records machine-readable run detail
// when SFSEED_DEBUG_LOG points at a file.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// NewDebugLogger returns a sugared logger writing JSON lines to path,
// rotated at 10 MB with three backups. An empty path disables debug
// logging entirely — no file is created.
func NewDebugLogger(path string) *zap.SugaredLogger {
	if path == "" {
		return zap.NewNop().Sugar()
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, zapcore.DebugLevel)
	return zap.New(core).Sugar()
}
