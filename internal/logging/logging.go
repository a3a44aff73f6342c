// Package logging wraps go.uber.org/zap with a Session helper, modeled on
// cloudfoundry-gorouter's logger package: every Connection Session and
// WebSocket Session gets its own named, field-tagged sub-logger instead of
// passing a bare *zap.Logger around and re-adding the same fields at every
// call site.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a *zap.SugaredLogger with one addition: Session derives a
// child logger tagged with a component name, the way gorouter's
// logger.Session does.
type Logger struct {
	*zap.SugaredLogger
	name string
}

// New builds the root Logger at the given level, JSON-encoded to stderr.
func New(level zapcore.Level) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: base.Sugar(), name: "httpwsd"}, nil
}

// ParseLevel turns the HTTPWSD_LOG_LEVEL value into a zapcore.Level,
// defaulting to info on anything unrecognized.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Session returns a child logger tagged with "source" and, when id is
// non-empty, "session_id" — used to give every Connection Session and
// WebSocket Session its own identifiable log stream.
func (l *Logger) Session(component, id string) *Logger {
	name := l.name + "." + component
	fields := []any{"source", name}
	if id != "" {
		fields = append(fields, "session_id", id)
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...), name: name}
}
