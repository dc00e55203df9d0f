// Package zlog writes engine diagnostics through github.com/rs/zerolog.
package zlog

import (
	"github.com/goliatone/go-prefs"
	"github.com/rs/zerolog"
)

// Logger implements prefs.Logger.
type Logger struct {
	log zerolog.Logger
}

var _ prefs.Logger = Logger{}

func New(log zerolog.Logger) Logger {
	return Logger{log: log}
}

func (l Logger) LogEvent(event prefs.LogEvent) {
	entry := l.log.WithLevel(level(event.Level))
	if event.Document != "" {
		entry = entry.Str("document", event.Document)
	}
	if event.Store != "" {
		entry = entry.Str("store", event.Store)
	}
	if event.Field != "" {
		entry = entry.Str("field", event.Field)
	}
	if event.SnapshotID != "" {
		entry = entry.Str("snapshot_id", event.SnapshotID)
	}
	if event.Bytes > 0 {
		entry = entry.Int("bytes", event.Bytes)
	}
	if event.Duration > 0 {
		entry = entry.Dur("duration", event.Duration)
	}
	if event.Err != nil {
		entry = entry.Err(event.Err)
	}
	entry.Msg(event.Message)
}

func level(l prefs.LogLevel) zerolog.Level {
	switch l {
	case prefs.LevelDebug:
		return zerolog.DebugLevel
	case prefs.LevelInfo:
		return zerolog.InfoLevel
	case prefs.LevelWarn:
		return zerolog.WarnLevel
	case prefs.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}

// ParseLevel maps a configured level name to zerolog, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
