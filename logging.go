package prefs

import "time"

// LogLevel orders log events by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// LogEvent describes a diagnostic raised by the engine. Recovered load and
// write failures are only ever reported through these events.
type LogEvent struct {
	Level      LogLevel
	Message    string
	Document   string
	Store      string
	Field      string
	SnapshotID string
	Bytes      int
	Duration   time.Duration
	Err        error
}

// Logger records engine events.
type Logger interface {
	LogEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(LogEvent) {}
