package prefs

import (
	"strings"
	"time"

	"github.com/goliatone/go-prefs/pkg/activity"
	"github.com/google/uuid"
)

// DefaultDocumentName labels logs and activity events when none is set.
const DefaultDocumentName = "prefs"

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	logger   Logger
	metrics  Metrics
	executor Executor
	activity *activity.Emitter
	document string
	version  int
	now      func() time.Time
	ids      func() string
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		executor: GoroutineExecutor{},
		document: DefaultDocumentName,
		now:      time.Now,
		ids:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger attaches a diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(cfg *engineConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(cfg *engineConfig) {
		if metrics == nil {
			cfg.metrics = noopMetrics{}
			return
		}
		cfg.metrics = metrics
	}
}

// WithExecutor selects where writes run.
func WithExecutor(executor Executor) Option {
	return func(cfg *engineConfig) {
		if executor == nil {
			cfg.executor = GoroutineExecutor{}
			return
		}
		cfg.executor = executor
	}
}

// WithActivityHooks emits lifecycle events to hooks. config supplies the
// channel and actor defaults; emission is on whenever hooks is non-empty.
func WithActivityHooks(hooks activity.Hooks, config activity.Config) Option {
	return func(cfg *engineConfig) {
		config.Enabled = len(hooks) > 0
		cfg.activity = activity.NewEmitter(hooks, config)
	}
}

// WithDocumentName labels diagnostics and activity events.
func WithDocumentName(name string) Option {
	return func(cfg *engineConfig) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.document = name
		}
	}
}

// WithDocumentVersion stamps written documents with version. Without it the
// version read at load time is written back unchanged.
func WithDocumentVersion(version int) Option {
	return func(cfg *engineConfig) {
		if version >= 0 {
			cfg.version = version
		}
	}
}

// WithClock replaces time.Now for status timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(cfg *engineConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithSnapshotIDs replaces the uuid generator naming each write.
func WithSnapshotIDs(next func() string) Option {
	return func(cfg *engineConfig) {
		if next != nil {
			cfg.ids = next
		}
	}
}
