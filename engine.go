package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-prefs/pkg/activity"
	"github.com/goliatone/go-prefs/pkg/store"
)

// Status is a point-in-time view of the persistence state machine.
type Status struct {
	Loaded         bool
	Dirty          bool
	InFlight       bool
	Writes         int
	Failures       int
	LastSnapshotID string
	LastError      error
	LastWriteAt    time.Time
	LoadedVersion  int
}

type writeResult struct {
	snapshotID string
	bytes      int
	elapsed    time.Duration
	err        error
}

type writeJob struct {
	snapshotID string
	data       []byte
}

// Engine owns the dirty and in-flight flags for one document.
//
// Load, Tick, Flush and Status must be called from the goroutine that owns the
// registered values (the host's update loop). Only the store write itself runs
// elsewhere, and it touches nothing but its own byte buffer.
type Engine struct {
	registry *Registry
	store    store.Store
	cfg      engineConfig
	storeID  string

	loaded        bool
	loadedVersion int
	dirty         bool
	inFlight      bool
	done          chan writeResult

	writes         int
	failures       int
	lastSnapshotID string
	lastError      error
	lastWriteAt    time.Time
}

// New creates an engine for registry backed by st. It panics when either is
// nil, as registration problems are setup-time programmer errors.
func New(registry *Registry, st store.Store, opts ...Option) *Engine {
	if registry == nil {
		panic("prefs: nil registry")
	}
	if st == nil {
		panic("prefs: nil store")
	}
	return &Engine{
		registry: registry,
		store:    st,
		cfg:      applyOptions(opts),
		storeID:  store.Describe(st),
		done:     make(chan writeResult, 1),
	}
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) Status() Status {
	return Status{
		Loaded:         e.loaded,
		Dirty:          e.dirty,
		InFlight:       e.inFlight,
		Writes:         e.writes,
		Failures:       e.failures,
		LastSnapshotID: e.lastSnapshotID,
		LastError:      e.lastError,
		LastWriteAt:    e.lastWriteAt,
		LoadedVersion:  e.loadedVersion,
	}
}

// Tick runs one scheduling step: collect a finished write, detect changes and
// dispatch a new write when dirty and idle. It never blocks on storage.
// Nothing is detected or written before Load has run.
func (e *Engine) Tick(ctx context.Context) {
	e.poll(ctx)
	if e.loaded {
		e.detect()
		if e.dirty && !e.inFlight {
			e.dispatch(ctx)
		}
	}
	e.cfg.metrics.StateChanged(e.dirty, e.inFlight)
}

func (e *Engine) poll(ctx context.Context) {
	if !e.inFlight {
		return
	}
	select {
	case result := <-e.done:
		e.complete(ctx, result)
	default:
	}
}

// detect only ever raises the dirty flag. Baselines move on dispatch.
func (e *Engine) detect() {
	if e.dirty {
		return
	}
	e.registry.Each(func(adapter Adapter) bool {
		if adapter.Changed() {
			e.dirty = true
			return false
		}
		return true
	})
}

// prepare serializes the current state and commits baselines. A serialize
// failure leaves the engine dirty so the next tick tries again.
func (e *Engine) prepare() (writeJob, error) {
	data, err := Serialize(e.registry, e.writeVersion())
	if err != nil {
		e.cfg.metrics.SerializeFailed()
		e.log(LogEvent{Level: LevelError, Message: "serialize document", Err: err})
		return writeJob{}, err
	}
	job := writeJob{snapshotID: e.cfg.ids(), data: data}
	e.inFlight = true
	e.dirty = false
	e.commitBaselines()
	e.cfg.metrics.WriteDispatched(len(data))
	e.log(LogEvent{Level: LevelDebug, Message: "write dispatched", SnapshotID: job.snapshotID, Bytes: len(data)})
	return job, nil
}

func (e *Engine) dispatch(ctx context.Context) {
	job, err := e.prepare()
	if err != nil {
		return
	}
	st, done := e.store, e.done
	writeCtx := context.WithoutCancel(ctx)
	e.cfg.executor.Go(func() {
		done <- runWrite(writeCtx, st, job)
	})
}

func runWrite(ctx context.Context, st store.Store, job writeJob) (result writeResult) {
	started := time.Now()
	result = writeResult{snapshotID: job.snapshotID, bytes: len(job.data)}
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("prefs: store panicked: %v", r)
		}
		result.elapsed = time.Since(started)
	}()
	result.err = st.Save(ctx, job.data)
	return result
}

func (e *Engine) complete(ctx context.Context, result writeResult) {
	e.inFlight = false
	e.lastSnapshotID = result.snapshotID
	e.cfg.metrics.WriteCompleted(result.elapsed, result.err)

	input := activity.DocumentEventInput{
		Document:   e.cfg.document,
		SnapshotID: result.snapshotID,
		Format:     e.registry.Format().Name(),
		Version:    e.writeVersion(),
		Bytes:      result.bytes,
		Duration:   result.elapsed,
		OccurredAt: e.cfg.now(),
	}

	if result.err != nil {
		writeErr := &WriteError{SnapshotID: result.snapshotID, Store: e.storeID, Err: result.err}
		e.dirty = true
		e.failures++
		e.lastError = writeErr
		e.log(LogEvent{
			Level:      LevelWarn,
			Message:    "write failed, retrying on next tick",
			SnapshotID: result.snapshotID,
			Bytes:      result.bytes,
			Duration:   result.elapsed,
			Err:        writeErr,
		})
		input.Err = writeErr
		e.emit(ctx, activity.BuildWriteFailedEvent(input))
		return
	}

	e.writes++
	e.lastError = nil
	e.lastWriteAt = input.OccurredAt
	e.log(LogEvent{
		Level:      LevelDebug,
		Message:    "write completed",
		SnapshotID: result.snapshotID,
		Bytes:      result.bytes,
		Duration:   result.elapsed,
	})
	e.emit(ctx, activity.BuildSavedEvent(input))
}

func (e *Engine) commitBaselines() {
	e.registry.Each(func(adapter Adapter) bool {
		adapter.CommitBaseline()
		return true
	})
}

func (e *Engine) writeVersion() int {
	if e.cfg.version > 0 {
		return e.cfg.version
	}
	return e.loadedVersion
}

func (e *Engine) log(event LogEvent) {
	if event.Document == "" {
		event.Document = e.cfg.document
	}
	if event.Store == "" {
		event.Store = e.storeID
	}
	e.cfg.logger.LogEvent(event)
}

func (e *Engine) emit(ctx context.Context, event activity.Event) {
	if !e.cfg.activity.Enabled() {
		return
	}
	if err := e.cfg.activity.Emit(ctx, event); err != nil {
		e.log(LogEvent{Level: LevelDebug, Message: "activity hook failed", Err: err})
	}
}
