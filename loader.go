package prefs

import (
	"context"
	"time"

	"github.com/goliatone/go-prefs/pkg/activity"
)

// LoadReport summarizes what Load did with the stored document.
type LoadReport struct {
	// Applied, Skipped and Missing partition the registered fields.
	Applied []string
	Skipped []string
	Missing []string
	// Ignored lists stored keys that match no registered field.
	Ignored []string

	Absent    bool
	ReadError error
	Corrupt   error
	Version   int
	// Diagnostics holds every recovered error, in the order encountered.
	Diagnostics []error
}

// Load reads the stored document once and applies each stored field to its
// adapter. Missing, unreadable or malformed data never fails the load: the
// affected fields keep their defaults and the problem is logged. Afterwards
// every baseline is committed so defaults are not immediately re-written.
func (e *Engine) Load(ctx context.Context) (LoadReport, error) {
	if e.loaded {
		return LoadReport{}, ErrAlreadyLoaded
	}
	started := time.Now()
	report := LoadReport{}
	doc := e.read(ctx, &report)
	report.Version = doc.Version()

	e.registry.Each(func(adapter Adapter) bool {
		name := adapter.Name()
		frag, ok := doc.Get(name)
		if !ok {
			report.Missing = append(report.Missing, name)
			return true
		}
		if err := adapter.Apply(frag); err != nil {
			report.Skipped = append(report.Skipped, name)
			report.Diagnostics = append(report.Diagnostics, err)
			e.cfg.metrics.FieldRejected(name)
			e.log(LogEvent{Level: LevelWarn, Message: "stored field skipped, keeping default", Field: name, Err: err})
			e.emit(ctx, activity.BuildFieldRejectedEvent(activity.FieldEventInput{
				Document:   e.cfg.document,
				Field:      name,
				Reason:     err,
				OccurredAt: e.cfg.now(),
			}))
			return true
		}
		report.Applied = append(report.Applied, name)
		return true
	})
	for _, name := range doc.Names() {
		if _, ok := e.registry.Adapter(name); !ok {
			report.Ignored = append(report.Ignored, name)
		}
	}

	e.commitBaselines()
	e.loaded = true
	e.loadedVersion = report.Version

	elapsed := time.Since(started)
	e.cfg.metrics.LoadCompleted(report, elapsed)
	e.log(LogEvent{
		Level:    LevelInfo,
		Message:  "preferences loaded",
		Duration: elapsed,
	})
	e.emit(ctx, activity.BuildLoadedEvent(activity.DocumentEventInput{
		Document:   e.cfg.document,
		Format:     e.registry.Format().Name(),
		Version:    report.Version,
		Fields:     report.Applied,
		Skipped:    report.Skipped,
		Duration:   elapsed,
		OccurredAt: e.cfg.now(),
	}))
	return report, nil
}

// read returns the stored document or an empty one.
func (e *Engine) read(ctx context.Context, report *LoadReport) *Document {
	data, ok, err := e.store.Load(ctx)
	if err != nil {
		report.ReadError = err
		report.Diagnostics = append(report.Diagnostics, err)
		e.log(LogEvent{Level: LevelWarn, Message: "read failed, using defaults", Err: err})
		return NewDocument(0)
	}
	if !ok {
		report.Absent = true
		e.log(LogEvent{Level: LevelDebug, Message: "no stored document, using defaults"})
		return NewDocument(0)
	}
	doc, err := Deserialize(e.registry.Format(), data)
	if err != nil {
		report.Corrupt = err
		report.Diagnostics = append(report.Diagnostics, err)
		e.log(LogEvent{Level: LevelWarn, Message: "stored document is malformed, using defaults", Bytes: len(data), Err: err})
		return NewDocument(0)
	}
	return doc
}
