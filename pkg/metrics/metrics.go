// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/goliatone/go-prefs"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements prefs.Metrics.
type Collector struct {
	loads           prometheus.Counter
	loadLatency     prometheus.Histogram
	fieldsApplied   prometheus.Counter
	fieldsRejected  *prometheus.CounterVec
	corruptLoads    prometheus.Counter
	writes          *prometheus.CounterVec
	writeBytes      prometheus.Histogram
	writeLatency    prometheus.Histogram
	serializeErrors prometheus.Counter
	dirty           prometheus.Gauge
	inFlight        prometheus.Gauge
}

var _ prefs.Metrics = (*Collector)(nil)

// New builds a collector. namespace prefixes every metric name and defaults to
// "prefs"; constLabels are attached to all of them, e.g. the document name.
func New(namespace string, constLabels prometheus.Labels) *Collector {
	if namespace == "" {
		namespace = "prefs"
	}
	return &Collector{
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "loads_total",
			Help:        "Completed document loads",
			ConstLabels: constLabels,
		}),
		loadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "load_latency_seconds",
			Help:        "Time spent reading and applying the stored document",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		fieldsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fields_applied_total",
			Help:        "Stored fields applied on load",
			ConstLabels: constLabels,
		}),
		fieldsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fields_rejected_total",
			Help:        "Stored fields skipped on load because they could not be decoded or failed their rule",
			ConstLabels: constLabels,
		}, []string{"field"}),
		corruptLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "corrupt_documents_total",
			Help:        "Loads that fell back to defaults because the document was unreadable or malformed",
			ConstLabels: constLabels,
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "writes_total",
			Help:        "Completed document writes by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		writeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "write_bytes",
			Help:        "Size of dispatched documents",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(64, 2, 14),
		}),
		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "write_latency_seconds",
			Help:        "Store write latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 18),
		}),
		serializeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "serialize_errors_total",
			Help:        "Ticks where the document could not be serialized",
			ConstLabels: constLabels,
		}),
		dirty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "dirty",
			Help:        "1 when changes are waiting to be written",
			ConstLabels: constLabels,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "write_in_flight",
			Help:        "1 while a write is running",
			ConstLabels: constLabels,
		}),
	}
}

// Register adds every metric to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, collector := range c.collectors() {
		if err := reg.Register(collector); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.loads, c.loadLatency, c.fieldsApplied, c.fieldsRejected, c.corruptLoads,
		c.writes, c.writeBytes, c.writeLatency, c.serializeErrors, c.dirty, c.inFlight,
	}
}

func (c *Collector) LoadCompleted(report prefs.LoadReport, elapsed time.Duration) {
	c.loads.Inc()
	c.loadLatency.Observe(elapsed.Seconds())
	c.fieldsApplied.Add(float64(len(report.Applied)))
	if report.Corrupt != nil || report.ReadError != nil {
		c.corruptLoads.Inc()
	}
}

// FieldRejected is called once per skipped field, before LoadCompleted.
func (c *Collector) FieldRejected(field string) {
	c.fieldsRejected.WithLabelValues(field).Inc()
}

func (c *Collector) WriteDispatched(bytes int) {
	c.writeBytes.Observe(float64(bytes))
}

func (c *Collector) WriteCompleted(elapsed time.Duration, err error) {
	c.writeLatency.Observe(elapsed.Seconds())
	if err != nil {
		c.writes.WithLabelValues("error").Inc()
		return
	}
	c.writes.WithLabelValues("ok").Inc()
}

func (c *Collector) SerializeFailed() {
	c.serializeErrors.Inc()
}

func (c *Collector) StateChanged(dirty, inFlight bool) {
	c.dirty.Set(boolGauge(dirty))
	c.inFlight.Set(boolGauge(inFlight))
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
