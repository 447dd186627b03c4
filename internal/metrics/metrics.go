// Package metrics records pipeline activity in Prometheus collectors on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pable/go-sb-features/internal/model"
)

// Recorder implements pipeline.Observer with Prometheus collectors.
type Recorder struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	events        prometheus.Counter
	shots         prometheus.Counter
	shotFailures  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
}

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithHistogramBuckets sets the stage duration buckets, in seconds.
func WithHistogramBuckets(b []float64) Option {
	return func(r *Recorder) {
		if len(b) > 0 {
			r.buckets = b
		}
	}
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "sbfeatures",
		subsystem: "pipeline",
		buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.events = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem,
		Name: "events_total", Help: "Events fed into the pipeline.",
	})
	r.shots = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem,
		Name: "shots_total", Help: "Shots with derived freeze-frame geometry.",
	})
	r.shotFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem,
		Name: "shot_failures_total", Help: "Shots isolated with a diagnostic, by kind.",
	}, []string{"kind"})
	r.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem,
		Name: "stage_duration_seconds", Help: "Wall time per pipeline stage.",
		Buckets: r.buckets,
	}, []string{"stage"})
	r.stageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem,
		Name: "stage_errors_total", Help: "Stages that failed the batch.",
	}, []string{"stage"})

	r.registry.MustRegister(r.events, r.shots, r.shotFailures, r.stageDuration, r.stageErrors)
	return r
}

// Registry exposes the private registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) StageDone(stage string, elapsed time.Duration, err error) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		r.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (r *Recorder) EventsSeen(n int) { r.events.Add(float64(n)) }

func (r *Recorder) ShotDerived() { r.shots.Inc() }

func (r *Recorder) ShotFailed(kind model.DiagnosticKind) {
	r.shotFailures.WithLabelValues(string(kind)).Inc()
}

// Sample is one gathered series.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64 // counter value, or histogram sample sum
	Count  uint64  // histogram sample count; zero for counters
}

// Snapshot gathers every series in name order.
func (r *Recorder) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: make(map[string]string)}
			for _, lp := range m.GetLabel() {
				s.Labels[lp.GetName()] = lp.GetValue()
			}
			if c := m.GetCounter(); c != nil {
				s.Value = c.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				s.Value = h.GetSampleSum()
				s.Count = h.GetSampleCount()
			}
			out = append(out, s)
		}
	}
	return out, nil
}
