// Package metrics records course generation activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mgpai22/coursegen/internal/course"
	"github.com/mgpai22/coursegen/internal/extract"
	"github.com/mgpai22/coursegen/internal/llm"
)

const namespace = "coursegen"

// Recorder implements course.Observer. Each Recorder owns its registry, so
// several can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	GenerationCalls     *prometheus.CounterVec
	GenerationErrors    *prometheus.CounterVec
	GenerationFallbacks *prometheus.CounterVec
	GenerationLatency   *prometheus.HistogramVec
	SectionsProcessed   prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		GenerationCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_calls_total",
			Help:      "Total number of text generation requests issued",
		}, []string{"stage"}),
		GenerationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Total number of text generation requests that failed",
		}, []string{"stage", "reason"}),
		GenerationFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_fallbacks_total",
			Help:      "Total number of stages replaced by placeholder content",
		}, []string{"stage", "reason"}),
		GenerationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_call_seconds",
			Help:      "Latency of text generation requests in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		SectionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_processed_total",
			Help:      "Total number of transcript sections turned into course sections",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveCall(stage course.Stage, elapsed time.Duration, err error) {
	r.GenerationCalls.WithLabelValues(string(stage)).Inc()
	r.GenerationLatency.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		r.GenerationErrors.WithLabelValues(string(stage), Reason(err)).Inc()
	}
}

func (r *Recorder) ObserveFallback(stage course.Stage, reason error) {
	r.GenerationFallbacks.WithLabelValues(string(stage), Reason(reason)).Inc()
}

func (r *Recorder) ObserveSections(n int) {
	r.SectionsProcessed.Add(float64(n))
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Reason maps a generation error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, llm.ErrBackendUnavailable):
		return "unavailable"
	case errors.Is(err, llm.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, extract.ErrExtraction):
		return "extraction"
	default:
		return "other"
	}
}
