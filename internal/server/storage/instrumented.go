package storage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented wraps an ObjectStore with latency, error and byte counters.
type Instrumented struct {
	next     ObjectStore
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	bytes    prometheus.Counter
}

func NewInstrumented(next ObjectStore, reg prometheus.Registerer) (*Instrumented, error) {
	duration, err := metrics.Register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Latency for object store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	errs, err := metrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "storage",
		Name:      "operation_errors_total",
		Help:      "Count of object store failures.",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}
	bytes, err := metrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "storage",
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative payload size successfully uploaded.",
	}))
	if err != nil {
		return nil, err
	}
	return &Instrumented{next: next, duration: duration, errors: errs, bytes: bytes}, nil
}

func (s *Instrumented) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	start := time.Now()
	err := s.next.Upload(ctx, path, data, contentType)
	s.record("upload", start, err)
	if err == nil {
		s.bytes.Add(float64(len(data)))
	}
	return err
}

func (s *Instrumented) Remove(ctx context.Context, paths ...string) error {
	start := time.Now()
	err := s.next.Remove(ctx, paths...)
	s.record("remove", start, err)
	return err
}

func (s *Instrumented) PublicURL(path string) string {
	return s.next.PublicURL(path)
}

func (s *Instrumented) PathFromURL(url string) (string, bool) {
	return s.next.PathFromURL(url)
}

func (s *Instrumented) record(op string, start time.Time, err error) {
	s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.errors.WithLabelValues(op).Inc()
	}
}
