// Package metrics owns the Prometheus registry of the server and the
// collectors shared across layers.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const Namespace = "recipeshare"

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Register registers c, returning the already registered collector of the
// same shape when there is one.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// HTTP records request counts and latencies per route.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	requests, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"}))
	if err != nil {
		return nil, err
	}
	latency, err := Register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"}))
	if err != nil {
		return nil, err
	}
	return &HTTP{requests: requests, latency: latency}, nil
}

func (h *HTTP) Observe(route, method string, status int, elapsed time.Duration) {
	if h == nil {
		return
	}
	h.requests.WithLabelValues(route, method, fmt.Sprint(status)).Inc()
	h.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Compensation counts compensating actions by step and outcome.
type Compensation struct {
	runs *prometheus.CounterVec
}

func NewCompensation(reg prometheus.Registerer) (*Compensation, error) {
	runs, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "compensation",
		Name:      "runs_total",
		Help:      "Compensating actions executed after a failed request, by step and outcome.",
	}, []string{"step", "outcome"}))
	if err != nil {
		return nil, err
	}
	return &Compensation{runs: runs}, nil
}

// CompensationRan implements compensate.Observer.
func (c *Compensation) CompensationRan(step string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	c.runs.WithLabelValues(step, outcome).Inc()
}
