package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"keycalc/internal/calc"
)

const namespace = "keycalc"

// Metrics counts evaluations on a private registry. The zero value and nil
// are valid and record nothing.
type Metrics struct {
	evaluations *prometheus.CounterVec
	errors      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	registry    *prometheus.Registry
}

// NewMetrics registers the evaluation collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of evaluated inputs",
			},
			[]string{"kind", "status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed evaluations by error code",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Time spent evaluating one input",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(m.evaluations, m.errors, m.duration)
	return m
}

// Kind labels for Observe.
const (
	KindExpression = "expression"
	KindIntegral   = "integral"
)

// Observe records one evaluation result.
func (m *Metrics) Observe(r calc.Result, elapsed time.Duration) {
	if m == nil || m.registry == nil {
		return
	}
	kind := KindExpression
	if r.Integral {
		kind = KindIntegral
	}
	status := "ok"
	if r.Err != nil {
		status = "error"
		code := "unknown"
		var ce *calc.Error
		if errors.As(r.Err, &ce) {
			code = ce.Code.String()
		}
		m.errors.WithLabelValues(code).Inc()
	}
	m.evaluations.WithLabelValues(kind, status).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes the metrics on addr under path until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr, path string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()
	go func() {
		log.Info().Str("listen", addr).Str("path", path).Msg("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
