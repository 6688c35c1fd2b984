// Package metrics exposes provisioning metrics in the Prometheus text format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// Run results used as the "result" label.
const (
	ResultSuccess       = "success"
	ResultInvalidInput  = "invalid_input"
	ResultIdentity      = "identity"
	ResultUpload        = "upload"
	ResultAccountLookup = "account_lookup"
	ResultSubmission    = "submission"
	ResultLedger        = "ledger"
	ResultInternal      = "internal"
)

// MetricsServer owns the metric collectors and the HTTP server that exposes them.
type MetricsServer struct {
	srv      *http.Server
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates the collectors under namespace and a server for listenAddr.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	namespace = strings.NewReplacer("-", "_", ".", "_").Replace(namespace)
	registry := prometheus.NewRegistry()

	m := &MetricsServer{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provision_runs_total",
			Help:      "Provisioning runs by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_duration_seconds",
			Help:      "Duration of provisioning runs, including uploads and confirmation.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120, 180},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.runs,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	m.srv = &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return m, nil
}

// Handler serves the registry.
func (m *MetricsServer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun records the outcome and duration of a provisioning run.
func (m *MetricsServer) ObserveRun(err error, duration time.Duration) {
	m.runs.WithLabelValues(Result(err)).Inc()
	m.duration.Observe(duration.Seconds())
}

// Result maps a provisioning error to its result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, interfaces.ErrInvalidTokenSpec):
		return ResultInvalidInput
	case errors.Is(err, interfaces.ErrIdentity):
		return ResultIdentity
	case errors.Is(err, interfaces.ErrUpload):
		return ResultUpload
	case errors.Is(err, interfaces.ErrAccountLookup):
		return ResultAccountLookup
	case errors.Is(err, interfaces.ErrSubmission):
		return ResultSubmission
	case errors.Is(err, interfaces.ErrLedgerUnavailable):
		return ResultLedger
	default:
		return ResultInternal
	}
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
